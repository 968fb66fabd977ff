// Package handlers 实现 HTTP 处理器。
//
// 错误出口统一走 WriteError：对调用方只暴露错误码和通用消息，
// 具体原因仅写入服务端日志。
package handlers
