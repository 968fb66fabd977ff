// Package api 定义对外 HTTP 接口的请求与响应结构。
// 处理器实现见 api/handlers。
package api
