// Package chat 实现检索增强问答的核心流水线：
// 复杂度分类 → 检索策略选择 → 提示词组装 → 模型调用 → 会话记忆维护。
//
// 入口是 Orchestrator.Respond，单次调用恰好执行一条检索分支，
// 只有成功的回合才会写入会话记忆。
package chat
