package api

// ChatRequest POST /chat 请求体。
type ChatRequest struct {
	// Msg 用户问题，必填。
	Msg string `json:"msg"`
	// Model 后端标识（llama/qwen/deepseek/gemini/hunyuan/openai），
	// 为空时使用配置默认。
	Model string `json:"model,omitempty"`
	// SessionID 会话标识；为空时服务端新建会话并在响应中返回。
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse POST /chat 成功响应。
type ChatResponse struct {
	Result    string `json:"result"`
	SessionID string `json:"session_id"`
}

// UploadResponse POST /documents/upload 成功响应。
type UploadResponse struct {
	File     string `json:"file"`
	Sections int    `json:"sections"` // loader 产出的文档数
	Chunks   int    `json:"chunks"`   // 入库的分块数
}

// CountResponse GET /documents/count 成功响应。
type CountResponse struct {
	Count int `json:"count"`
}
