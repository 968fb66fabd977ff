package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/ragserve/api"
	"github.com/BaSui01/ragserve/chat"
	"github.com/BaSui01/ragserve/internal/ctxkeys"
	"github.com/BaSui01/ragserve/internal/metrics"
	"github.com/BaSui01/ragserve/memory"
	"github.com/BaSui01/ragserve/types"
)

// ChatHandler 问答接口处理器。
type ChatHandler struct {
	orch    *chat.Orchestrator
	metrics *metrics.Collector // 可为 nil
	logger  *zap.Logger
}

// NewChatHandler 创建问答处理器。
func NewChatHandler(orch *chat.Orchestrator, collector *metrics.Collector, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{orch: orch, metrics: collector, logger: logger}
}

// Handle 处理 POST /chat。
func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if strings.TrimSpace(req.Msg) == "" {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "msg is required"), h.logger)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = memory.NewSessionID()
	}
	// 会话 ID 进 context，后续日志（含 WriteError）据此关联。
	r = r.WithContext(ctxkeys.WithSessionID(r.Context(), sessionID))

	resp, err := h.orch.Respond(r.Context(), chat.Request{
		SessionID: sessionID,
		Text:      req.Msg,
		Model:     req.Model,
	})
	if err != nil {
		if h.metrics != nil {
			h.metrics.ObserveChatTurn("", string(types.GetErrorCode(err)), 0)
		}
		WriteError(w, r, err, h.logger)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveChatTurn(string(resp.Strategy), "ok", resp.Elapsed)
	}

	WriteSuccess(w, r, api.ChatResponse{
		Result:    resp.Result,
		SessionID: resp.SessionID,
	})
}
