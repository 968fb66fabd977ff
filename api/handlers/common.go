package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/ragserve/internal/ctxkeys"
	"github.com/BaSui01/ragserve/types"
)

// Response 统一 API 响应结构。
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorInfo 对外错误信息。Message 是通用描述，不含内部细节。
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// WriteJSON 写入 JSON 响应。
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess 写入成功响应。
func WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	WriteJSON(w, http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: RequestIDFrom(r),
	})
}

// WriteError 写入错误响应。完整错误（含 Cause）只进日志，
// 响应体用错误码对应的通用消息。
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	apiErr := types.AsError(err, types.ErrInternalError)

	status := apiErr.HTTPStatus
	if status == 0 {
		status = mapErrorCodeToHTTPStatus(apiErr.Code)
	}

	if logger != nil {
		fields := []zap.Field{
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.Int("status", status),
			zap.String("request_id", RequestIDFrom(r)),
			zap.Error(apiErr.Cause),
		}
		if sid, ok := ctxkeys.SessionID(r.Context()); ok {
			fields = append(fields, zap.String("session_id", sid))
		}
		logger.Error("request failed", fields...)
	}

	WriteJSON(w, status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      string(apiErr.Code),
			Message:   clientMessage(apiErr.Code),
			Retryable: apiErr.Retryable,
		},
		Timestamp: time.Now(),
		RequestID: RequestIDFrom(r),
	})
}

// clientMessage 错误码对应的对外通用消息。
func clientMessage(code types.ErrorCode) string {
	switch code {
	case types.ErrInvalidRequest:
		return "invalid request"
	case types.ErrUnknownBackend:
		return "unsupported model identifier"
	case types.ErrRetrievalFailure:
		return "document retrieval failed"
	case types.ErrModelInvocationFailure:
		return "model invocation failed"
	case types.ErrRateLimited:
		return "too many requests"
	case types.ErrUpstreamTimeout:
		return "upstream timed out"
	case types.ErrServiceUnavailable, types.ErrProviderUnavailable:
		return "service temporarily unavailable"
	default:
		return "internal error"
	}
}

func mapErrorCodeToHTTPStatus(code types.ErrorCode) int {
	switch code {
	case types.ErrInvalidRequest, types.ErrUnknownBackend:
		return http.StatusBadRequest
	case types.ErrUnauthorized:
		return http.StatusUnauthorized
	case types.ErrRateLimited:
		return http.StatusTooManyRequests
	case types.ErrContextTooLong:
		return http.StatusRequestEntityTooLarge
	case types.ErrUpstreamTimeout:
		return http.StatusGatewayTimeout
	case types.ErrServiceUnavailable, types.ErrProviderUnavailable:
		return http.StatusServiceUnavailable
	case types.ErrUpstreamError, types.ErrRetrievalFailure, types.ErrModelInvocationFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSONBody 解码 JSON 请求体，拒绝未知字段。
// 失败时已写入错误响应，调用方直接 return。
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}, logger *zap.Logger) error {
	if r.Body == nil {
		err := types.NewError(types.ErrInvalidRequest, "request body is empty")
		WriteError(w, r, err, logger)
		return err
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		apiErr := types.NewError(types.ErrInvalidRequest, "invalid JSON body").
			WithCause(err).
			WithHTTPStatus(http.StatusBadRequest)
		WriteError(w, r, apiErr, logger)
		return apiErr
	}
	return nil
}

// requestIDHeader 请求 ID 透传头。
const requestIDHeader = "X-Request-ID"

// RequestIDFrom 取出本次请求的请求 ID。优先读中间件写入 context
// 的值，直接调用处理器（测试、内部转发）时退回请求头。
func RequestIDFrom(r *http.Request) string {
	if r == nil {
		return ""
	}
	if id, ok := ctxkeys.RequestID(r.Context()); ok {
		return id
	}
	return r.Header.Get(requestIDHeader)
}
