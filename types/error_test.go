package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	e := NewError(ErrRetrievalFailure, "vector store unreachable")
	assert.Equal(t, "[RETRIEVAL_FAILURE] vector store unreachable", e.Error())

	cause := errors.New("dial tcp: connection refused")
	e = e.WithCause(cause)
	assert.Contains(t, e.Error(), "connection refused")
	assert.Equal(t, cause, errors.Unwrap(e))
}

func TestError_Builders(t *testing.T) {
	e := NewError(ErrModelInvocationFailure, "upstream 502").
		WithHTTPStatus(502).
		WithRetryable(true).
		WithProvider("hunyuan")

	assert.Equal(t, 502, e.HTTPStatus)
	assert.True(t, IsRetryable(e))
	assert.Equal(t, "hunyuan", e.Provider)
	assert.Equal(t, ErrModelInvocationFailure, GetErrorCode(e))
}

func TestAsError(t *testing.T) {
	assert.Nil(t, AsError(nil, ErrInternalError))

	e := NewError(ErrUnknownBackend, "no such backend")
	assert.Same(t, e, AsError(e, ErrInternalError))

	wrapped := AsError(fmt.Errorf("boom"), ErrInternalError)
	assert.Equal(t, ErrInternalError, wrapped.Code)
	assert.Equal(t, "boom", wrapped.Message)
}

func TestIsRetryable_ForeignError(t *testing.T) {
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
}
