package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotFound, "notification not found")

	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeForbidden))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
	assert.False(t, HasCode(nil, CodeNotFound))

	t.Run("survives fmt wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("listing inbox: %w", err)
		assert.True(t, HasCode(wrapped, CodeNotFound))
	})
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeUnavailable, "create notification", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "create notification")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, CodeUnavailable, CodeOf(err))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput: http.StatusBadRequest,
		CodeBadRequest:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeUnavailable:  http.StatusServiceUnavailable,
		CodeInternal:     http.StatusInternalServerError,
		Code("mystery"):  http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
