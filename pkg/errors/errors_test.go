package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NotFound("appointment", nil), http.StatusNotFound},
		{BadRequest("bad", nil), http.StatusBadRequest},
		{Validation("invalid", map[string]string{"email": "required"}), http.StatusUnprocessableEntity},
		{Unauthorized("", nil), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{Conflict("dup", nil), http.StatusConflict},
		{Unavailable("backend down", nil), http.StatusBadGateway},
		{TooManyRequests("slow down"), http.StatusTooManyRequests},
		{TooLarge("too big"), http.StatusRequestEntityTooLarge},
		{Internal(fmt.Errorf("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Message, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestAsThroughWrapping(t *testing.T) {
	base := Conflict("duplicate tag", nil)
	wrapped := fmt.Errorf("add tag: %w", base)

	got, ok := As(wrapped)
	assert.True(t, ok)
	assert.Same(t, base, got)
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(fmt.Errorf("plain"), KindInternal))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "patient not found", NotFound("patient", nil).Error())
	assert.Equal(t, "backend down: dial tcp", Unavailable("backend down", fmt.Errorf("dial tcp")).Error())
	assert.Equal(t, "unauthorized", Unauthorized("", nil).Error())
}
