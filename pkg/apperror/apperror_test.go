package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NotFound("Booking not found"), http.StatusNotFound},
		{Forbidden("Not authorized to view this booking"), http.StatusForbidden},
		{PreconditionFailed("Booking cannot be accepted because it is completed"), http.StatusBadRequest},
		{Validation("Invalid status"), http.StatusBadRequest},
		{Conflict("User with this email already exists"), http.StatusConflict},
		{Unauthorized("Invalid credentials"), http.StatusUnauthorized},
		{Internal("boom", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestAs_Wrapped(t *testing.T) {
	base := NotFound("Provider not found")
	wrapped := fmt.Errorf("load provider: %w", base)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, base, appErr)
	assert.True(t, IsType(wrapped, TypeNotFound))
	assert.False(t, IsType(wrapped, TypeForbidden))
	assert.True(t, errors.Is(wrapped, base))
}

func TestAs_PlainError(t *testing.T) {
	_, ok := As(errors.New("plain"))
	assert.False(t, ok)
}

func TestError_IncludesCause(t *testing.T) {
	err := Internal("Failed to save booking", errors.New("connection reset"))
	assert.Equal(t, "INTERNAL: Failed to save booking: connection reset", err.Error())
	assert.Equal(t, "NOT_FOUND: Service not found", NotFound("Service not found").Error())
}
