package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", NewValidationError("Missing required fields", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"unauthorized", NewUnauthorized("invalid token"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"revoked", NewRevoked("revoked"), "TOKEN_REVOKED", http.StatusUnauthorized},
		{"forbidden", NewForbidden("nope"), "FORBIDDEN", http.StatusForbidden},
		{"not found", NewNotFound("User", nil), "NOT_FOUND", http.StatusNotFound},
		{"conflict", NewConflict("username taken", nil), "CONFLICT", http.StatusInternalServerError},
		{"throttled", NewTooManyRequests("slow down"), "TOO_MANY_REQUESTS", http.StatusTooManyRequests},
		{"storage", NewStorageError(errors.New("tx aborted")), "STORAGE_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
		})
	}
}

func TestToDomainErrorUnwrapsWrapped(t *testing.T) {
	inner := NewNotFound("Assignment", map[string]any{"assignment_id": 7})
	wrapped := fmt.Errorf("provide feedback: %w", inner)

	de := ToDomainError(wrapped)
	assert.Equal(t, "Assignment not found", de.Message)
	assert.Equal(t, 7, de.Details["assignment_id"])
}

func TestToDomainErrorFallsBackToInternal(t *testing.T) {
	cause := errors.New("boom")
	de := ToDomainError(cause)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.ErrorIs(t, de, cause)
	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))
}

func TestStorageErrorKeepsMessage(t *testing.T) {
	de := ToDomainError(NewStorageError(errors.New("duplicate key value")))
	assert.Equal(t, "duplicate key value", de.Message)
}
