package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"page not found", WrapError(ErrPageNotFound, errors.New("page 4 of 3")), http.StatusNotFound},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"self deletion", ErrSelfDeletion, http.StatusForbidden},
		{"username exists", ErrUsernameExists, http.StatusConflict},
		{"expired token", ErrTokenExpired, http.StatusUnauthorized},
		{"wrapped in fmt", fmt.Errorf("service: %w", ErrClientNotFound), http.StatusNotFound},
		{"plain error", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
		})
	}
}

func TestDomainError_IsMatchesCode(t *testing.T) {
	wrapped := WrapError(ErrUserNotFound, errors.New("record not found"))
	assert.True(t, errors.Is(wrapped, ErrUserNotFound))
	assert.False(t, errors.Is(wrapped, ErrClientNotFound))

	custom := WithMessage(ErrInvalidInput, "the limit must be a positive integer", nil)
	assert.True(t, errors.Is(custom, ErrInvalidInput))
	assert.Equal(t, "the limit must be a positive integer", GetErrorMessage(custom))
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "", GetErrorMessage(nil))
	assert.Equal(t, "user not found", GetErrorMessage(WrapError(ErrUserNotFound, errors.New("sql: no rows"))))
	assert.Equal(t, "internal server error", GetErrorMessage(errors.New("pq: connection refused")))
}

func TestGetDomainError(t *testing.T) {
	assert.Nil(t, GetDomainError(errors.New("x")))
	de := GetDomainError(fmt.Errorf("ctx: %w", ErrForbidden))
	if assert.NotNil(t, de) {
		assert.Equal(t, "FORBIDDEN", de.Code)
	}
	assert.True(t, IsDomainError(ErrInternal))
}
