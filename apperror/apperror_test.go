package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatusCodeClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		message  string
		wantType ErrorType
		wantMsg  string
	}{
		{"unauthorized", http.StatusUnauthorized, "ignored", AuthError, "you are not authorized to perform this action"},
		{"forbidden", http.StatusForbidden, "ignored", ForbiddenError, "you are not authorized to perform this action"},
		{"not found", http.StatusNotFound, "ignored", NotFoundError, "resource not found"},
		{"bad request with message", http.StatusBadRequest, "title is required", BadRequestError, "title is required"},
		{"bad request without message", http.StatusBadRequest, "", BadRequestError, "bad request"},
		{"server fault", http.StatusInternalServerError, "ignored", ServerError, "something went wrong, please try again"},
		{"unclassified with message", http.StatusTeapot, "odd response", UnknownError, "odd response"},
		{"unclassified without message", http.StatusTeapot, "", UnknownError, "something went wrong, please try again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromStatusCode(tt.status, tt.message, nil)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestStatusCodeRoundTrip(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, NewAuthError("x", nil).StatusCode())
	assert.Equal(t, http.StatusForbidden, NewForbiddenError("x", nil).StatusCode())
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("x", nil).StatusCode())
	assert.Equal(t, http.StatusBadRequest, NewBadRequestError("x", nil).StatusCode())
	assert.Equal(t, http.StatusBadRequest, NewValidationError("x", nil).StatusCode())
	assert.Equal(t, http.StatusInternalServerError, NewServerError("x", nil).StatusCode())
}

func TestUnwrapAndHelpers(t *testing.T) {
	underlying := errors.New("socket closed")
	appErr := NewNetworkError("network error", underlying)

	assert.ErrorIs(t, appErr, underlying)
	assert.True(t, IsNetworkError(appErr))
	assert.False(t, IsAuthError(appErr))

	// Helpers must see through wrapping.
	wrapped := errors.Join(errors.New("outer"), appErr)
	assert.True(t, IsNetworkError(wrapped))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "resource not found", UserMessage(NewNotFoundError("resource not found", nil), "fallback"))
	assert.Equal(t, "fallback", UserMessage(errors.New("raw"), "fallback"))
	assert.Equal(t, "raw", UserMessage(errors.New("raw"), ""))
	assert.Equal(t, "something went wrong, please try again", UserMessage(nil, ""))
}
