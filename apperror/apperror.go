// Package apperror defines a centralized system for application-specific errors.
// Every failure that crosses the gateway boundary is recovered into one of the
// error types below, so the services and stores above it can branch on error
// kind without ever inspecting raw HTTP responses or transport errors.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType defines the category of an application error.
type ErrorType int

const (
	// UnknownError is for unspecified errors.
	UnknownError ErrorType = iota
	// NetworkError represents a transport failure: the request never produced
	// an HTTP response (connection refused, DNS failure, timeout).
	NetworkError
	// AuthError represents an authentication failure (HTTP 401).
	AuthError
	// ForbiddenError represents an authorization failure (HTTP 403).
	ForbiddenError
	// NotFoundError represents a missing resource (HTTP 404).
	NotFoundError
	// BadRequestError represents a request the server rejected as malformed (HTTP 400).
	BadRequestError
	// ValidationError represents input rejected locally, before any network call.
	ValidationError
	// ServerError represents a remote server fault (HTTP 500).
	ServerError
)

// AppError is the error type used throughout the client. It carries a
// user-facing message and, optionally, the underlying error for debugging.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error // Underlying error
}

// Error returns the string representation of the error, satisfying the `error` interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error, allowing `errors.Is` and `errors.As`
// to inspect the chain of wrapped errors.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code that corresponds to the error type.
// This is the inverse of FromStatusCode and is what the mock API server uses
// when writing error responses.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case BadRequestError, ValidationError:
		return http.StatusBadRequest
	case ServerError, NetworkError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// FromStatusCode classifies a failed HTTP response into an AppError.
// serverMessage is the message extracted from the response body, if any; for
// statuses where the server message is surfaced to the user (400 and
// unclassified statuses) it takes precedence over the fallback text.
func FromStatusCode(status int, serverMessage string, underlying error) *AppError {
	switch status {
	case http.StatusUnauthorized:
		return NewAuthError("you are not authorized to perform this action", underlying)
	case http.StatusForbidden:
		return NewForbiddenError("you are not authorized to perform this action", underlying)
	case http.StatusNotFound:
		return NewNotFoundError("resource not found", underlying)
	case http.StatusBadRequest:
		if serverMessage == "" {
			serverMessage = "bad request"
		}
		return NewBadRequestError(serverMessage, underlying)
	case http.StatusInternalServerError:
		return NewServerError("something went wrong, please try again", underlying)
	default:
		if serverMessage == "" {
			serverMessage = "something went wrong, please try again"
		}
		return NewAppError(UnknownError, serverMessage, underlying)
	}
}

// NewAppError creates a new AppError. Generic constructor, useful when the
// error type is determined dynamically.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlyingError,
	}
}

// NewNetworkError creates a new NetworkError.
func NewNetworkError(message string, underlyingError error) *AppError {
	return NewAppError(NetworkError, message, underlyingError)
}

// NewAuthError creates a new AuthError (authentication failure, 401).
func NewAuthError(message string, underlyingError error) *AppError {
	return NewAppError(AuthError, message, underlyingError)
}

// NewForbiddenError creates a new ForbiddenError (authorization failure, 403).
func NewForbiddenError(message string, underlyingError error) *AppError {
	return NewAppError(ForbiddenError, message, underlyingError)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(message string, underlyingError error) *AppError {
	return NewAppError(NotFoundError, message, underlyingError)
}

// NewBadRequestError creates a new BadRequestError.
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, message, underlyingError)
}

// NewValidationError creates a new ValidationError for locally rejected input.
func NewValidationError(message string, underlyingError error) *AppError {
	return NewAppError(ValidationError, message, underlyingError)
}

// NewServerError creates a new ServerError.
func NewServerError(message string, underlyingError error) *AppError {
	return NewAppError(ServerError, message, underlyingError)
}

// ErrorResponse represents the error payload returned by the blog API.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse suitable for API
// responses. Only the user-facing Message is included, never the underlying
// error details.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Message: e.Message}
}

// UserMessage extracts the user-facing message from any error. Non-AppError
// values fall back to the provided default, so callers can always show
// something sensible without inspecting the error chain themselves.
func UserMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if fallback != "" {
		return fallback
	}
	if err != nil {
		return err.Error()
	}
	return "something went wrong, please try again"
}

// Helper functions to check error types. These use `errors.As` so they work
// on wrapped errors as well as bare *AppError values.

// IsNetworkError checks if an error is a NetworkError.
func IsNetworkError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NetworkError
}

// IsAuthError checks if an error is an AuthError (authentication problem).
func IsAuthError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == AuthError
}

// IsForbiddenError checks if an error is a ForbiddenError (authorization problem).
func IsForbiddenError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ForbiddenError
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsValidationError checks if an error is a Validation error.
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}

// IsBadRequest checks if an error is a BadRequest error.
func IsBadRequest(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == BadRequestError
}
