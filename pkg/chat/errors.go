package chat

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common conditions.
var (
	// ErrNoAPIKey is returned when the API key is missing.
	ErrNoAPIKey = errors.New("chat: API key not configured")

	// ErrEmptyMessage is returned for blank user messages.
	ErrEmptyMessage = errors.New("chat: message cannot be empty")

	// ErrInvalidResponse is returned when the reply text is missing.
	ErrInvalidResponse = errors.New("chat: invalid response from Gemini service")

	// ErrEmptyResponse is returned when the service replies with no text.
	ErrEmptyResponse = errors.New("chat: empty response from service")

	// ErrBusy is returned while a previous message is still being answered.
	ErrBusy = errors.New("chat: a message is already being processed")

	// ErrNoResponder is returned when a chain is built without responders.
	ErrNoResponder = errors.New("chat: responder required")
)

// APIError represents an error response from the chat API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API, if any.
	Message string

	// Status is the API status string, e.g. "RESOURCE_EXHAUSTED".
	Status string

	// Provider identifies which responder returned the error.
	Provider string
}

// Error returns a human-readable description of the failure.
func (e *APIError) Error() string {
	switch {
	case e.IsUnauthorized():
		return "API key is invalid or expired"
	case e.IsRateLimited():
		return "Request limit exceeded. Try again in a few minutes"
	case e.IsNotFound():
		return "Model not found. Check the API configuration"
	}
	msg := fmt.Sprintf("HTTP error: %d", e.StatusCode)
	if e.Message != "" {
		msg += " - " + e.Message
	}
	return msg
}

// IsUnauthorized returns true for HTTP 401.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsRateLimited returns true for HTTP 429.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound returns true for HTTP 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsServerError returns true for HTTP 5xx.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// ProviderError wraps an error with provider context.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("chat [%s]: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with provider context.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}

// ChainError aggregates errors from every responder in a chain.
type ChainError struct {
	Errors []error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	if len(e.Errors) == 0 {
		return "chat chain: no errors recorded"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("chat chain: %v", e.Errors[0])
	}
	return fmt.Sprintf("chat chain: all %d responders failed, last error: %v",
		len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap returns the last error in the chain.
func (e *ChainError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// Describe returns the text shown to the user for err.
func Describe(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, ErrInvalidResponse):
		return "Invalid response from Gemini service"
	case errors.Is(err, ErrEmptyResponse):
		return "Empty response from service"
	case errors.Is(err, ErrNoAPIKey):
		return "API key not configured"
	case errors.Is(err, ErrEmptyMessage):
		return "Message cannot be empty"
	default:
		return err.Error()
	}
}
