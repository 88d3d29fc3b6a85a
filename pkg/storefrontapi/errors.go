package storefrontapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidConfig is returned when the client configuration is unusable
	ErrInvalidConfig = errors.New("invalid storefront API config")

	// ErrNetwork is returned when the API could not be reached
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned for 401/403 answers
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned for 404 answers
	ErrNotFound = errors.New("not found")

	// ErrRequestFailed is returned for every other non-2xx answer
	ErrRequestFailed = errors.New("request failed")

	// ErrInvalidResponse is returned when a 2xx body cannot be decoded
	ErrInvalidResponse = errors.New("invalid response")
)

// APIError is a non-2xx answer. Message is the response body text, or
// "HTTP <status>" when the body is empty.
type APIError struct {
	Status  int
	Message string
}

func newAPIError(status int, body []byte) *APIError {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}
	return &APIError{Status: status, Message: msg}
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap maps the status onto the package sentinels so callers can use
// errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrRequestFailed
	}
}

// Message extracts the text shown to the visitor after "Login failed: ",
// "Error adding product: " and the like.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrNetwork) {
		return "Failed to fetch"
	}
	return err.Error()
}
