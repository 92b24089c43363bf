package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is returned for any non-2xx backend response.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d on %s %s", e.StatusCode, e.Method, e.Path)
	}
	return fmt.Sprintf("matchbox API error (%d) on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Message)
}

// AuthError indicates that the bearer token was rejected or is missing.
// It is returned when a 401 response is received.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// StatusCode returns the HTTP status carried by err, or 0 for transport
// and decoding failures.
func StatusCode(err error) int {
	if IsAuthError(err) {
		return http.StatusUnauthorized
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Message returns the backend's message for err when there is one,
// otherwise fallback. Views use it for toasts.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// errorBody is the backend's error envelope. Spring returns "message";
// some handlers return "error".
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// maxPlainMessage caps a non-JSON error body, in runes.
const maxPlainMessage = 200

// errorMessage extracts a readable message from an error response body.
func errorMessage(body []byte) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
		return ""
	}
	text := strings.TrimSpace(string(body))
	if runes := []rune(text); len(runes) > maxPlainMessage {
		text = string(runes[:maxPlainMessage])
	}
	return text
}
