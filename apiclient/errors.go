package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-case-portal/internal/errors"
)

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Details    any
	Body       []byte
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// Unwrap maps well-known statuses onto the package sentinels so callers can
// use errors.Is(err, errors.ErrUnauthorized) and friends.
func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return errors.ErrInvalidRequest
	case http.StatusUnauthorized:
		return errors.ErrUnauthorized
	case http.StatusForbidden:
		return errors.ErrForbidden
	case http.StatusNotFound:
		return errors.ErrNotFound
	}
	if e.StatusCode >= http.StatusInternalServerError {
		return errors.ErrInternal
	}
	return nil
}

// newError parses one of the backend error shapes:
//
//	{"error": {"status_code": 404, "code": "not_found", "message": "...", "details": {...}}}
//	{"detail": "..."}
//	{"message": "..."}
//	plain text
func newError(status int, body []byte) *Error {
	e := &Error{StatusCode: status, Body: body}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
			e.Message = text
		}
		return e
	}

	if envelope, ok := payload["error"].(map[string]any); ok {
		e.Code = FirstString(envelope, "code")
		e.Message = FirstString(envelope, "message", "detail")
		e.Details = envelope["details"]
		return e
	}

	e.Code = FirstString(payload, "code")
	e.Message = FirstString(payload, "message", "detail")
	if e.Message == "" {
		e.Details = payload
	}
	return e
}

// Message renders err as a sentence suitable for showing to a user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		switch status := apiErr.StatusCode; {
		case status == http.StatusBadRequest:
			return "Bad request. Please check your input."
		case status == http.StatusUnauthorized:
			return "Your session has expired. Please sign in again."
		case status == http.StatusForbidden:
			return "You do not have permission to perform this action."
		case status == http.StatusNotFound:
			return "Requested resource was not found."
		case status >= 500:
			return "Server error. Please try again later."
		}
		return "Unexpected error. Please try again."
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out. Please try again."
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "Request timed out. Please try again."
		}
		return "Network error. Please check your connection."
	}
	return "Unexpected error. Please try again."
}
