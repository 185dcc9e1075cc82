package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError is a non-2xx answer from the backend.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

func newHTTPError(status int, body []byte) *HTTPError {
	return &HTTPError{
		Status:  status,
		Message: errorMessage(status, body),
	}
}

// errorMessage pulls the human readable part out of an error body. Backends
// in this system answer with either {message}, {details} or {error}; message
// may also be a list of validation messages.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Details string          `json:"details"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := rawMessage(payload.Message); msg != "" {
			return msg
		}
		if payload.Details != "" {
			return payload.Details
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	return http.StatusText(status)
}

func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return strings.Join(many, "; ")
	}

	return ""
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

func IsStatus(err error, status int) bool {
	return StatusOf(err) == status
}
