package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is returned for 401 responses on authenticated endpoints.
var ErrUnauthorized = errors.New("unauthorized")

// APIError carries a backend failure with its HTTP status and server message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// errorFromResponse maps an error response body to a typed error. The backend
// reports failures as `{"error": "..."}`.
func errorFromResponse(status int, body []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Error
	if msg == "" {
		msg = payload.Message
	}

	if status == http.StatusUnauthorized {
		if msg == "" {
			return ErrUnauthorized
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	}
	return &APIError{Status: status, Message: msg}
}
