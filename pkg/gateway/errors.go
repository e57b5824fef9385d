package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	stderrors "errors"
)

type Kind string

const (
	// KindNetwork means no HTTP response was received.
	KindNetwork Kind = "network"
	// KindServer means the backend answered with a non-2xx status.
	KindServer Kind = "server"
)

// Error is returned by every gateway call that fails. Message is meant to be
// shown to the user as is.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a gateway error from err's chain.
func AsError(err error) (*Error, bool) {
	var gerr *Error
	if stderrors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	gerr, ok := AsError(err)
	return ok && gerr.Kind == KindServer && gerr.Status == 404
}

// Message returns the text to surface for err: the backend supplied message
// for gateway errors, err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if gerr, ok := AsError(err); ok {
		return gerr.Message
	}
	return err.Error()
}

// serverMessage picks detail when it is a string, else message, else a
// generic "Request failed: <status>".
func serverMessage(status int, body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		var detail string
		if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &detail) == nil && strings.TrimSpace(detail) != "" {
			return detail
		}
		if strings.TrimSpace(payload.Message) != "" {
			return payload.Message
		}
	}
	return fmt.Sprintf("Request failed: %d", status)
}
