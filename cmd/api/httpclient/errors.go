package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed dealership call.
type Kind int

const (
	// KindNetworkUnreachable means no response arrived at all.
	KindNetworkUnreachable Kind = iota + 1
	// KindTimeout means the request ran past the client timeout.
	KindTimeout
	// KindServer means the API answered with a non-2xx status.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindTimeout:
		return "timeout"
	case KindServer:
		return "server_error"
	default:
		return "unknown"
	}
}

// Error is returned by BaseClient.Request for every transport or status failure.
type Error struct {
	Kind       Kind
	Method     string
	URL        string
	StatusCode int
	// Message is the server supplied "message" field, if any.
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindServer:
		if e.Message != "" {
			return fmt.Sprintf("httpclient: %s %s: status=%d: %s", e.Method, e.URL, e.StatusCode, e.Message)
		}
		return fmt.Sprintf("httpclient: %s %s: status=%d", e.Method, e.URL, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("httpclient: %s %s: %s: %v", e.Method, e.URL, e.Kind, e.Err)
		}
		return fmt.Sprintf("httpclient: %s %s: %s", e.Method, e.URL, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether err is a transport-class failure worth retrying.
func IsTransient(err error) bool {
	var he *Error
	if !errors.As(err, &he) {
		return false
	}
	return he.Kind == KindNetworkUnreachable || he.Kind == KindTimeout
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var he *Error
	return errors.As(err, &he) && he.Kind == kind
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *Error
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// Message returns the server message carried by err, or "".
func Message(err error) string {
	var he *Error
	if errors.As(err, &he) {
		return he.Message
	}
	return ""
}

// serverMessage pulls "message" (or "error") out of a JSON error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
	}
	return ""
}
