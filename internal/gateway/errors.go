package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"learnsnap/internal/validate"
)

// Kind classifies a failed call.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindClient
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NETWORK_ERROR"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindClient:
		return "CLIENT_ERROR"
	case KindServer:
		return "SERVER_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Error is every failure the gateway returns. Message is always suitable for
// showing to the user.
type Error struct {
	Kind    Kind
	Status  int // 0 for network failures
	Message string
	Fields  map[string]string // per-field messages from a server-side validation failure
	Method  string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels below, so errors.Is(err, ErrNotFound) works
// for any 404.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Status != 0 || t.Message != "" {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNetwork      = &Error{Kind: KindNetwork}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrClient       = &Error{Kind: KindClient}
	ErrServer       = &Error{Kind: KindServer}
)

const (
	msgNetwork      = "Network error. Please check your internet connection."
	msgBadRequest   = "Bad request."
	msgUnauthorized = "Authentication failed. Please log in again."
	msgForbidden    = "You do not have permission to access this resource."
	msgNotFound     = "The requested resource was not found."
	msgUnavailable  = "The server is temporarily unavailable."
	msgServer       = "A server error occurred. Please try again later."
	msgClient       = "The request could not be processed."
	msgUnknown      = "An error occurred."
)

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindClient
	}
}

func fallbackMessage(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return msgBadRequest
	case status == http.StatusUnauthorized:
		return msgUnauthorized
	case status == http.StatusForbidden:
		return msgForbidden
	case status == http.StatusNotFound:
		return msgNotFound
	case status == http.StatusServiceUnavailable:
		return msgUnavailable
	case status >= 500:
		return msgServer
	case status >= 400:
		return msgClient
	default:
		return msgUnknown
	}
}

type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

// classify turns a >= 400 response into an *Error, preferring the server's
// own message.
func classify(method, path string, status int, body []byte) *Error {
	e := &Error{
		Kind:    kindForStatus(status),
		Status:  status,
		Message: fallbackMessage(status),
		Method:  method,
		Path:    path,
	}
	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		switch {
		case eb.Message != "":
			e.Message = eb.Message
		case eb.Error != "":
			e.Message = eb.Error
		}
		if len(eb.Errors) > 0 {
			e.Fields = eb.Errors
		}
	}
	return e
}

func networkError(method, path string, err error) *Error {
	return &Error{Kind: KindNetwork, Message: msgNetwork, Method: method, Path: path, Err: err}
}

// KindOf returns the kind of a gateway error, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Message renders any error for display: gateway and validation errors carry
// their own text, anything else gets the generic message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if validate.IsValidation(err) {
		return err.Error()
	}
	return msgUnknown
}
