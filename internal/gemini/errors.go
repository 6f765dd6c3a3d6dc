package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorKind string

const (
	KindEmptyInput     ErrorKind = "empty_input"
	KindUnreachable    ErrorKind = "unreachable"
	KindBadStatus      ErrorKind = "bad_status"
	KindAuth           ErrorKind = "auth"
	KindInvalidKey     ErrorKind = "invalid_key"
	KindNotFound       ErrorKind = "endpoint_not_found"
	KindEmptyReply     ErrorKind = "empty_reply"
	KindMalformedReply ErrorKind = "malformed_reply"
	KindUnparseable    ErrorKind = "unparseable_json"
	KindRejected       ErrorKind = "rejected_fields"
)

const reasonAPIKeyInvalid = "API_KEY_INVALID"

// ErrEmptyText is returned when there is nothing to embed or generate from.
var ErrEmptyText = &Error{Kind: KindEmptyInput, Hint: "text cannot be empty"}

// Error is a classified failure of the generative or embedding endpoint.
// Hint is meant for operators; Body is the raw provider reply and must not
// reach end users.
type Error struct {
	Kind   ErrorKind
	Status int
	Hint   string
	Body   string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("gemini %s", e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf reports the kind of a gemini error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ""
}

// Retryable reports whether a fresh attempt could succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindUnreachable:
		return true
	case KindBadStatus:
		return e.Status == http.StatusTooManyRequests || e.Status >= 500
	}
	return false
}

func classifyStatus(status int, body []byte) *Error {
	e := &Error{Kind: KindBadStatus, Status: status, Body: string(body)}

	switch {
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
		e.Hint = "Model endpoint not found or API misconfigured"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindAuth
		e.Hint = "key invalid or restricted"
	case status == http.StatusBadRequest:
		if errorReason(body) == reasonAPIKeyInvalid {
			e.Kind = KindInvalidKey
			e.Hint = "key invalid or restricted. Check GCP console"
		} else {
			e.Hint = "request rejected. Check API key and payload"
		}
	default:
		e.Hint = "upstream returned an error"
	}
	return e
}

func errorReason(body []byte) string {
	var perr ProviderError
	if err := json.Unmarshal(body, &perr); err == nil {
		for _, d := range perr.Error.Details {
			if d.Reason != "" {
				return d.Reason
			}
		}
	}
	if strings.Contains(string(body), reasonAPIKeyInvalid) {
		return reasonAPIKeyInvalid
	}
	return ""
}
