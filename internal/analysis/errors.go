package analysis

import (
	"errors"
	"fmt"
)

// Kind categorizes an analysis failure for the state machine's error policy.
type Kind string

// Error kinds.
const (
	// KindTransport covers network failures, timeouts, and server errors.
	// Recoverable: the user may retry.
	KindTransport Kind = "transport"
	// KindParse means the model's output did not match the schema even after
	// the one corrective retry.
	KindParse Kind = "parse"
	// KindQuota means the endpoint signaled rate-limit/quota exhaustion.
	// Never retried automatically.
	KindQuota Kind = "quota"
)

// Error is a typed failure from the analysis client.
type Error struct {
	Kind    Kind
	Message string
	Code    int // HTTP status code when applicable
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("analysis %s error (status %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("analysis %s error: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorKind returns the Kind of err when it is (or wraps) an *Error, and ""
// otherwise.
func ErrorKind(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func newTransportError(code int, message string, err error) *Error {
	return &Error{Kind: KindTransport, Code: code, Message: message, Err: err}
}

func newParseError(message string, err error) *Error {
	return &Error{Kind: KindParse, Message: message, Err: err}
}

func newQuotaError(code int, message string) *Error {
	return &Error{Kind: KindQuota, Code: code, Message: message}
}
