package swapi

import "fmt"

// ErrorKind classifies a query failure.
type ErrorKind int

const (
	// KindInvalidArgument means a caller-supplied parameter violated a
	// precondition. The network is never reached.
	KindInvalidArgument ErrorKind = iota
	// KindAPI covers everything from the remote boundary onward: timeouts,
	// network failures, HTTP error statuses, and decode failures.
	KindAPI
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindAPI:
		return "api error"
	default:
		return "unknown"
	}
}

// Error is the single domain error returned by the client. Callers branch on
// Kind; Message carries the human-readable detail.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func invalidArgument(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: msg}
}

func apiError(msg string, cause error) *Error {
	return &Error{Kind: KindAPI, Message: msg, Err: cause}
}

func apiErrorf(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindAPI, Message: fmt.Sprintf(format, args...), Err: cause}
}
