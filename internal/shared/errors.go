package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// ErrorKind classifies a request failure so the caller can pick the right
// response shape: inline field errors, or a redirect carrying a flash.
type ErrorKind int

const (
	// KindUnauthorized means the caller lacks the required verb on a module.
	KindUnauthorized ErrorKind = iota
	// KindInvalid means field-level validation rejected the submission.
	KindInvalid
	// KindMissingParam means a required route or form identifier was absent.
	KindMissingParam
	// KindPersistence means the data access call reported an error.
	KindPersistence
)

// Error is a classified failure raised inside a mutating request. Exactly one
// of Fields or Detail carries the payload for its kind.
type Error struct {
	Kind   ErrorKind
	Detail string
	Fields map[string]string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	switch e.Kind {
	case KindUnauthorized:
		return "not authorized"
	case KindInvalid:
		return "validation failed"
	case KindMissingParam:
		return "missing parameter"
	default:
		return "persistence failure"
	}
}

// UserSafeMessage reduces err to text that can be shown in a flash without
// leaking internals.
func UserSafeMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found"
	case errors.Is(err, ErrAlreadyExists):
		return "A record with the same identifier already exists"
	default:
		return "Something went wrong, please try again"
	}
}
