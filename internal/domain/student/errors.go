package student

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEmail is returned by stores when the email unique constraint fires.
	ErrDuplicateEmail = errors.New("duplicate email")

	// ErrNotFound is returned by stores when a write targets a missing row.
	ErrNotFound = errors.New("student not found")
)

// DuplicateEmailError carries the email that collided.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateEmail, e.Email)
}

// Is makes errors.Is(err, ErrDuplicateEmail) match.
func (e *DuplicateEmailError) Is(target error) bool {
	return target == ErrDuplicateEmail
}

// Kind classifies caller-facing failures.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad request"
	case KindNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// Error is a rule violation whose Message is shown to clients verbatim.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// BadRequest builds a KindBadRequest error.
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
