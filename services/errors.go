package services

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindNotFound
	KindConflict
	KindUnauthorized
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindUnauthorized:
		return "Unauthorized"
	case KindTransient:
		return "TransientDependencyFailure"
	}
	return "Unknown"
}

// Sentinels for errors.Is checks against a *DomainError.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTransient    = errors.New("transient dependency failure")
)

// DomainError is a user-facing failure of a public operation. Message is safe
// to show to the guest as is.
type DomainError struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) Is(target error) bool {
	switch e.Kind {
	case KindInvalidInput:
		return target == ErrInvalidInput
	case KindNotFound:
		return target == ErrNotFound
	case KindConflict:
		return target == ErrConflict
	case KindUnauthorized:
		return target == ErrUnauthorized
	case KindTransient:
		return target == ErrTransient
	}
	return false
}

func invalidInput(field, msg string) *DomainError {
	return &DomainError{Kind: KindInvalidInput, Field: field, Message: msg}
}

func notFound(msg string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: msg}
}

func conflict(msg string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: msg}
}

func unauthorized(msg string) *DomainError {
	return &DomainError{Kind: KindUnauthorized, Message: msg}
}

func transient(msg string, err error) *DomainError {
	return &DomainError{Kind: KindTransient, Message: msg, Err: err}
}

// KindOf returns the kind of a *DomainError in err's chain, or 0.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// wrap -> infrastructure error dengan konteks operasi
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
