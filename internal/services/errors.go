package services

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/policy"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/store"
)

// Error kinds. Handlers map each kind to one HTTP status.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = policy.ErrUnauthenticated
	ErrForbidden       = policy.ErrForbidden
	ErrNotFound        = store.ErrNotFound
)

var (
	ErrAuthorNotFound     error = &kindError{kind: ErrNotFound, msg: "author not found"}
	ErrEmailTaken         error = &kindError{kind: ErrValidation, msg: "email already registered"}
	ErrInvalidToken       error = &kindError{kind: ErrUnauthenticated, msg: "invalid or expired token"}
	ErrInvalidCredentials       = errors.New("invalid email or password")
)

// kindError is a specific error that still matches its kind with errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func validationError(msg string) error {
	return &kindError{kind: ErrValidation, msg: msg}
}
