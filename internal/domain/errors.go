package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")

	// ErrDuplicateCredential is the parent of every username/email collision.
	ErrDuplicateCredential = errors.New("duplicate credential")
	ErrDuplicateEmail      = fmt.Errorf("%w: email already exists", ErrDuplicateCredential)
	ErrDuplicateUsername   = fmt.Errorf("%w: username already exists", ErrDuplicateCredential)

	// ErrAuthentication is returned by login for an unknown email and for a
	// wrong password alike.
	ErrAuthentication = errors.New("invalid credentials")

	// Authorization gate rejections. They are distinct for logs and render
	// as 401 to clients.
	ErrNoCredential      = errors.New("no credential")
	ErrTokenInvalid      = errors.New("token invalid")
	ErrPrincipalNotFound = errors.New("principal not found")

	ErrHashing       = errors.New("password hashing failed")
	ErrConfiguration = errors.New("configuration error")
)
