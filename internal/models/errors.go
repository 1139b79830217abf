package models

import "errors"

var (
	// store errors
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUnavailable    = errors.New("store unavailable")

	// account errors
	ErrWrongPassword   = errors.New("wrong password")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
	ErrInvalidFolio    = errors.New("invalid folio name")

	// follow graph errors
	ErrSelfFollow       = errors.New("account cannot follow itself")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
)
