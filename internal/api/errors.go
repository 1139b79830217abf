package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/folio-social/folio/internal/models"
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// errorTable maps domain error kinds to HTTP status and client message
var errorTable = []struct {
	kind    error
	code    int
	message string
}{
	{models.ErrDuplicateEmail, http.StatusConflict, "An account with that email already exists"},
	{models.ErrNotFound, http.StatusNotFound, "Account not found"},
	{models.ErrWrongPassword, http.StatusUnauthorized, "Wrong password"},
	{models.ErrPasswordTooLong, http.StatusBadRequest, "Password may not exceed 72 bytes"},
	{models.ErrSelfFollow, http.StatusBadRequest, "An account cannot follow itself"},
	{models.ErrAlreadyFollowing, http.StatusConflict, "Already following this account"},
	{models.ErrNotFollowing, http.StatusConflict, "Not following this account"},
	{models.ErrInvalidFolio, http.StatusBadRequest, "Folio names must be non-empty and may not contain commas"},
	{models.ErrUnavailable, http.StatusServiceUnavailable, "Service temporarily unavailable"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, "Request timed out"},
}

// FromError converts a service error into an API error; unknown errors are 500s
func FromError(err error) *Error {
	for _, e := range errorTable {
		if errors.Is(err, e.kind) {
			return NewError(e.code, e.message)
		}
	}
	return NewError(http.StatusInternalServerError, "Internal server error")
}
