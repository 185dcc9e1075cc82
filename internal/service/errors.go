package service

import (
	"errors"
	"net/http"

	"github.com/BloggingApp/blog-gateway/internal/apiclient"
)

var (
	ErrInternal            = errors.New("internal server error")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("resource not found")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrToggleInProgress    = errors.New("a previous toggle is still in progress")
	ErrFileMustBeImage     = errors.New("file must be an image")
	ErrSuggestionsDisabled = errors.New("ai suggestions are not configured")
)

// ValidationError is returned before any backend call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// notFoundOr turns a backend 404 into ErrNotFound and leaves any other error
// untouched.
func notFoundOr(err error) error {
	if apiclient.IsStatus(err, http.StatusNotFound) {
		return ErrNotFound
	}
	return err
}
