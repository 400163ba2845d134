// Package apperr defines the error taxonomy shared by the services and the
// HTTP layer: validation, storage, render and import failures plus a handful
// of lifecycle sentinels.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrTrashDisabled     = errors.New("trash is disabled")
	ErrInvalidTransition = errors.New("invalid document status transition")
	ErrEmptyBody         = errors.New("document body is empty")
)

// ValidationError reports a rejected input. Nothing is written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// StorageError wraps a failure of the underlying record store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// RenderError is returned when the document renderer cannot produce output.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render: %v", e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }

func Render(err error) error {
	if err == nil {
		return nil
	}
	return &RenderError{Err: err}
}

// ImportError aborts a backup import.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string { return fmt.Sprintf("import: %v", e.Err) }
func (e *ImportError) Unwrap() error { return e.Err }

func Import(err error) error {
	if err == nil {
		return nil
	}
	return &ImportError{Err: err}
}

// Status maps an error to the HTTP status and message shown to the user.
func Status(err error) (int, string) {
	var (
		ve *ValidationError
		se *StorageError
		re *RenderError
		ie *ImportError
	)
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, ve.Error()
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, ErrTrashDisabled), errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrEmptyBody):
		return http.StatusConflict, err.Error()
	case errors.As(err, &ie):
		return http.StatusBadRequest, ie.Error()
	case errors.As(err, &re):
		return http.StatusServiceUnavailable, "cannot generate document, check connectivity"
	case errors.As(err, &se):
		return http.StatusServiceUnavailable, "storage unavailable, try again"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// ToHTTP converts err into the echo.HTTPError returned by handlers.
func ToHTTP(err error) error {
	if err == nil {
		return nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	code, msg := Status(err)
	return echo.NewHTTPError(code, msg).SetInternal(err)
}
