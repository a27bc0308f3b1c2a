package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict") // e.g., email already registered
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation failed")

	ErrUnsupportedFileType = fmt.Errorf("unsupported file type, expected jpg, jpeg or png: %w", ErrValidation)
	ErrFileRequired        = fmt.Errorf("a receipt must be uploaded before submitting: %w", ErrValidation)
	ErrUploadInProgress    = fmt.Errorf("a store call is already pending: %w", ErrConflict)
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Status
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// StoreError is the rejection returned by a store client. Its message is the
// user-facing text rendered by the bills page, e.g. "Erreur 404".
type StoreError struct {
	Status  int
	Message string
	Err     error
}

// NewStoreError builds the store rejection for an HTTP status code.
func NewStoreError(status int, cause error) *StoreError {
	return &StoreError{
		Status:  status,
		Message: fmt.Sprintf("Erreur %d", status),
		Err:     cause,
	}
}

// StoreErrorFrom converts a service error into a store rejection. Errors that
// already are store rejections are returned unchanged.
func StoreErrorFrom(err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr
	}
	return NewStoreError(HTTPStatusFromError(err), err)
}

func (e *StoreError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel matching the status and the cause, so
// errors.Is(err, ErrNotFound) holds for any 404 rejection.
func (e *StoreError) Unwrap() []error {
	errs := []error{statusSentinel(e.Status)}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func statusSentinel(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusConflict:
		return ErrConflict
	default:
		return ErrInternalServer
	}
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
