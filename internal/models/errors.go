package models

import (
	"errors"
	"net/http"
)

// Error kinds shared by every layer. Wrap them with fmt.Errorf("%w: ...") and
// classify with errors.Is.
var (
	// ErrTransport covers network failures, timeouts, non-2xx responses and
	// undecodable bodies from the labeling service.
	ErrTransport = errors.New("transport error")
	// ErrPersistence means the key-value store could not be read or written.
	ErrPersistence = errors.New("persistence error")
	// ErrValidation rejects input before any I/O happens.
	ErrValidation = errors.New("validation error")
	// ErrEncoding is returned when records cannot be encoded for export.
	ErrEncoding = errors.New("encoding error")
	// ErrNotFound means the requested item does not exist.
	ErrNotFound = errors.New("not found")
)

// MapHTTPStatus maps domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
