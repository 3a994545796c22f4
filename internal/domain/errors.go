package domain

import (
	"errors"
	"strings"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrBadRequest            = errors.New("bad request")
	ErrProviderNotConfigured = errors.New("push provider not configured")
)

// ValidationError carries field-level validation messages collected at
// authoring time. It unwraps to ErrBadRequest for status mapping.
type ValidationError struct {
	Fields []string `json:"fields"`
}

func (e *ValidationError) Error() string { return strings.Join(e.Fields, "; ") }

func (e *ValidationError) Unwrap() error { return ErrBadRequest }
