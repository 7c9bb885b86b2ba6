package api

import (
	"errors"
	"fmt"
	"net/http"

	"mcpool/internal/config"
	"mcpool/internal/session"
)

// NotFoundError is returned when a named resource does not exist.
type NotFoundError struct {
	ResourceType string
	ResourceName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// BadRequestError wraps a request that cannot be served as sent.
type BadRequestError struct {
	Err error
}

func (e *BadRequestError) Error() string {
	return e.Err.Error()
}

func (e *BadRequestError) Unwrap() error {
	return e.Err
}

// statusFor maps an error to the HTTP status returned to the caller.
func statusFor(err error) int {
	var notFound *NotFoundError
	var badRequest *BadRequestError
	var validation config.ValidationErrors

	switch {
	case errors.Is(err, session.ErrClientClosed):
		return http.StatusConflict
	case errors.Is(err, session.ErrSessionEstablishment):
		return http.StatusBadGateway
	case session.IsUnknownServer(err), session.IsUnknownTool(err), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &badRequest), errors.As(err, &validation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
