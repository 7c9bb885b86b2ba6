package session

import (
	"errors"
	"fmt"
)

// ErrClientClosed is returned by any pool operation attempted after CloseAll.
var ErrClientClosed = errors.New("connection pool has been closed")

// ErrSessionEstablishment matches every EstablishmentError via errors.Is.
var ErrSessionEstablishment = errors.New("session establishment failed")

// EstablishmentError is returned when opening a connection to a server or
// loading the tools it advertises fails.
type EstablishmentError struct {
	Server string
	Err    error
}

func (e *EstablishmentError) Error() string {
	return fmt.Sprintf("failed to establish session for server %s: %v", e.Server, e.Err)
}

func (e *EstablishmentError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSessionEstablishment.
func (e *EstablishmentError) Is(target error) bool {
	return target == ErrSessionEstablishment
}

// CloseError is produced when releasing a session fails. Pools log it and
// carry on; it never escapes CloseAll, Refresh or the manager cleanups.
type CloseError struct {
	Server string
	Err    error
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("failed to close session for server %s: %v", e.Server, e.Err)
}

func (e *CloseError) Unwrap() error {
	return e.Err
}

// UnknownServerError is returned when a server name is not part of the
// pool's configuration.
type UnknownServerError struct {
	Server string
}

func (e *UnknownServerError) Error() string {
	return "server not configured in pool: " + e.Server
}

// UnknownToolError is returned when a server does not advertise the
// requested tool.
type UnknownToolError struct {
	Server string
	Tool   string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool %s not found on server %s", e.Tool, e.Server)
}

// IsUnknownServer reports whether err is or wraps an UnknownServerError.
func IsUnknownServer(err error) bool {
	var target *UnknownServerError
	return errors.As(err, &target)
}

// IsUnknownTool reports whether err is or wraps an UnknownToolError.
func IsUnknownTool(err error) bool {
	var target *UnknownToolError
	return errors.As(err, &target)
}
