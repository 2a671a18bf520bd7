package backend

import "errors"

// ErrNoBackendAvailable is returned when no registered backend is
// available on the current system.
var ErrNoBackendAvailable = errors.New("backend: no backend available")

// NotFoundError indicates a named backend is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "backend: not registered: " + e.Name
}

// UnavailableError indicates a backend is registered but cannot run on
// this system.
type UnavailableError struct {
	Name string
}

func (e *UnavailableError) Error() string {
	return "backend: unavailable: " + e.Name
}
