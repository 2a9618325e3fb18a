package adapter

import "errors"

// Sentinel errors mapped from transport-level failures. Callers match them
// with [errors.Is].
var (
	// ErrOffline is returned when the server cannot be reached at all:
	// connection refused, DNS failure, timeout. It marks the boundary
	// between "the server rejected the request" and "there is no server to
	// reject it", which is exactly the distinction the offline queue needs.
	ErrOffline = errors.New("server unreachable")

	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrBadGateway          = errors.New("bad gateway")
	ErrInternalServerError = errors.New("internal server error")
)
