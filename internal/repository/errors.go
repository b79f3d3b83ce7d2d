// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by someone
// else, while ErrConflict signals that a booking cannot be created
// because the requested slot overlaps an existing one.
package repository

import "errors"

// ErrForbidden is returned when a delete affects zero rows: either the
// booking does not exist or it belongs to another user. The two cases
// are deliberately not distinguished; handlers translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a booking cannot be created because an
// existing booking for the same room overlaps the requested interval.
// Handlers translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrUsernameExists is returned by user creation when the unique
// username constraint is violated.
var ErrUsernameExists = errors.New("username already exists")

// ErrRoomNotFound is returned when a room lookup, update or delete
// matches no row.
var ErrRoomNotFound = errors.New("room not found")
