// Package repository contains data access logic separated from HTTP
// handlers. This file defines error values reused across repositories.
// Handlers and services match these with errors.Is and translate them
// into HTTP responses; raw driver errors never cross that boundary.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned on registration when the email column's
// unique constraint is violated.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicate is returned when an insert collides with an existing
// unique row, e.g. liking the same blog twice or a taken username.
var ErrDuplicate = errors.New("duplicate entry")

// ErrStoreUnavailable wraps any storage-layer fault. Callers treat it
// as a 500-class condition; it is never swallowed, since a false
// "exists" answer or a missed delete would break token revocation.
var ErrStoreUnavailable = errors.New("store unavailable")
