// Package dberrors holds the sentinel errors shared by every repository.
// Callers compare with errors.Is; repositories wrap them with context.
package dberrors

import "errors"

// ErrNotFound is returned when a referenced user, seat or reservation does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an operation collides with existing state,
// such as a duplicate email or a seat that is already occupied.
var ErrConflict = errors.New("conflict")

// ErrInvalid is returned when a record fails validation before reaching the database.
var ErrInvalid = errors.New("invalid record")
