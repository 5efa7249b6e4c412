// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// parsing driver error strings.
package repository

import "errors"

// ErrUsernameExists is returned when a signup collides with an existing
// username. Handlers should translate this into an HTTP 409 response.
var ErrUsernameExists = errors.New("username already exists")

// ErrNoteNotFound is returned when a note does not exist or belongs to a
// different owner. The two cases are deliberately indistinguishable so a
// caller can never probe for the existence of someone else's note.
// Handlers should translate this into an HTTP 404 response.
var ErrNoteNotFound = errors.New("note not found")
