package legend

import (
	"errors"
	"fmt"
)

// ===========================================================================
// Registration Errors
// ===========================================================================

// ErrDuplicateHandle is returned when a collaborator registers a handle that is already live.
var ErrDuplicateHandle = errors.New("handle already registered")

// ErrRetiredHandle is returned when a collaborator registers a handle that was retired
// earlier in the same session. Handles are never resurrected without Tree.Reset.
var ErrRetiredHandle = errors.New("handle was retired and cannot be reused")

// ErrInvalidHandle is returned for negative handles, which are reserved for sentinels.
var ErrInvalidHandle = errors.New("invalid handle")

// ErrInvalidCollaborator is returned when a required collaborator reference is nil.
var ErrInvalidCollaborator = errors.New("collaborator reference is nil")

// ===========================================================================
// Structural Errors
// ===========================================================================

// ErrNotFound is returned when a handle does not resolve to a live entry.
var ErrNotFound = errors.New("handle not found")

// ErrNotAGroup is returned when a group was expected but the handle names a layer.
var ErrNotAGroup = errors.New("handle is not a group")

// ErrCycleDetected is returned when a move would place a group beneath its own descendant.
var ErrCycleDetected = errors.New("move would create a cycle")

// ErrRootImmutable is returned when attempting to move or remove the root group.
var ErrRootImmutable = errors.New("root group cannot be moved or removed")

// ErrStaleHandle is returned when a handle view is used after its entry was removed
// (or was never registered at all).
var ErrStaleHandle = errors.New("stale handle")

// NotFoundError carries the handle that failed to resolve. It matches ErrNotFound.
type NotFoundError struct {
	Kind   string
	Handle Handle
}

func (e *NotFoundError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "entry"
	}
	return fmt.Sprintf("%s not found: %d", kind, e.Handle)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// StaleHandleError is returned by weak views whose handle no longer resolves.
// Retired is false when the handle was never registered in the table.
type StaleHandleError struct {
	Handle  Handle
	Retired bool
}

func (e *StaleHandleError) Error() string {
	if e.Retired {
		return fmt.Sprintf("stale handle %d: entry was removed", e.Handle)
	}
	return fmt.Sprintf("stale handle %d: never registered", e.Handle)
}

func (e *StaleHandleError) Unwrap() error { return ErrStaleHandle }
