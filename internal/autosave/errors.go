package autosave

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrOffline rejects a manual save while offline; the content stays pending.
	ErrOffline = errors.New("offline: changes are kept and saved on reconnect")

	ErrSaveInProgress = errors.New("save already in progress")
	ErrNothingToSave  = errors.New("no unsaved changes")
	ErrSessionClosed  = errors.New("session is not running")

	// ErrVersionNotFound is matched by *NotFoundError.
	ErrVersionNotFound = errors.New("version not found")

	// ErrConnectivity lets a SaveFunc mark a failure as lost connectivity.
	ErrConnectivity = errors.New("connectivity lost")
)

const fallbackMessage = "failed to save changes"

// PersistenceError wraps a rejection from the SaveFunc.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "persist draft: " + e.Message()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Message is the user-facing text, with a generic fallback.
func (e *PersistenceError) Message() string {
	if e.Err == nil || e.Err.Error() == "" {
		return fallbackMessage
	}
	return e.Err.Error()
}

// NotFoundError is returned by Restore for ids that are not in the ledger,
// either never issued or already evicted.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("version %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrVersionNotFound
}

// IsConnectivityError reports whether err means the backend could not be
// reached, as opposed to the backend rejecting the write.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConnectivity) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
