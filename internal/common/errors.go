// Package common defines sentinel errors and constants shared by the storage
// backends and the CLI host. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Configuration errors.
	ErrorUnknownBackend = errors.New("unknown storage backend")
	ErrorMissingSetting = errors.New("missing required setting")
)
