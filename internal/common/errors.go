// Package common defines the sentinel errors shared by the storage, service
// and CLI layers of the tour catalog. Callers should use errors.Is to match
// these values; producers wrap them with context via fmt.Errorf("%w").
package common

import "errors"

var (
	// Lookup errors.
	ErrorNotFound   = errors.New("location not found")
	ErrFileNotFound = errors.New("file not found")

	// Storage errors. ErrQuotaExceeded is the only error with a recovery
	// path (see CatalogService.Attach).
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// Collaborator-level validation errors (import payloads, CLI input).
	ErrInvalidInput = errors.New("invalid input")

	// Configuration errors.
	ErrUnknownBackend = errors.New("unknown storage backend")
)
