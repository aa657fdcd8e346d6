package domain

import (
	"github.com/allisson/envelope/internal/errors"
)

// Key record error definitions.
var (
	// ErrDekRecordNotFound indicates no key record exists for the requested record.
	ErrDekRecordNotFound = errors.Wrap(errors.ErrNotFound, "dek record not found")

	// ErrDekDestroyed indicates the key record exists but its DEK has been
	// irreversibly destroyed; the data it protected cannot be recovered.
	ErrDekDestroyed = errors.Wrap(errors.ErrGone, "dek destroyed")

	// ErrDekRecordExists indicates a key record already exists for the
	// protected record. Raised by the unique constraint when two writers
	// race to create the first DEK for a record.
	ErrDekRecordExists = errors.Wrap(errors.ErrConflict, "dek record already exists")
)
