// Package domain defines the core domain models for envelope encryption.
// Every protected record owns exactly one data encryption key, stored only in
// wrapped form. Destroying the wrapped key renders the record's ciphertext
// permanently unreadable, which is how per-record erasure is implemented.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DekRecord represents a wrapped data encryption key bound to one protected record.
type DekRecord struct {
	// ID is the unique identifier for this key record (UUIDv7).
	ID uuid.UUID
	// OwnerID identifies the tenant whose key hierarchy wrapped this DEK.
	OwnerID string
	// ProtectedRecordID is the identifier of the record this DEK encrypts.
	// Unique across all key records, including destroyed ones.
	ProtectedRecordID string
	// WrappedDek is the DEK encrypted under the owner's key hierarchy.
	// After destruction it holds random bytes of the original length.
	WrappedDek []byte
	// ProviderVersion identifies the key provider that wrapped this DEK.
	ProviderVersion string
	// KeyVersion is the rotation counter for this DEK, starting at 1.
	KeyVersion uint
	// CreatedAt is the UTC timestamp when this key record was created.
	CreatedAt time.Time
	// RotatedAt marks the last rewrap of this DEK (nil if never rotated).
	RotatedAt *time.Time
	// DeletedAt marks when this DEK was destroyed (nil if active).
	DeletedAt *time.Time
}

// Destroyed reports whether this key record has been irreversibly destroyed.
// A destroyed record keeps its row for audit purposes, but its wrapped DEK
// has been overwritten and can never be recovered.
func (d *DekRecord) Destroyed() bool {
	return d.DeletedAt != nil
}

// Metadata returns the non-secret view of this key record.
func (d *DekRecord) Metadata() DekMetadata {
	return DekMetadata{
		ID:                d.ID,
		OwnerID:           d.OwnerID,
		ProtectedRecordID: d.ProtectedRecordID,
		ProviderVersion:   d.ProviderVersion,
		KeyVersion:        d.KeyVersion,
		CreatedAt:         d.CreatedAt,
		RotatedAt:         d.RotatedAt,
		DeletedAt:         d.DeletedAt,
		Destroyed:         d.Destroyed(),
	}
}

// DekMetadata is the non-secret description of a key record. It carries no
// key material and is safe to log or return to operators.
type DekMetadata struct {
	ID                uuid.UUID
	OwnerID           string
	ProtectedRecordID string
	ProviderVersion   string
	KeyVersion        uint
	CreatedAt         time.Time
	RotatedAt         *time.Time
	DeletedAt         *time.Time
	Destroyed         bool
}
