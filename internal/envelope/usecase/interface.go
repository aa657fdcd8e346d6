// Package usecase defines the interfaces and implementations for envelope
// encryption use cases. Use cases orchestrate operations between the DEK
// record repository and the key provider registry to give every protected
// record its own data encryption key, and to destroy that key when the
// record's data must become permanently unreadable.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	envelopeDomain "github.com/allisson/envelope/internal/envelope/domain"
)

// DekRecordRepository defines the interface for DEK record persistence operations.
//
// Implementations translate driver-level uniqueness violations on
// protected_record_id into envelopeDomain.ErrDekRecordExists; the use case
// relies on that translation to settle concurrent create races.
type DekRecordRepository interface {
	Create(ctx context.Context, record *envelopeDomain.DekRecord) error
	GetByProtectedRecordID(ctx context.Context, protectedRecordID string) (*envelopeDomain.DekRecord, error)
	GetByProtectedRecordIDAndOwner(ctx context.Context, protectedRecordID string, ownerID string) (*envelopeDomain.DekRecord, error)
	ListActiveByOwner(ctx context.Context, ownerID string, limit int) ([]*envelopeDomain.DekRecord, error)
	// Destroy overwrites the wrapped DEK with junk bytes and sets deleted_at in
	// a single statement, guarded on deleted_at IS NULL. The bool reports
	// whether this call performed the transition; false means another caller
	// destroyed the record first.
	Destroy(ctx context.Context, id uuid.UUID, junkDek []byte, deletedAt time.Time) (bool, error)
}

// EnvelopeUseCase defines the interface for envelope encryption business logic.
//
// Each protected record is bound to exactly one data encryption key for its
// entire lifetime, destroyed state included. Encrypt and decrypt operate on
// that key; destroy overwrites it so the record's ciphertext can never be
// recovered.
type EnvelopeUseCase interface {
	// CreateDek provisions the DEK for a protected record ahead of the first
	// encryption. When a record already holds an active DEK the existing ID is
	// returned; a destroyed DEK reports ErrDekDestroyed.
	CreateDek(ctx context.Context, ownerID string, protectedRecordID string) (uuid.UUID, error)
	// GetDekRecord retrieves the DEK record for a protected record scoped to
	// its owner. Absent records report ErrDekRecordNotFound.
	GetDekRecord(ctx context.Context, protectedRecordID string, ownerID string) (*envelopeDomain.DekRecord, error)
	// EncryptData encrypts a payload under the record's DEK, creating the DEK
	// on first use. The result is a sealed blob (nonce || ciphertext || tag).
	EncryptData(ctx context.Context, payload []byte, protectedRecordID string, ownerID string) ([]byte, error)
	// DecryptData recovers the payload from a sealed blob. The wrapped DEK is
	// unwrapped under the calling owner's key, so a caller that does not own
	// the record fails with ErrUnwrapFailed and never sees another tenant's
	// plaintext.
	DecryptData(ctx context.Context, ciphertext []byte, protectedRecordID string, ownerID string) ([]byte, error)
	// EncryptFile encrypts sourcePath into destPath as one sealed blob. The
	// destination is written via a temporary sibling and an atomic rename, so
	// it never holds a partial file.
	EncryptFile(ctx context.Context, sourcePath string, destPath string, protectedRecordID string, ownerID string) error
	// DecryptFile decrypts sourcePath into destPath with the same atomic
	// write discipline as EncryptFile.
	DecryptFile(ctx context.Context, sourcePath string, destPath string, protectedRecordID string, ownerID string) error
	// DestroyDek irreversibly destroys the record's DEK by overwriting the
	// wrapped key with random bytes. Returns whether a DEK existed for the
	// record: (false, nil) when none was ever created, (true, nil) when it is
	// destroyed (by this call or a previous one).
	DestroyDek(ctx context.Context, protectedRecordID string, ownerID string) (bool, error)
	// DestroyOwnerDeks destroys every active DEK that belongs to an owner,
	// paging batchSize records at a time with ratePerSec capping destruction
	// throughput (0 disables the cap). Returns the number of DEKs destroyed.
	DestroyOwnerDeks(ctx context.Context, ownerID string, batchSize int, ratePerSec float64) (int, error)
	// DekMetadata reports the non-secret projection of a record's DEK. It
	// never touches key material.
	DekMetadata(ctx context.Context, protectedRecordID string) (*envelopeDomain.DekMetadata, error)
	// IsActive reports whether a protected record holds a usable DEK. Absent
	// and destroyed records are both inactive.
	IsActive(ctx context.Context, protectedRecordID string) (bool, error)
}
