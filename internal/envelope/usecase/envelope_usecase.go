package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/validation"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	cryptoDomain "github.com/allisson/envelope/internal/crypto/domain"
	cryptoService "github.com/allisson/envelope/internal/crypto/service"
	"github.com/allisson/envelope/internal/database"
	envelopeDomain "github.com/allisson/envelope/internal/envelope/domain"
	apperrors "github.com/allisson/envelope/internal/errors"
	appValidation "github.com/allisson/envelope/internal/validation"
)

const (
	// DefaultDestroyBatchSize is the page size for owner-wide destruction
	// when the caller does not supply one.
	DefaultDestroyBatchSize = 100

	// destroyConcurrency bounds parallel destroy statements within a batch.
	destroyConcurrency = 4
)

// envelopeUseCase implements the EnvelopeUseCase interface.
type envelopeUseCase struct {
	txManager     database.TxManager
	dekRecordRepo DekRecordRepository
	providers     *cryptoService.ProviderRegistry
}

// CreateDek provisions the DEK for a protected record ahead of the first
// encryption, returning the existing ID when one is already provisioned.
func (e *envelopeUseCase) CreateDek(
	ctx context.Context,
	ownerID string,
	protectedRecordID string,
) (uuid.UUID, error) {
	if err := validateIdentifier("owner id", ownerID); err != nil {
		return uuid.Nil, err
	}
	if err := validateIdentifier("protected record id", protectedRecordID); err != nil {
		return uuid.Nil, err
	}

	record, rawDek, err := e.ensureDek(ctx, ownerID, protectedRecordID)
	if err != nil {
		return uuid.Nil, err
	}
	if rawDek != nil {
		cryptoDomain.Zero(rawDek)
	}

	return record.ID, nil
}

// GetDekRecord retrieves the DEK record for a protected record scoped to its owner.
func (e *envelopeUseCase) GetDekRecord(
	ctx context.Context,
	protectedRecordID string,
	ownerID string,
) (*envelopeDomain.DekRecord, error) {
	if err := validateIdentifier("protected record id", protectedRecordID); err != nil {
		return nil, err
	}
	if err := validateIdentifier("owner id", ownerID); err != nil {
		return nil, err
	}

	return e.dekRecordRepo.GetByProtectedRecordIDAndOwner(ctx, protectedRecordID, ownerID)
}

// EncryptData encrypts a payload under the record's DEK, creating the DEK on
// first use.
func (e *envelopeUseCase) EncryptData(
	ctx context.Context,
	payload []byte,
	protectedRecordID string,
	ownerID string,
) ([]byte, error) {
	if len(payload) == 0 {
		return nil, cryptoDomain.ErrEmptyPlaintext
	}
	if err := validateIdentifier("protected record id", protectedRecordID); err != nil {
		return nil, err
	}
	if err := validateIdentifier("owner id", ownerID); err != nil {
		return nil, err
	}

	record, rawDek, err := e.ensureDek(ctx, ownerID, protectedRecordID)
	if err != nil {
		return nil, err
	}

	// A freshly created DEK is used directly; an existing one needs an
	// unwrap round-trip under the calling owner's key.
	if rawDek == nil {
		rawDek, err = e.unwrapDek(ctx, record, ownerID)
		if err != nil {
			return nil, err
		}
	}
	defer cryptoDomain.Zero(rawDek)

	cipher, err := cryptoService.NewAESGCM(rawDek)
	if err != nil {
		return nil, err
	}

	return cipher.Encrypt(payload)
}

// DecryptData recovers the payload from a sealed blob produced by EncryptData.
func (e *envelopeUseCase) DecryptData(
	ctx context.Context,
	ciphertext []byte,
	protectedRecordID string,
	ownerID string,
) ([]byte, error) {
	// Reject blobs that cannot hold a nonce, a tag, and at least one byte of
	// ciphertext before touching any key material.
	if len(ciphertext) < cryptoDomain.MinSealedSize {
		return nil, cryptoDomain.ErrCiphertextTooShort
	}
	if err := validateIdentifier("protected record id", protectedRecordID); err != nil {
		return nil, err
	}
	if err := validateIdentifier("owner id", ownerID); err != nil {
		return nil, err
	}

	record, err := e.dekRecordRepo.GetByProtectedRecordID(ctx, protectedRecordID)
	if err != nil {
		return nil, err
	}
	if record.Destroyed() {
		return nil, envelopeDomain.ErrDekDestroyed
	}

	rawDek, err := e.unwrapDek(ctx, record, ownerID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(rawDek)

	cipher, err := cryptoService.NewAESGCM(rawDek)
	if err != nil {
		return nil, err
	}

	return cipher.Decrypt(ciphertext)
}

// EncryptFile encrypts sourcePath into destPath as a single sealed blob.
func (e *envelopeUseCase) EncryptFile(
	ctx context.Context,
	sourcePath string,
	destPath string,
	protectedRecordID string,
	ownerID string,
) error {
	payload, err := os.ReadFile(sourcePath)
	if err != nil {
		return apperrors.Wrap(err, "failed to read source file")
	}

	sealed, err := e.EncryptData(ctx, payload, protectedRecordID, ownerID)
	if err != nil {
		return err
	}

	return writeFileAtomic(destPath, sealed)
}

// DecryptFile decrypts sourcePath into destPath.
func (e *envelopeUseCase) DecryptFile(
	ctx context.Context,
	sourcePath string,
	destPath string,
	protectedRecordID string,
	ownerID string,
) error {
	sealed, err := os.ReadFile(sourcePath)
	if err != nil {
		return apperrors.Wrap(err, "failed to read source file")
	}

	payload, err := e.DecryptData(ctx, sealed, protectedRecordID, ownerID)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(payload)

	return writeFileAtomic(destPath, payload)
}

// DestroyDek irreversibly destroys the record's DEK by overwriting the
// wrapped key with equal-length random bytes and marking the record deleted.
func (e *envelopeUseCase) DestroyDek(
	ctx context.Context,
	protectedRecordID string,
	ownerID string,
) (bool, error) {
	if err := validateIdentifier("protected record id", protectedRecordID); err != nil {
		return false, err
	}
	if err := validateIdentifier("owner id", ownerID); err != nil {
		return false, err
	}

	err := e.txManager.WithTx(ctx, func(txCtx context.Context) error {
		record, err := e.dekRecordRepo.GetByProtectedRecordIDAndOwner(txCtx, protectedRecordID, ownerID)
		if err != nil {
			return err
		}
		if record.Destroyed() {
			return nil
		}

		junk, err := newJunkDek(len(record.WrappedDek))
		if err != nil {
			return err
		}

		// Losing the update race to a concurrent destroyer still means the
		// record is destroyed, so the transition result is not checked.
		_, err = e.dekRecordRepo.Destroy(txCtx, record.ID, junk, time.Now().UTC())
		return err
	})
	if err != nil {
		if errors.Is(err, envelopeDomain.ErrDekRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// DestroyOwnerDeks destroys every active DEK belonging to an owner, paging
// through the repository in batches. Destruction fans out across a bounded
// worker group; ratePerSec caps destroy statements per second when positive.
// The count reports DEKs this call transitioned, so concurrent destroyers
// are not double-counted.
func (e *envelopeUseCase) DestroyOwnerDeks(
	ctx context.Context,
	ownerID string,
	batchSize int,
	ratePerSec float64,
) (int, error) {
	if err := validateIdentifier("owner id", ownerID); err != nil {
		return 0, err
	}
	if batchSize <= 0 {
		batchSize = DefaultDestroyBatchSize
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}

	var destroyed atomic.Int64
	for {
		records, err := e.dekRecordRepo.ListActiveByOwner(ctx, ownerID, batchSize)
		if err != nil {
			return int(destroyed.Load()), err
		}
		if len(records) == 0 {
			return int(destroyed.Load()), nil
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(destroyConcurrency)
		for _, record := range records {
			g.Go(func() error {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}

				junk, err := newJunkDek(len(record.WrappedDek))
				if err != nil {
					return err
				}

				transitioned, err := e.dekRecordRepo.Destroy(gctx, record.ID, junk, time.Now().UTC())
				if err != nil {
					return err
				}
				if transitioned {
					destroyed.Add(1)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return int(destroyed.Load()), err
		}

		// A short page means the live set is exhausted.
		if len(records) < batchSize {
			return int(destroyed.Load()), nil
		}
	}
}

// DekMetadata reports the non-secret projection of a record's DEK.
func (e *envelopeUseCase) DekMetadata(
	ctx context.Context,
	protectedRecordID string,
) (*envelopeDomain.DekMetadata, error) {
	if err := validateIdentifier("protected record id", protectedRecordID); err != nil {
		return nil, err
	}

	record, err := e.dekRecordRepo.GetByProtectedRecordID(ctx, protectedRecordID)
	if err != nil {
		return nil, err
	}

	metadata := record.Metadata()
	return &metadata, nil
}

// IsActive reports whether a protected record holds a usable DEK.
func (e *envelopeUseCase) IsActive(ctx context.Context, protectedRecordID string) (bool, error) {
	if err := validateIdentifier("protected record id", protectedRecordID); err != nil {
		return false, err
	}

	record, err := e.dekRecordRepo.GetByProtectedRecordID(ctx, protectedRecordID)
	if err != nil {
		if errors.Is(err, envelopeDomain.ErrDekRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return !record.Destroyed(), nil
}

// ensureDek returns the DEK record for a protected record, creating it on
// first use. When this call created the record the plaintext DEK is returned
// alongside it so the caller can skip an unwrap round-trip; the caller owns
// zeroing it.
func (e *envelopeUseCase) ensureDek(
	ctx context.Context,
	ownerID string,
	protectedRecordID string,
) (*envelopeDomain.DekRecord, []byte, error) {
	record, err := e.dekRecordRepo.GetByProtectedRecordID(ctx, protectedRecordID)
	if err == nil {
		if record.Destroyed() {
			return nil, nil, envelopeDomain.ErrDekDestroyed
		}
		return record, nil, nil
	}
	if !errors.Is(err, envelopeDomain.ErrDekRecordNotFound) {
		return nil, nil, err
	}

	record, rawDek, err := e.createDekRecord(ctx, ownerID, protectedRecordID)
	if err != nil {
		if errors.Is(err, envelopeDomain.ErrDekRecordExists) {
			// Lost the create race to a concurrent caller; adopt the winner.
			winner, err := e.dekRecordRepo.GetByProtectedRecordID(ctx, protectedRecordID)
			if err != nil {
				return nil, nil, err
			}
			if winner.Destroyed() {
				return nil, nil, envelopeDomain.ErrDekDestroyed
			}
			return winner, nil, nil
		}
		return nil, nil, err
	}

	return record, rawDek, nil
}

// createDekRecord generates a fresh DEK, wraps it under the active provider,
// and inserts the record. A uniqueness violation surfaces as
// ErrDekRecordExists. On success the plaintext DEK is returned for immediate
// use; the caller owns zeroing it.
func (e *envelopeUseCase) createDekRecord(
	ctx context.Context,
	ownerID string,
	protectedRecordID string,
) (*envelopeDomain.DekRecord, []byte, error) {
	provider := e.providers.Active()

	rawDek := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(rawDek); err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to generate dek")
	}

	wrappedDek, err := provider.WrapDek(ctx, rawDek, ownerID)
	if err != nil {
		cryptoDomain.Zero(rawDek)
		return nil, nil, err
	}

	record := &envelopeDomain.DekRecord{
		ID:                uuid.Must(uuid.NewV7()),
		OwnerID:           ownerID,
		ProtectedRecordID: protectedRecordID,
		WrappedDek:        wrappedDek,
		ProviderVersion:   provider.ProviderVersion(),
		KeyVersion:        1,
		CreatedAt:         time.Now().UTC(),
	}

	if err := e.dekRecordRepo.Create(ctx, record); err != nil {
		cryptoDomain.Zero(rawDek)
		return nil, nil, err
	}

	return record, rawDek, nil
}

// unwrapDek recovers the plaintext DEK under the calling owner's key, using
// the provider version recorded when the DEK was wrapped. The caller owns
// zeroing the returned slice.
func (e *envelopeUseCase) unwrapDek(
	ctx context.Context,
	record *envelopeDomain.DekRecord,
	ownerID string,
) ([]byte, error) {
	provider, err := e.providers.Get(record.ProviderVersion)
	if err != nil {
		return nil, err
	}

	return provider.UnwrapDek(ctx, record.WrappedDek, ownerID)
}

// newJunkDek returns random bytes sized to the wrapped DEK they replace, so
// a destroyed record keeps the same column length as an intact one.
func newJunkDek(size int) ([]byte, error) {
	junk := make([]byte, size)
	if _, err := rand.Read(junk); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate junk bytes")
	}
	return junk, nil
}

// writeFileAtomic writes data to destPath through a temporary sibling file
// and a rename, so the destination never holds a partial write. The
// temporary file is removed on any failure.
func writeFileAtomic(destPath string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), filepath.Base(destPath)+".tmp-*")
	if err != nil {
		return apperrors.Wrap(err, "failed to create temp file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return apperrors.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return apperrors.Wrap(err, "failed to sync temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return apperrors.Wrap(err, "failed to close temp file")
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return apperrors.Wrap(err, "failed to replace destination file")
	}

	return nil
}

// validateIdentifier applies the shared identifier rules to owner and
// protected record IDs. Identifiers participate in key derivation and
// database lookups, so blank values, surrounding whitespace, and control
// characters are rejected up front.
func validateIdentifier(name string, value string) error {
	err := validation.Validate(value,
		validation.Required.Error(name+" is required"),
		appValidation.NotBlank,
		appValidation.NoWhitespace,
		appValidation.NoControlChars,
		validation.Length(1, 255).Error(name+" must be between 1 and 255 characters"),
	)
	return appValidation.WrapValidationError(err)
}

// NewEnvelopeUseCase creates a new envelope use case instance with the
// provided dependencies.
func NewEnvelopeUseCase(
	txManager database.TxManager,
	dekRecordRepo DekRecordRepository,
	providers *cryptoService.ProviderRegistry,
) EnvelopeUseCase {
	return &envelopeUseCase{
		txManager:     txManager,
		dekRecordRepo: dekRecordRepo,
		providers:     providers,
	}
}
