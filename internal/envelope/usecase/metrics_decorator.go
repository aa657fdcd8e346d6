package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	envelopeDomain "github.com/allisson/envelope/internal/envelope/domain"
	"github.com/allisson/envelope/internal/metrics"
)

// envelopeUseCaseWithMetrics decorates EnvelopeUseCase with metrics instrumentation.
type envelopeUseCaseWithMetrics struct {
	next    EnvelopeUseCase
	metrics metrics.BusinessMetrics
}

// NewEnvelopeUseCaseWithMetrics wraps an EnvelopeUseCase with metrics recording.
func NewEnvelopeUseCaseWithMetrics(useCase EnvelopeUseCase, m metrics.BusinessMetrics) EnvelopeUseCase {
	return &envelopeUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record reports one operation outcome and its duration.
func (e *envelopeUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "envelope", operation, status)
	e.metrics.RecordDuration(ctx, "envelope", operation, time.Since(start), status)
}

// CreateDek records metrics for DEK provisioning operations.
func (e *envelopeUseCaseWithMetrics) CreateDek(
	ctx context.Context,
	ownerID string,
	protectedRecordID string,
) (uuid.UUID, error) {
	start := time.Now()
	id, err := e.next.CreateDek(ctx, ownerID, protectedRecordID)
	e.record(ctx, "dek_create", start, err)
	return id, err
}

// GetDekRecord records metrics for DEK record retrieval operations.
func (e *envelopeUseCaseWithMetrics) GetDekRecord(
	ctx context.Context,
	protectedRecordID string,
	ownerID string,
) (*envelopeDomain.DekRecord, error) {
	start := time.Now()
	record, err := e.next.GetDekRecord(ctx, protectedRecordID, ownerID)
	e.record(ctx, "dek_get", start, err)
	return record, err
}

// EncryptData records metrics for payload encryption operations.
func (e *envelopeUseCaseWithMetrics) EncryptData(
	ctx context.Context,
	payload []byte,
	protectedRecordID string,
	ownerID string,
) ([]byte, error) {
	start := time.Now()
	sealed, err := e.next.EncryptData(ctx, payload, protectedRecordID, ownerID)
	e.record(ctx, "data_encrypt", start, err)
	return sealed, err
}

// DecryptData records metrics for payload decryption operations.
func (e *envelopeUseCaseWithMetrics) DecryptData(
	ctx context.Context,
	ciphertext []byte,
	protectedRecordID string,
	ownerID string,
) ([]byte, error) {
	start := time.Now()
	payload, err := e.next.DecryptData(ctx, ciphertext, protectedRecordID, ownerID)
	e.record(ctx, "data_decrypt", start, err)
	return payload, err
}

// EncryptFile records metrics for file encryption operations.
func (e *envelopeUseCaseWithMetrics) EncryptFile(
	ctx context.Context,
	sourcePath string,
	destPath string,
	protectedRecordID string,
	ownerID string,
) error {
	start := time.Now()
	err := e.next.EncryptFile(ctx, sourcePath, destPath, protectedRecordID, ownerID)
	e.record(ctx, "file_encrypt", start, err)
	return err
}

// DecryptFile records metrics for file decryption operations.
func (e *envelopeUseCaseWithMetrics) DecryptFile(
	ctx context.Context,
	sourcePath string,
	destPath string,
	protectedRecordID string,
	ownerID string,
) error {
	start := time.Now()
	err := e.next.DecryptFile(ctx, sourcePath, destPath, protectedRecordID, ownerID)
	e.record(ctx, "file_decrypt", start, err)
	return err
}

// DestroyDek records metrics for single-record destruction operations.
func (e *envelopeUseCaseWithMetrics) DestroyDek(
	ctx context.Context,
	protectedRecordID string,
	ownerID string,
) (bool, error) {
	start := time.Now()
	existed, err := e.next.DestroyDek(ctx, protectedRecordID, ownerID)
	e.record(ctx, "dek_destroy", start, err)
	return existed, err
}

// DestroyOwnerDeks records metrics for owner-wide destruction operations.
func (e *envelopeUseCaseWithMetrics) DestroyOwnerDeks(
	ctx context.Context,
	ownerID string,
	batchSize int,
	ratePerSec float64,
) (int, error) {
	start := time.Now()
	destroyed, err := e.next.DestroyOwnerDeks(ctx, ownerID, batchSize, ratePerSec)
	e.record(ctx, "owner_deks_destroy", start, err)
	return destroyed, err
}

// DekMetadata records metrics for metadata lookups.
func (e *envelopeUseCaseWithMetrics) DekMetadata(
	ctx context.Context,
	protectedRecordID string,
) (*envelopeDomain.DekMetadata, error) {
	start := time.Now()
	metadata, err := e.next.DekMetadata(ctx, protectedRecordID)
	e.record(ctx, "dek_metadata", start, err)
	return metadata, err
}

// IsActive records metrics for activity checks.
func (e *envelopeUseCaseWithMetrics) IsActive(ctx context.Context, protectedRecordID string) (bool, error) {
	start := time.Now()
	active, err := e.next.IsActive(ctx, protectedRecordID)
	e.record(ctx, "dek_is_active", start, err)
	return active, err
}
