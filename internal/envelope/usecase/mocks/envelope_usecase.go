// Package mocks provides mock implementations for testing envelope encryption consumers.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	envelopeDomain "github.com/allisson/envelope/internal/envelope/domain"
)

// MockEnvelopeUseCase is a mock implementation of EnvelopeUseCase for testing.
type MockEnvelopeUseCase struct {
	mock.Mock
}

// CreateDek mocks the CreateDek method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) CreateDek(
	ctx context.Context,
	ownerID string,
	protectedRecordID string,
) (uuid.UUID, error) {
	args := m.Called(ctx, ownerID, protectedRecordID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// GetDekRecord mocks the GetDekRecord method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) GetDekRecord(
	ctx context.Context,
	protectedRecordID string,
	ownerID string,
) (*envelopeDomain.DekRecord, error) {
	args := m.Called(ctx, protectedRecordID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*envelopeDomain.DekRecord), args.Error(1)
}

// EncryptData mocks the EncryptData method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) EncryptData(
	ctx context.Context,
	payload []byte,
	protectedRecordID string,
	ownerID string,
) ([]byte, error) {
	args := m.Called(ctx, payload, protectedRecordID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// DecryptData mocks the DecryptData method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) DecryptData(
	ctx context.Context,
	ciphertext []byte,
	protectedRecordID string,
	ownerID string,
) ([]byte, error) {
	args := m.Called(ctx, ciphertext, protectedRecordID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// EncryptFile mocks the EncryptFile method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) EncryptFile(
	ctx context.Context,
	sourcePath string,
	destPath string,
	protectedRecordID string,
	ownerID string,
) error {
	args := m.Called(ctx, sourcePath, destPath, protectedRecordID, ownerID)
	return args.Error(0)
}

// DecryptFile mocks the DecryptFile method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) DecryptFile(
	ctx context.Context,
	sourcePath string,
	destPath string,
	protectedRecordID string,
	ownerID string,
) error {
	args := m.Called(ctx, sourcePath, destPath, protectedRecordID, ownerID)
	return args.Error(0)
}

// DestroyDek mocks the DestroyDek method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) DestroyDek(
	ctx context.Context,
	protectedRecordID string,
	ownerID string,
) (bool, error) {
	args := m.Called(ctx, protectedRecordID, ownerID)
	return args.Bool(0), args.Error(1)
}

// DestroyOwnerDeks mocks the DestroyOwnerDeks method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) DestroyOwnerDeks(
	ctx context.Context,
	ownerID string,
	batchSize int,
	ratePerSec float64,
) (int, error) {
	args := m.Called(ctx, ownerID, batchSize, ratePerSec)
	return args.Int(0), args.Error(1)
}

// DekMetadata mocks the DekMetadata method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) DekMetadata(
	ctx context.Context,
	protectedRecordID string,
) (*envelopeDomain.DekMetadata, error) {
	args := m.Called(ctx, protectedRecordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*envelopeDomain.DekMetadata), args.Error(1)
}

// IsActive mocks the IsActive method of EnvelopeUseCase.
func (m *MockEnvelopeUseCase) IsActive(ctx context.Context, protectedRecordID string) (bool, error) {
	args := m.Called(ctx, protectedRecordID)
	return args.Bool(0), args.Error(1)
}
