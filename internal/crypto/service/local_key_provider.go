package service

import (
	"context"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/envelope/internal/crypto/domain"
)

// LocalProviderVersion identifies wrapped keys produced by LocalKeyProvider.
// It is recorded alongside every wrapped DEK and must change whenever the
// derivation scheme changes, or existing keys would silently fail to unwrap.
const LocalProviderVersion = "local-v1"

// LocalKeyProvider implements KeyProvider using a process-local master secret.
//
// The provider derives a per-owner key encryption key from the master secret
// with PBKDF2-HMAC-SHA256, using the owner ID as salt. Derivation is
// deterministic: any process holding the same master secret derives the same
// KEK for an owner, so no key material besides the master secret has to be
// shared between processes. Data encryption keys are wrapped under the
// derived KEK with AES-256-GCM.
//
// Because the KEK is derived on demand and zeroed after each call, a memory
// dump between operations exposes only the master secret, never per-owner
// keys or plaintext DEKs.
type LocalKeyProvider struct {
	masterSecret []byte
}

// NewLocalKeyProvider creates a provider from the configured master secret.
//
// The master secret must be at least 16 characters. Construction fails with
// ErrMasterSecretTooShort otherwise; a weak secret discovered at startup is
// recoverable, one discovered after data has been encrypted is not.
func NewLocalKeyProvider(masterSecret string) (*LocalKeyProvider, error) {
	if len(masterSecret) < cryptoDomain.MinMasterSecretLen {
		return nil, cryptoDomain.ErrMasterSecretTooShort
	}

	return &LocalKeyProvider{masterSecret: []byte(masterSecret)}, nil
}

// deriveKek derives the per-owner key encryption key. The owner ID acts as
// the PBKDF2 salt, giving each owner an independent KEK.
func (p *LocalKeyProvider) deriveKek(ownerID string) []byte {
	return pbkdf2.Key(
		p.masterSecret,
		[]byte(ownerID),
		cryptoDomain.KekIterations,
		cryptoDomain.KeySize,
		sha256.New,
	)
}

// WrapDek encrypts a plaintext data encryption key under the owner's derived
// key encryption key and returns nonce || ciphertext || tag.
func (p *LocalKeyProvider) WrapDek(ctx context.Context, dek []byte, ownerID string) ([]byte, error) {
	if len(dek) == 0 {
		return nil, cryptoDomain.ErrEmptyDek
	}

	kek := p.deriveKek(ownerID)
	defer cryptoDomain.Zero(kek)

	aead, err := NewAESGCM(kek)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrWrapFailed, err)
	}

	wrapped, err := aead.Encrypt(dek)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrWrapFailed, err)
	}

	return wrapped, nil
}

// UnwrapDek recovers the plaintext data encryption key from its wrapped form.
//
// Inputs shorter than the minimum sealed size are rejected before any key
// derivation. Authentication failures, whether from a wrong owner, a tampered
// wrapped key, or a corrupted value, all surface as ErrUnwrapFailed with no
// further detail.
func (p *LocalKeyProvider) UnwrapDek(ctx context.Context, wrappedDek []byte, ownerID string) ([]byte, error) {
	if len(wrappedDek) == 0 {
		return nil, cryptoDomain.ErrEmptyWrappedDek
	}
	if len(wrappedDek) < cryptoDomain.MinSealedSize {
		return nil, cryptoDomain.ErrWrappedDekTooShort
	}

	kek := p.deriveKek(ownerID)
	defer cryptoDomain.Zero(kek)

	aead, err := NewAESGCM(kek)
	if err != nil {
		return nil, cryptoDomain.ErrUnwrapFailed
	}

	dek, err := aead.Decrypt(wrappedDek)
	if err != nil {
		return nil, cryptoDomain.ErrUnwrapFailed
	}

	return dek, nil
}

// ProviderVersion returns the stable identifier recorded with each wrapped key.
func (p *LocalKeyProvider) ProviderVersion() string {
	return LocalProviderVersion
}

// Close zeroes the master secret. The provider must not be used afterwards.
func (p *LocalKeyProvider) Close() {
	cryptoDomain.Zero(p.masterSecret)
	p.masterSecret = nil
}
