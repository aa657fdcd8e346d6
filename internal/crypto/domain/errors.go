package domain

import (
	"github.com/allisson/envelope/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures. Callers match them with
// errors.Is and decide how much detail to expose.
var (
	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	//
	// Data encryption keys and derived key encryption keys must be exactly
	// 32 bytes (256 bits) for AES-256-GCM. This error is returned when a key
	// of incorrect length is provided to a cipher constructor.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrEmptyPlaintext indicates an encryption operation received no data.
	//
	// Sealing an empty payload would produce a value indistinguishable from
	// a truncated one, so empty plaintexts are rejected up front.
	ErrEmptyPlaintext = errors.Wrap(errors.ErrInvalidInput, "plaintext must not be empty")

	// ErrCiphertextTooShort indicates a sealed value is smaller than the
	// minimum of nonce, authentication tag, and one byte of ciphertext.
	//
	// The check runs before any cryptographic work so malformed inputs fail
	// fast and cannot reach the cipher.
	ErrCiphertextTooShort = errors.Wrap(errors.ErrInvalidInput, "ciphertext too short")

	// ErrEmptyDek indicates a wrap operation received an empty data encryption key.
	ErrEmptyDek = errors.Wrap(errors.ErrInvalidInput, "data encryption key must not be empty")

	// ErrEmptyWrappedDek indicates an unwrap operation received an empty wrapped key.
	ErrEmptyWrappedDek = errors.Wrap(errors.ErrInvalidInput, "wrapped data encryption key must not be empty")

	// ErrWrappedDekTooShort indicates a wrapped key is smaller than the
	// minimum sealed size and is rejected before any cryptographic work.
	ErrWrappedDekTooShort = errors.Wrap(errors.ErrInvalidInput, "wrapped data encryption key too short")

	// ErrMasterSecretTooShort indicates the configured master secret does not
	// meet the minimum length and the provider refuses to start with it.
	ErrMasterSecretTooShort = errors.Wrap(errors.ErrInvalidInput, "master secret too short")

	// ErrMasterSecretMismatch indicates the configured master secret does not
	// match its configured fingerprint. Refusing to start beats silently
	// producing data that the real secret cannot decrypt.
	ErrMasterSecretMismatch = errors.Wrap(errors.ErrInvalidInput, "master secret does not match fingerprint")

	// ErrDecryptionFailed indicates a payload decryption operation failed.
	//
	// This error can occur due to:
	//   - Wrong decryption key used
	//   - Ciphertext has been tampered with (authentication failure)
	//   - Corrupted encrypted data
	//
	// For security reasons, the specific cause is not disclosed to prevent
	// information leakage that could aid attackers.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrWrapFailed indicates a data encryption key could not be wrapped.
	//
	// Wrapping only fails on internal crypto errors (cipher initialization,
	// nonce generation), never on attacker-controlled input.
	ErrWrapFailed = errors.New("failed to wrap data encryption key")

	// ErrUnwrapFailed indicates a wrapped data encryption key could not be
	// recovered.
	//
	// Authentication failures from a wrong owner, a tampered wrapped key, or
	// a mismatched provider all surface as this single error so callers
	// cannot distinguish the cases. Diagnostics belong in logs, not in the
	// returned error.
	ErrUnwrapFailed = errors.New("failed to unwrap data encryption key")

	// ErrProviderNotFound indicates no registered key provider matches the
	// provider version recorded with a wrapped key.
	ErrProviderNotFound = errors.Wrap(errors.ErrNotFound, "key provider not found")
)
