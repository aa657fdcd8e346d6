// Package service provides cryptographic services for envelope encryption.
// Implements the AES-256-GCM payload cipher and the key providers that wrap
// and unwrap data encryption keys under per-owner key encryption keys.
package service

import (
	"context"
)

// AEAD defines the interface for authenticated encryption of payload data.
//
// Implementations produce self-contained sealed values laid out as
// nonce || ciphertext || tag, so no cipher state has to be stored next to
// the encrypted data.
type AEAD interface {
	// Encrypt seals plaintext and returns nonce || ciphertext || tag.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt opens a sealed value produced by Encrypt and returns the plaintext.
	Decrypt(sealed []byte) ([]byte, error)
}

// KeyProvider defines the interface for protecting data encryption keys.
//
// A provider owns the key hierarchy above the DEK: the local provider derives
// per-owner key encryption keys from a master secret, while an external
// provider would delegate to a key management service. Callers never see the
// key encryption key, only the wrapped DEK.
type KeyProvider interface {
	// WrapDek encrypts a plaintext data encryption key under the key
	// hierarchy scoped to ownerID and returns the wrapped form.
	WrapDek(ctx context.Context, dek []byte, ownerID string) ([]byte, error)

	// UnwrapDek recovers the plaintext data encryption key from its wrapped
	// form. The ownerID must match the one used to wrap; a mismatch fails
	// authentication and is indistinguishable from tampering.
	UnwrapDek(ctx context.Context, wrappedDek []byte, ownerID string) ([]byte, error)

	// ProviderVersion returns the stable identifier recorded alongside each
	// wrapped key so the right provider can be selected for unwrapping.
	ProviderVersion() string
}
