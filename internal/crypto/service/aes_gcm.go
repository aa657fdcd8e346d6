package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/envelope/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM
// (Advanced Encryption Standard with Galois/Counter Mode).
//
// AES-GCM provides authenticated encryption, combining the confidentiality of
// AES with the authenticity of GMAC. This implementation uses AES-256 with a
// 256-bit key and produces self-contained sealed values:
//
//	nonce (12 bytes) || ciphertext || authentication tag (16 bytes)
//
// Security properties:
//   - 256-bit key size (maximum security level)
//   - 12-byte nonce (96 bits, randomly generated per encryption)
//   - 16-byte authentication tag (128 bits, appended to ciphertext)
//   - Authenticated encryption prevents tampering and forgery
//
// Thread safety:
//
//	The cipher instance is stateless and safe for concurrent use from multiple
//	goroutines. Each encryption operation generates a unique nonce independently.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance.
//
// The key must be exactly 32 bytes (256 bits) for AES-256. Keys should be
// generated using crypto/rand or derived with a key derivation function.
//
// Parameters:
//   - key: A 32-byte (256-bit) encryption key
//
// Returns:
//   - A new AESGCMCipher instance ready for encryption/decryption
//   - ErrInvalidKeySize if the key is not exactly 32 bytes
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt seals plaintext using AES-256-GCM and returns nonce || ciphertext || tag.
//
// A unique 12-byte nonce is randomly generated for each call using crypto/rand
// and prepended to the ciphertext, so the sealed value carries everything
// needed for decryption besides the key. With GCM it is critical that nonces
// are never reused with the same key; random generation per call guarantees
// that within birthday bounds.
//
// Empty plaintexts are rejected: a sealed empty payload would be shorter than
// the minimum accepted on decryption and indistinguishable from a truncated
// value.
//
// Parameters:
//   - plaintext: The data to encrypt (must not be empty)
//
// Returns:
//   - The sealed value, 28 bytes longer than the plaintext
//   - ErrEmptyPlaintext if plaintext is empty
//   - An error if nonce generation fails
func (a *AESGCMCipher) Encrypt(plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, cryptoDomain.ErrEmptyPlaintext
	}

	sealed := make([]byte, cryptoDomain.NonceSize, cryptoDomain.NonceSize+len(plaintext)+cryptoDomain.TagSize)
	if _, err := rand.Read(sealed); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return a.aead.Seal(sealed, sealed[:cryptoDomain.NonceSize], plaintext, nil), nil
}

// Decrypt opens a sealed value produced by Encrypt and returns the plaintext.
//
// Inputs shorter than the minimum sealed size (nonce, tag, and one byte of
// ciphertext) are rejected before any cryptographic work. The authentication
// tag is verified before any plaintext is returned, so tampered or corrupted
// values never yield partial output.
//
// Parameters:
//   - sealed: The value produced by Encrypt (nonce || ciphertext || tag)
//
// Returns:
//   - The decrypted plaintext
//   - ErrCiphertextTooShort if the input is below the minimum sealed size
//   - ErrDecryptionFailed if authentication fails; the specific cause (wrong
//     key, tampering, corruption) is deliberately not disclosed
func (a *AESGCMCipher) Decrypt(sealed []byte) ([]byte, error) {
	if len(sealed) < cryptoDomain.MinSealedSize {
		return nil, cryptoDomain.ErrCiphertextTooShort
	}

	nonce, ciphertext := sealed[:cryptoDomain.NonceSize], sealed[cryptoDomain.NonceSize:]
	plaintext, err := a.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return plaintext, nil
}
