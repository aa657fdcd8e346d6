package service

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/envelope/internal/crypto/domain"
)

func TestNewAESGCM(t *testing.T) {
	t.Run("valid 256-bit key", func(t *testing.T) {
		key := make([]byte, 32)
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewAESGCM(key)
		assert.NoError(t, err)
		assert.NotNil(t, cipher)
	})

	t.Run("invalid key size - too small", func(t *testing.T) {
		key := make([]byte, 16)
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewAESGCM(key)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
		assert.Nil(t, cipher)
	})

	t.Run("invalid key size - too large", func(t *testing.T) {
		key := make([]byte, 64)
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewAESGCM(key)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
		assert.Nil(t, cipher)
	})
}

func TestAESGCMCipher_Encrypt(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewAESGCM(key)
	require.NoError(t, err)

	t.Run("sealed value carries nonce and tag overhead", func(t *testing.T) {
		plaintext := []byte("Hello, World!")

		sealed, err := cipher.Encrypt(plaintext)
		assert.NoError(t, err)
		assert.Equal(t, len(plaintext)+cryptoDomain.NonceSize+cryptoDomain.TagSize, len(sealed))
		assert.NotContains(t, string(sealed), string(plaintext))
	})

	t.Run("empty plaintext is rejected", func(t *testing.T) {
		sealed, err := cipher.Encrypt([]byte{})
		assert.ErrorIs(t, err, cryptoDomain.ErrEmptyPlaintext)
		assert.Nil(t, sealed)
	})

	t.Run("sealed value is unique for each encryption", func(t *testing.T) {
		plaintext := []byte("test")

		sealed1, err := cipher.Encrypt(plaintext)
		require.NoError(t, err)

		sealed2, err := cipher.Encrypt(plaintext)
		require.NoError(t, err)

		assert.NotEqual(t, sealed1, sealed2)
		assert.NotEqual(t, sealed1[:cryptoDomain.NonceSize], sealed2[:cryptoDomain.NonceSize])
	})
}

func TestAESGCMCipher_Decrypt(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewAESGCM(key)
	require.NoError(t, err)

	t.Run("decrypt successfully", func(t *testing.T) {
		plaintext := []byte("Hello, World!")

		sealed, err := cipher.Encrypt(plaintext)
		require.NoError(t, err)

		decrypted, err := cipher.Decrypt(sealed)
		assert.NoError(t, err)
		assert.True(t, bytes.Equal(plaintext, decrypted))
	})

	t.Run("input below minimum sealed size is rejected before crypto", func(t *testing.T) {
		short := make([]byte, cryptoDomain.MinSealedSize-1)
		_, err := rand.Read(short)
		require.NoError(t, err)

		decrypted, err := cipher.Decrypt(short)
		assert.ErrorIs(t, err, cryptoDomain.ErrCiphertextTooShort)
		assert.Nil(t, decrypted)
	})

	t.Run("decrypt with wrong key fails", func(t *testing.T) {
		plaintext := []byte("Hello, World!")

		sealed, err := cipher.Encrypt(plaintext)
		require.NoError(t, err)

		otherKey := make([]byte, 32)
		_, err = rand.Read(otherKey)
		require.NoError(t, err)

		otherCipher, err := NewAESGCM(otherKey)
		require.NoError(t, err)

		decrypted, err := otherCipher.Decrypt(sealed)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Nil(t, decrypted)
	})

	t.Run("decrypt with tampered nonce fails", func(t *testing.T) {
		sealed, err := cipher.Encrypt([]byte("Hello, World!"))
		require.NoError(t, err)

		sealed[0] ^= 1

		decrypted, err := cipher.Decrypt(sealed)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Nil(t, decrypted)
	})

	t.Run("decrypt with tampered ciphertext fails", func(t *testing.T) {
		sealed, err := cipher.Encrypt([]byte("Hello, World!"))
		require.NoError(t, err)

		sealed[cryptoDomain.NonceSize] ^= 1

		decrypted, err := cipher.Decrypt(sealed)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Nil(t, decrypted)
	})

	t.Run("decrypt with tampered tag fails", func(t *testing.T) {
		sealed, err := cipher.Encrypt([]byte("Hello, World!"))
		require.NoError(t, err)

		sealed[len(sealed)-1] ^= 1

		decrypted, err := cipher.Decrypt(sealed)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Nil(t, decrypted)
	})
}

func TestAESGCMCipher_EncryptDecrypt_Integration(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewAESGCM(key)
	require.NoError(t, err)

	testCases := []struct {
		name      string
		plaintext []byte
	}{
		{
			name:      "single byte",
			plaintext: []byte("x"),
		},
		{
			name:      "short message",
			plaintext: []byte("test"),
		},
		{
			name:      "long message",
			plaintext: bytes.Repeat([]byte("a"), 10000),
		},
		{
			name:      "message with unicode",
			plaintext: []byte("Hello 世界! 🔐"),
		},
		{
			name:      "message with special characters",
			plaintext: []byte("!@#$%^&*()_+-=[]{}|;:',.<>?/~`"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sealed, err := cipher.Encrypt(tc.plaintext)
			require.NoError(t, err)

			decrypted, err := cipher.Decrypt(sealed)
			require.NoError(t, err)

			assert.True(t, bytes.Equal(tc.plaintext, decrypted))
		})
	}
}
