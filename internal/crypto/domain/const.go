package domain

// Sizes and parameters for the envelope encryption scheme.
//
// All payloads and wrapped keys use AES-256-GCM with a random 96-bit nonce
// prepended to the ciphertext, so a sealed value is laid out as:
//
//	nonce (12 bytes) || ciphertext || authentication tag (16 bytes)
//
// The same layout is used for wrapped data encryption keys and for encrypted
// payloads, which keeps the storage format self-contained: everything needed
// to decrypt (besides the key) travels inside the sealed value.
const (
	// KeySize is the size in bytes of data encryption keys and derived
	// key encryption keys (256 bits).
	KeySize = 32

	// NonceSize is the size in bytes of the AES-GCM nonce (96 bits).
	NonceSize = 12

	// TagSize is the size in bytes of the AES-GCM authentication tag (128 bits).
	TagSize = 16

	// MinSealedSize is the smallest valid sealed value: a nonce, an
	// authentication tag, and at least one byte of ciphertext. Shorter
	// inputs are rejected before any cryptographic work.
	MinSealedSize = NonceSize + TagSize + 1

	// KekIterations is the PBKDF2 iteration count used when deriving
	// per-owner key encryption keys from the master secret. Changing it
	// changes every derived key, so existing wrapped DEKs would no longer
	// unwrap; treat it as part of the provider version.
	KekIterations = 100_000

	// MinMasterSecretLen is the minimum length in characters of the master
	// secret accepted at provider construction.
	MinMasterSecretLen = 16
)
