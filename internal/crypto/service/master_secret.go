package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	cryptoDomain "github.com/allisson/envelope/internal/crypto/domain"
	apperrors "github.com/allisson/envelope/internal/errors"
)

// GenerateMasterSecret creates a new cryptographically secure 32-byte master
// secret together with its Argon2id fingerprint.
//
// The secret is base64-encoded for storage in MASTER_SECRET. The fingerprint
// is safe to store in MASTER_SECRET_HASH: it lets the application detect a
// mis-pasted secret at startup without the hash revealing the secret itself.
func GenerateMasterSecret() (plainSecret string, fingerprint string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random master secret")
	}

	plainSecret = base64.URLEncoding.EncodeToString(randomBytes)
	cryptoDomain.Zero(randomBytes)

	fingerprint, err = FingerprintMasterSecret(plainSecret)
	if err != nil {
		return "", "", err
	}

	return plainSecret, fingerprint, nil
}

// FingerprintMasterSecret computes the Argon2id fingerprint of an existing
// master secret, so MASTER_SECRET_HASH can be adopted for a secret that was
// generated elsewhere.
func FingerprintMasterSecret(masterSecret string) (string, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to create password hasher")
	}

	fingerprint, err := hasher.Hash([]byte(masterSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to fingerprint master secret")
	}

	return fingerprint, nil
}

// VerifyMasterSecretFingerprint checks the configured master secret against
// its Argon2id fingerprint. Returns ErrMasterSecretMismatch when they do not
// match, so startup can fail before any data is encrypted under the wrong
// secret.
func VerifyMasterSecretFingerprint(masterSecret, fingerprint string) error {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		return apperrors.Wrap(err, "failed to create password hasher")
	}

	ok, err := hasher.Verify([]byte(masterSecret), fingerprint)
	if err != nil || !ok {
		return cryptoDomain.ErrMasterSecretMismatch
	}

	return nil
}
