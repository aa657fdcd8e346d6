package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	cryptoService "github.com/allisson/envelope/internal/crypto/service"
)

// RunGenerateMasterSecret generates a cryptographically secure 32-byte master
// secret for envelope encryption together with its Argon2id fingerprint.
// The raw secret bytes are zeroed from memory after encoding.
//
// Output format:
//   - MASTER_SECRET='<url-safe-base64-secret>'
//   - MASTER_SECRET_HASH='<argon2id-fingerprint>'
//
// The fingerprint is safe to store next to the application configuration: it
// lets startup detect a mis-pasted secret without revealing the secret itself.
func RunGenerateMasterSecret(logger *slog.Logger, out io.Writer) error {
	logger.Info("generating master secret")

	plainSecret, fingerprint, err := cryptoService.GenerateMasterSecret()
	if err != nil {
		return fmt.Errorf("failed to generate master secret: %w", err)
	}

	fmt.Fprintln(out, "# Master Secret Configuration")
	fmt.Fprintln(out, "# Copy these environment variables to your .env file or secrets manager")
	fmt.Fprintln(out)

	// Single quotes keep the $ separators of the argon2id fingerprint from
	// being expanded by shells and dotenv loaders.
	fmt.Fprintf(out, "MASTER_SECRET='%s'\n", plainSecret)
	fmt.Fprintf(out, "MASTER_SECRET_HASH='%s'\n", fingerprint)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "# Store the secret in a secrets manager, never in version control.")
	fmt.Fprintln(out, "# Losing the master secret makes every encrypted payload unrecoverable.")

	logger.Info("master secret generated")
	return nil
}

// RunFingerprintMasterSecret reads a master secret from in and prints its
// Argon2id fingerprint, so MASTER_SECRET_HASH can be set for a secret that
// already exists. The secret arrives on stdin rather than a flag because flag
// values end up in shell history and process listings.
func RunFingerprintMasterSecret(logger *slog.Logger, in io.Reader, out io.Writer) error {
	logger.Info("fingerprinting master secret")

	secret, err := readSecretLine(in)
	if err != nil {
		return err
	}

	fingerprint, err := cryptoService.FingerprintMasterSecret(secret)
	if err != nil {
		return fmt.Errorf("failed to fingerprint master secret: %w", err)
	}

	fmt.Fprintf(out, "MASTER_SECRET_HASH='%s'\n", fingerprint)

	logger.Info("master secret fingerprinted")
	return nil
}

// readSecretLine reads the first line from in, with surrounding whitespace
// trimmed so trailing newlines from `echo` and heredocs do not end up inside
// the secret.
func readSecretLine(in io.Reader) (string, error) {
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read master secret: %w", err)
		}
		return "", errors.New("no master secret provided on stdin")
	}

	secret := strings.TrimSpace(scanner.Text())
	if secret == "" {
		return "", errors.New("no master secret provided on stdin")
	}

	return secret, nil
}
