package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	envelopeUsecase "github.com/allisson/envelope/internal/envelope/usecase"
)

// RunDecryptFile decrypts a file encrypted under a protected record's data
// encryption key. The caller's owner must match the owner the key was wrapped
// for, and the record's DEK must not have been destroyed.
func RunDecryptFile(
	ctx context.Context,
	envelopeUseCase envelopeUsecase.EnvelopeUseCase,
	logger *slog.Logger,
	out io.Writer,
	sourcePath string,
	destPath string,
	protectedRecordID string,
	ownerID string,
) error {
	logger.Info("decrypting file",
		slog.String("source", sourcePath),
		slog.String("dest", destPath),
		slog.String("protected_record_id", protectedRecordID),
	)

	if err := envelopeUseCase.DecryptFile(ctx, sourcePath, destPath, protectedRecordID, ownerID); err != nil {
		return fmt.Errorf("failed to decrypt file: %w", err)
	}

	fmt.Fprintf(out, "Decrypted %s to %s\n", sourcePath, destPath)

	logger.Info("file decrypted",
		slog.String("dest", destPath),
		slog.String("protected_record_id", protectedRecordID),
	)

	return nil
}
