package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	envelopeUsecase "github.com/allisson/envelope/internal/envelope/usecase"
)

// RunEncryptFile encrypts a file under a protected record's data encryption
// key, creating the key on first use. The destination is written atomically,
// so a failure never leaves a partial file behind.
func RunEncryptFile(
	ctx context.Context,
	envelopeUseCase envelopeUsecase.EnvelopeUseCase,
	logger *slog.Logger,
	out io.Writer,
	sourcePath string,
	destPath string,
	protectedRecordID string,
	ownerID string,
) error {
	logger.Info("encrypting file",
		slog.String("source", sourcePath),
		slog.String("dest", destPath),
		slog.String("protected_record_id", protectedRecordID),
	)

	if err := envelopeUseCase.EncryptFile(ctx, sourcePath, destPath, protectedRecordID, ownerID); err != nil {
		return fmt.Errorf("failed to encrypt file: %w", err)
	}

	fmt.Fprintf(out, "Encrypted %s to %s\n", sourcePath, destPath)

	logger.Info("file encrypted",
		slog.String("dest", destPath),
		slog.String("protected_record_id", protectedRecordID),
	)

	return nil
}
