package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	envelopeUsecase "github.com/allisson/envelope/internal/envelope/usecase"
)

// RunCreateDek provisions the data encryption key for a protected record ahead
// of its first encryption. Creation is idempotent: when the record already
// holds an active DEK, the existing key ID is printed.
func RunCreateDek(
	ctx context.Context,
	envelopeUseCase envelopeUsecase.EnvelopeUseCase,
	logger *slog.Logger,
	out io.Writer,
	ownerID string,
	protectedRecordID string,
) error {
	logger.Info("creating dek",
		slog.String("owner_id", ownerID),
		slog.String("protected_record_id", protectedRecordID),
	)

	dekID, err := envelopeUseCase.CreateDek(ctx, ownerID, protectedRecordID)
	if err != nil {
		return fmt.Errorf("failed to create dek: %w", err)
	}

	fmt.Fprintf(out, "DEK ready for record %q (id: %s)\n", protectedRecordID, dekID)

	logger.Info("dek ready",
		slog.String("dek_id", dekID.String()),
		slog.String("protected_record_id", protectedRecordID),
	)

	return nil
}
