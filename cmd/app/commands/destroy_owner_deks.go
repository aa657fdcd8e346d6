package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	envelopeUsecase "github.com/allisson/envelope/internal/envelope/usecase"
)

// RunDestroyOwnerDeks destroys every active data encryption key that belongs
// to an owner, in batches, optionally rate limited. This is the bulk erasure
// path for offboarding a tenant: after it completes, none of the owner's
// encrypted data can be decrypted again.
func RunDestroyOwnerDeks(
	ctx context.Context,
	envelopeUseCase envelopeUsecase.EnvelopeUseCase,
	logger *slog.Logger,
	out io.Writer,
	ownerID string,
	batchSize int,
	ratePerSec float64,
) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if ratePerSec < 0 {
		return fmt.Errorf("rps must not be negative")
	}

	logger.Info("destroying owner deks",
		slog.String("owner_id", ownerID),
		slog.Int("batch_size", batchSize),
		slog.Float64("rate_per_sec", ratePerSec),
	)

	destroyed, err := envelopeUseCase.DestroyOwnerDeks(ctx, ownerID, batchSize, ratePerSec)
	if err != nil {
		return fmt.Errorf("failed to destroy owner deks: %w", err)
	}

	fmt.Fprintf(out, "Destroyed %d DEK(s) for owner %q\n", destroyed, ownerID)

	logger.Info("owner dek destruction completed",
		slog.String("owner_id", ownerID),
		slog.Int("destroyed", destroyed),
	)

	return nil
}
