package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	envelopeUsecase "github.com/allisson/envelope/internal/envelope/usecase"
)

// RunDestroyDek irreversibly destroys the data encryption key of a protected
// record, making its encrypted data permanently unreadable. Destroying is
// idempotent: an already-destroyed DEK reports success, a record that never
// had a DEK reports that nothing was there to destroy.
func RunDestroyDek(
	ctx context.Context,
	envelopeUseCase envelopeUsecase.EnvelopeUseCase,
	logger *slog.Logger,
	out io.Writer,
	ownerID string,
	protectedRecordID string,
	format string,
) error {
	if err := validateOutputFormat(format); err != nil {
		return err
	}

	logger.Info("destroying dek",
		slog.String("owner_id", ownerID),
		slog.String("protected_record_id", protectedRecordID),
	)

	existed, err := envelopeUseCase.DestroyDek(ctx, protectedRecordID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to destroy dek: %w", err)
	}

	if format == "json" {
		if err := outputDestroyJSON(out, protectedRecordID, existed); err != nil {
			return err
		}
	} else {
		outputDestroyText(out, protectedRecordID, existed)
	}

	logger.Info("dek destruction completed",
		slog.String("protected_record_id", protectedRecordID),
		slog.Bool("existed", existed),
	)

	return nil
}

// outputDestroyText outputs the result in human-readable text format.
func outputDestroyText(out io.Writer, protectedRecordID string, existed bool) {
	if existed {
		fmt.Fprintf(out, "DEK for record %q is destroyed; its data is permanently unreadable\n", protectedRecordID)
	} else {
		fmt.Fprintf(out, "No DEK was ever created for record %q; nothing to destroy\n", protectedRecordID)
	}
}

// outputDestroyJSON outputs the result in JSON format for machine consumption.
func outputDestroyJSON(out io.Writer, protectedRecordID string, existed bool) error {
	result := map[string]interface{}{
		"protected_record_id": protectedRecordID,
		"existed":             existed,
		"destroyed":           existed,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(out, string(jsonBytes))
	return nil
}
