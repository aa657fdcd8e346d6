package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	envelopeDomain "github.com/allisson/envelope/internal/envelope/domain"
	envelopeUsecase "github.com/allisson/envelope/internal/envelope/usecase"
)

// RunInspectDek shows the metadata of a protected record's data encryption key.
// Only non-secret fields are reported; the command never touches key material.
// Supports both text and JSON output formats.
func RunInspectDek(
	ctx context.Context,
	envelopeUseCase envelopeUsecase.EnvelopeUseCase,
	logger *slog.Logger,
	out io.Writer,
	protectedRecordID string,
	format string,
) error {
	if err := validateOutputFormat(format); err != nil {
		return err
	}

	logger.Info("inspecting dek",
		slog.String("protected_record_id", protectedRecordID),
	)

	metadata, err := envelopeUseCase.DekMetadata(ctx, protectedRecordID)
	if err != nil {
		return fmt.Errorf("failed to get dek metadata: %w", err)
	}

	if format == "json" {
		return outputInspectJSON(out, metadata)
	}

	outputInspectText(out, metadata)
	return nil
}

// outputInspectText outputs the DEK metadata in human-readable text format.
func outputInspectText(out io.Writer, metadata *envelopeDomain.DekMetadata) {
	fmt.Fprintf(out, "Protected record: %s\n", metadata.ProtectedRecordID)
	fmt.Fprintf(out, "Owner:            %s\n", metadata.OwnerID)
	fmt.Fprintf(out, "DEK ID:           %s\n", metadata.ID)
	fmt.Fprintf(out, "Provider version: %s\n", metadata.ProviderVersion)
	fmt.Fprintf(out, "Key version:      %d\n", metadata.KeyVersion)
	fmt.Fprintf(out, "Created at:       %s\n", metadata.CreatedAt.Format(time.RFC3339))
	if metadata.RotatedAt != nil {
		fmt.Fprintf(out, "Rotated at:       %s\n", metadata.RotatedAt.Format(time.RFC3339))
	}
	if metadata.DeletedAt != nil {
		fmt.Fprintf(out, "Destroyed at:     %s\n", metadata.DeletedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "Active:           %t\n", !metadata.Destroyed)
}

// outputInspectJSON outputs the DEK metadata in JSON format for machine consumption.
func outputInspectJSON(out io.Writer, metadata *envelopeDomain.DekMetadata) error {
	result := map[string]interface{}{
		"dek_id":              metadata.ID.String(),
		"owner_id":            metadata.OwnerID,
		"protected_record_id": metadata.ProtectedRecordID,
		"provider_version":    metadata.ProviderVersion,
		"key_version":         metadata.KeyVersion,
		"created_at":          metadata.CreatedAt.Format(time.RFC3339),
		"destroyed":           metadata.Destroyed,
		"active":              !metadata.Destroyed,
	}
	if metadata.RotatedAt != nil {
		result["rotated_at"] = metadata.RotatedAt.Format(time.RFC3339)
	}
	if metadata.DeletedAt != nil {
		result["deleted_at"] = metadata.DeletedAt.Format(time.RFC3339)
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(out, string(jsonBytes))
	return nil
}
