package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	envelopeDomain "github.com/allisson/envelope/internal/envelope/domain"
	envelopeMocks "github.com/allisson/envelope/internal/envelope/usecase/mocks"
)

func TestRunEncryptFile(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success", func(t *testing.T) {
		mockUseCase := &envelopeMocks.MockEnvelopeUseCase{}
		mockUseCase.On("EncryptFile", ctx, "/tmp/report.csv", "/tmp/report.csv.enc", "customer-7421", "tenant-a").
			Return(nil)

		var out bytes.Buffer
		err := RunEncryptFile(
			ctx,
			mockUseCase,
			logger,
			&out,
			"/tmp/report.csv",
			"/tmp/report.csv.enc",
			"customer-7421",
			"tenant-a",
		)

		require.NoError(t, err)
		require.Contains(t, out.String(), "Encrypted /tmp/report.csv to /tmp/report.csv.enc")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("destroyed-dek", func(t *testing.T) {
		mockUseCase := &envelopeMocks.MockEnvelopeUseCase{}
		mockUseCase.On("EncryptFile", ctx, "/tmp/report.csv", "/tmp/report.csv.enc", "customer-7421", "tenant-a").
			Return(envelopeDomain.ErrDekDestroyed)

		err := RunEncryptFile(
			ctx,
			mockUseCase,
			logger,
			&bytes.Buffer{},
			"/tmp/report.csv",
			"/tmp/report.csv.enc",
			"customer-7421",
			"tenant-a",
		)

		require.Error(t, err)
		require.ErrorIs(t, err, envelopeDomain.ErrDekDestroyed)
		require.Contains(t, err.Error(), "failed to encrypt file")
		mockUseCase.AssertExpectations(t)
	})
}
