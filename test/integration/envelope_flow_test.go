// Package integration contains end-to-end tests that exercise the full
// envelope encryption flow against real PostgreSQL and MySQL databases.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/envelope/internal/app"
	"github.com/allisson/envelope/internal/config"
	cryptoDomain "github.com/allisson/envelope/internal/crypto/domain"
	envelopeDomain "github.com/allisson/envelope/internal/envelope/domain"
	envelopeUsecase "github.com/allisson/envelope/internal/envelope/usecase"
	"github.com/allisson/envelope/internal/testutil"
)

// envelopeTestContext holds the components wired for one database driver.
type envelopeTestContext struct {
	container *app.Container
	db        *sql.DB
	useCase   envelopeUsecase.EnvelopeUseCase
}

// setupEnvelopeTestContext prepares a clean database and a container wired
// against it for the given driver.
func setupEnvelopeTestContext(t *testing.T, driver string, dsn string) *envelopeTestContext {
	t.Helper()

	var db *sql.DB
	switch driver {
	case "postgres":
		testutil.SkipIfNoPostgres(t)
		db = testutil.SetupPostgresDB(t)
	case "mysql":
		testutil.SkipIfNoMySQL(t)
		db = testutil.SetupMySQLDB(t)
	default:
		t.Fatalf("unsupported driver: %s", driver)
	}

	cfg := &config.Config{
		MasterSecret:         "integration-test-master-secret-01",
		DBDriver:             driver,
		DBConnectionString:   dsn,
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    time.Hour,
		LogLevel:             "error",
		MetricsEnabled:       false,
	}

	container := app.NewContainer(cfg)

	useCase, err := container.EnvelopeUseCase()
	require.NoError(t, err, "failed to initialize envelope use case")

	return &envelopeTestContext{
		container: container,
		db:        db,
		useCase:   useCase,
	}
}

// cleanupEnvelopeTestContext shuts down the container and closes the
// test database connection.
func cleanupEnvelopeTestContext(t *testing.T, testCtx *envelopeTestContext) {
	t.Helper()

	if err := testCtx.container.Shutdown(context.Background()); err != nil {
		t.Logf("Warning: failed to shutdown container: %v", err)
	}

	if err := testCtx.db.Close(); err != nil {
		t.Logf("Warning: failed to close test database: %v", err)
	}
}

// TestEnvelopeEncryption_EndToEnd runs the complete DEK lifecycle against
// both supported databases: encrypt, decrypt, tenant isolation, destruction,
// owner-wide destruction, and file encryption.
func TestEnvelopeEncryption_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dbConfigs := []struct {
		name   string
		driver string
		dsn    string
	}{
		{name: "PostgreSQL", driver: "postgres", dsn: testutil.GetPostgresTestDSN()},
		{name: "MySQL", driver: "mysql", dsn: testutil.GetMySQLTestDSN()},
	}

	for _, dbConfig := range dbConfigs {
		t.Run(dbConfig.name, func(t *testing.T) {
			ctx := context.Background()
			driver := dbConfig.driver

			testCtx := setupEnvelopeTestContext(t, driver, dbConfig.dsn)
			defer cleanupEnvelopeTestContext(t, testCtx)

			useCase := testCtx.useCase

			t.Run("EncryptDecryptRoundTrip", func(t *testing.T) {
				payload := []byte("cardholder data for the roundtrip record")

				sealed, err := useCase.EncryptData(ctx, payload, "roundtrip-record", "tenant-a")
				require.NoError(t, err)
				assert.NotEqual(t, payload, sealed)
				assert.Len(t, sealed, len(payload)+cryptoDomain.NonceSize+cryptoDomain.TagSize)

				decrypted, err := useCase.DecryptData(ctx, sealed, "roundtrip-record", "tenant-a")
				require.NoError(t, err)
				assert.Equal(t, payload, decrypted)

				active, err := useCase.IsActive(ctx, "roundtrip-record")
				require.NoError(t, err)
				assert.True(t, active)
			})

			t.Run("CreateDekIsIdempotent", func(t *testing.T) {
				dekID, err := useCase.CreateDek(ctx, "tenant-a", "idempotent-record")
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, dekID)

				again, err := useCase.CreateDek(ctx, "tenant-a", "idempotent-record")
				require.NoError(t, err)
				assert.Equal(t, dekID, again)

				record, err := useCase.GetDekRecord(ctx, "idempotent-record", "tenant-a")
				require.NoError(t, err)
				assert.Equal(t, dekID, record.ID)
				assert.Equal(t, "local-v1", record.ProviderVersion)
				assert.Equal(t, uint(1), record.KeyVersion)
				assert.False(t, record.Destroyed())
			})

			t.Run("TenantIsolation", func(t *testing.T) {
				sealed, err := useCase.EncryptData(ctx, []byte("tenant a private data"), "isolation-record", "tenant-a")
				require.NoError(t, err)

				// Another tenant's key hierarchy cannot unwrap this DEK.
				_, err = useCase.DecryptData(ctx, sealed, "isolation-record", "tenant-b")
				require.Error(t, err)
				assert.ErrorIs(t, err, cryptoDomain.ErrUnwrapFailed)

				decrypted, err := useCase.DecryptData(ctx, sealed, "isolation-record", "tenant-a")
				require.NoError(t, err)
				assert.Equal(t, []byte("tenant a private data"), decrypted)
			})

			t.Run("DestroyMakesDataUnreadable", func(t *testing.T) {
				payload := []byte("data that must become unreadable")

				sealed, err := useCase.EncryptData(ctx, payload, "destroy-record", "tenant-a")
				require.NoError(t, err)

				before, err := useCase.GetDekRecord(ctx, "destroy-record", "tenant-a")
				require.NoError(t, err)
				originalWrappedDek := bytes.Clone(before.WrappedDek)

				existed, err := useCase.DestroyDek(ctx, "destroy-record", "tenant-a")
				require.NoError(t, err)
				assert.True(t, existed)

				_, err = useCase.DecryptData(ctx, sealed, "destroy-record", "tenant-a")
				assert.ErrorIs(t, err, envelopeDomain.ErrDekDestroyed)

				_, err = useCase.EncryptData(ctx, []byte("new data"), "destroy-record", "tenant-a")
				assert.ErrorIs(t, err, envelopeDomain.ErrDekDestroyed)

				// Destroying again reports the record as existing and stays destroyed.
				existed, err = useCase.DestroyDek(ctx, "destroy-record", "tenant-a")
				require.NoError(t, err)
				assert.True(t, existed)

				after, err := useCase.GetDekRecord(ctx, "destroy-record", "tenant-a")
				require.NoError(t, err)
				assert.True(t, after.Destroyed())
				require.NotNil(t, after.DeletedAt)
				assert.Len(t, after.WrappedDek, len(originalWrappedDek))
				assert.NotEqual(t, originalWrappedDek, after.WrappedDek)

				active, err := useCase.IsActive(ctx, "destroy-record")
				require.NoError(t, err)
				assert.False(t, active)
			})

			t.Run("DestroyOwnerDeks", func(t *testing.T) {
				for i := 0; i < 5; i++ {
					recordID := fmt.Sprintf("wipe-record-%d", i)
					_, err := useCase.EncryptData(ctx, []byte("bulk tenant data"), recordID, "tenant-wipe")
					require.NoError(t, err)
				}

				_, err := useCase.EncryptData(ctx, []byte("unrelated tenant data"), "survivor-record", "tenant-keep")
				require.NoError(t, err)

				destroyed, err := useCase.DestroyOwnerDeks(ctx, "tenant-wipe", 2, 0)
				require.NoError(t, err)
				assert.Equal(t, 5, destroyed)

				for i := 0; i < 5; i++ {
					recordID := fmt.Sprintf("wipe-record-%d", i)
					active, err := useCase.IsActive(ctx, recordID)
					require.NoError(t, err)
					assert.False(t, active, "record %s should be destroyed", recordID)
				}

				// The other tenant's DEK is untouched.
				active, err := useCase.IsActive(ctx, "survivor-record")
				require.NoError(t, err)
				assert.True(t, active)

				// A second sweep finds nothing left to destroy.
				destroyed, err = useCase.DestroyOwnerDeks(ctx, "tenant-wipe", 2, 0)
				require.NoError(t, err)
				assert.Equal(t, 0, destroyed)

				remaining := countActiveOwnerDeks(t, testCtx.db, driver, "tenant-wipe")
				assert.Equal(t, 0, remaining)
			})

			t.Run("FileRoundTrip", func(t *testing.T) {
				dir := t.TempDir()
				sourcePath := filepath.Join(dir, "payroll.csv")
				encryptedPath := filepath.Join(dir, "payroll.csv.enc")
				decryptedPath := filepath.Join(dir, "payroll.csv.dec")

				content := []byte("employee,salary\nalice,100000\nbob,95000\n")
				require.NoError(t, os.WriteFile(sourcePath, content, 0o600))

				err := useCase.EncryptFile(ctx, sourcePath, encryptedPath, "file-record", "tenant-a")
				require.NoError(t, err)

				sealed, err := os.ReadFile(encryptedPath)
				require.NoError(t, err)
				assert.NotEqual(t, content, sealed)
				assert.Len(t, sealed, len(content)+cryptoDomain.NonceSize+cryptoDomain.TagSize)

				err = useCase.DecryptFile(ctx, encryptedPath, decryptedPath, "file-record", "tenant-a")
				require.NoError(t, err)

				decrypted, err := os.ReadFile(decryptedPath)
				require.NoError(t, err)
				assert.Equal(t, content, decrypted)
			})
		})
	}
}

// countActiveOwnerDeks queries the dek_records table directly to verify the
// repository state after an owner-wide destroy.
func countActiveOwnerDeks(t *testing.T, db *sql.DB, driver string, ownerID string) int {
	t.Helper()

	var query string
	if driver == "postgres" {
		query = "SELECT COUNT(*) FROM dek_records WHERE owner_id = $1 AND deleted_at IS NULL"
	} else {
		query = "SELECT COUNT(*) FROM dek_records WHERE owner_id = ? AND deleted_at IS NULL"
	}

	var count int
	err := db.QueryRow(query, ownerID).Scan(&count)
	require.NoError(t, err, "failed to count active dek records")

	return count
}
