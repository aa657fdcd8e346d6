package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/allisson/envelope/internal/database"
	envelopeDomain "github.com/allisson/envelope/internal/envelope/domain"
	apperrors "github.com/allisson/envelope/internal/errors"
)

// MySQLDekRecordRepository implements DEK record persistence for MySQL.
// Uses BINARY(16) for UUIDs and BLOB for wrapped keys with transaction support.
type MySQLDekRecordRepository struct {
	db *sql.DB
}

// Create inserts a new DEK record into the MySQL database.
// A uniqueness violation on protected_record_id maps to ErrDekRecordExists so
// callers can settle concurrent create races by re-fetching the winner.
func (m *MySQLDekRecordRepository) Create(
	ctx context.Context,
	record *envelopeDomain.DekRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO dek_records (id, owner_id, protected_record_id, wrapped_dek, provider_version, key_version, created_at, rotated_at, deleted_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal dek record id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		record.OwnerID,
		record.ProtectedRecordID,
		record.WrappedDek,
		record.ProviderVersion,
		record.KeyVersion,
		record.CreatedAt,
		record.RotatedAt,
		record.DeletedAt,
	)
	if err != nil {
		// Check for duplicate entry error (MySQL error number 1062)
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return envelopeDomain.ErrDekRecordExists
		}
		return apperrors.Wrap(err, "failed to create dek record")
	}
	return nil
}

// GetByProtectedRecordID retrieves the DEK record for a protected record,
// whether active or destroyed. At most one row exists per protected record.
func (m *MySQLDekRecordRepository) GetByProtectedRecordID(
	ctx context.Context,
	protectedRecordID string,
) (*envelopeDomain.DekRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, owner_id, protected_record_id, wrapped_dek, provider_version, key_version, created_at, rotated_at, deleted_at
			  FROM dek_records
			  WHERE protected_record_id = ?`

	var record envelopeDomain.DekRecord
	var idBytes []byte

	err := querier.QueryRowContext(ctx, query, protectedRecordID).Scan(
		&idBytes,
		&record.OwnerID,
		&record.ProtectedRecordID,
		&record.WrappedDek,
		&record.ProviderVersion,
		&record.KeyVersion,
		&record.CreatedAt,
		&record.RotatedAt,
		&record.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, envelopeDomain.ErrDekRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get dek record")
	}

	if err := record.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal dek record id")
	}

	return &record, nil
}

// GetByProtectedRecordIDAndOwner retrieves the DEK record for a protected
// record scoped to its owner. A record held by a different owner reports
// ErrDekRecordNotFound rather than revealing its existence.
func (m *MySQLDekRecordRepository) GetByProtectedRecordIDAndOwner(
	ctx context.Context,
	protectedRecordID string,
	ownerID string,
) (*envelopeDomain.DekRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, owner_id, protected_record_id, wrapped_dek, provider_version, key_version, created_at, rotated_at, deleted_at
			  FROM dek_records
			  WHERE protected_record_id = ? AND owner_id = ?`

	var record envelopeDomain.DekRecord
	var idBytes []byte

	err := querier.QueryRowContext(ctx, query, protectedRecordID, ownerID).Scan(
		&idBytes,
		&record.OwnerID,
		&record.ProtectedRecordID,
		&record.WrappedDek,
		&record.ProviderVersion,
		&record.KeyVersion,
		&record.CreatedAt,
		&record.RotatedAt,
		&record.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, envelopeDomain.ErrDekRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get dek record by owner")
	}

	if err := record.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal dek record id")
	}

	return &record, nil
}

// ListActiveByOwner retrieves a batch of non-destroyed DEK records for an
// owner, oldest first, for owner-wide destruction to page through.
func (m *MySQLDekRecordRepository) ListActiveByOwner(
	ctx context.Context,
	ownerID string,
	limit int,
) ([]*envelopeDomain.DekRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, owner_id, protected_record_id, wrapped_dek, provider_version, key_version, created_at, rotated_at, deleted_at
			  FROM dek_records
			  WHERE owner_id = ? AND deleted_at IS NULL
			  ORDER BY created_at ASC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list dek records")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	records := make([]*envelopeDomain.DekRecord, 0)
	for rows.Next() {
		var record envelopeDomain.DekRecord
		var idBytes []byte

		err := rows.Scan(
			&idBytes,
			&record.OwnerID,
			&record.ProtectedRecordID,
			&record.WrappedDek,
			&record.ProviderVersion,
			&record.KeyVersion,
			&record.CreatedAt,
			&record.RotatedAt,
			&record.DeletedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan dek record")
		}

		if err := record.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal dek record id")
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate dek records")
	}

	return records, nil
}

// Destroy overwrites the wrapped DEK and marks the record destroyed in a
// single statement. The deleted_at guard keeps the transition one-way: a
// record that is already destroyed is left untouched and the junk bytes of
// the first destroyer are preserved. Returns whether this call performed
// the transition.
func (m *MySQLDekRecordRepository) Destroy(
	ctx context.Context,
	id uuid.UUID,
	junkDek []byte,
	deletedAt time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE dek_records
			  SET wrapped_dek = ?, deleted_at = ?
			  WHERE id = ? AND deleted_at IS NULL`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal dek record id")
	}

	result, err := querier.ExecContext(ctx, query, junkDek, deletedAt, idBytes)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to destroy dek record")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}

	return rowsAffected > 0, nil
}

// NewMySQLDekRecordRepository creates a new MySQL DEK record repository.
func NewMySQLDekRecordRepository(db *sql.DB) *MySQLDekRecordRepository {
	return &MySQLDekRecordRepository{db: db}
}
