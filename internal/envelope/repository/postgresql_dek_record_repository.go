// Package repository implements DEK record persistence for PostgreSQL and MySQL.
// Both implementations join ambient transactions through database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/allisson/envelope/internal/database"
	envelopeDomain "github.com/allisson/envelope/internal/envelope/domain"
	apperrors "github.com/allisson/envelope/internal/errors"
)

// PostgreSQLDekRecordRepository implements DEK record persistence for PostgreSQL.
// Uses native UUID and BYTEA types with transaction support via database.GetTx().
type PostgreSQLDekRecordRepository struct {
	db *sql.DB
}

// Create inserts a new DEK record into the PostgreSQL database.
// A uniqueness violation on protected_record_id maps to ErrDekRecordExists so
// callers can settle concurrent create races by re-fetching the winner.
func (p *PostgreSQLDekRecordRepository) Create(
	ctx context.Context,
	record *envelopeDomain.DekRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO dek_records (id, owner_id, protected_record_id, wrapped_dek, provider_version, key_version, created_at, rotated_at, deleted_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
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
		if isPostgreSQLUniqueViolation(err) {
			return envelopeDomain.ErrDekRecordExists
		}
		return apperrors.Wrap(err, "failed to create dek record")
	}
	return nil
}

// GetByProtectedRecordID retrieves the DEK record for a protected record,
// whether active or destroyed. At most one row exists per protected record.
func (p *PostgreSQLDekRecordRepository) GetByProtectedRecordID(
	ctx context.Context,
	protectedRecordID string,
) (*envelopeDomain.DekRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, owner_id, protected_record_id, wrapped_dek, provider_version, key_version, created_at, rotated_at, deleted_at
			  FROM dek_records
			  WHERE protected_record_id = $1`

	var record envelopeDomain.DekRecord
	err := querier.QueryRowContext(ctx, query, protectedRecordID).Scan(
		&record.ID,
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

	return &record, nil
}

// GetByProtectedRecordIDAndOwner retrieves the DEK record for a protected
// record scoped to its owner. A record held by a different owner reports
// ErrDekRecordNotFound rather than revealing its existence.
func (p *PostgreSQLDekRecordRepository) GetByProtectedRecordIDAndOwner(
	ctx context.Context,
	protectedRecordID string,
	ownerID string,
) (*envelopeDomain.DekRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, owner_id, protected_record_id, wrapped_dek, provider_version, key_version, created_at, rotated_at, deleted_at
			  FROM dek_records
			  WHERE protected_record_id = $1 AND owner_id = $2`

	var record envelopeDomain.DekRecord
	err := querier.QueryRowContext(ctx, query, protectedRecordID, ownerID).Scan(
		&record.ID,
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

	return &record, nil
}

// ListActiveByOwner retrieves a batch of non-destroyed DEK records for an
// owner, oldest first, for owner-wide destruction to page through.
func (p *PostgreSQLDekRecordRepository) ListActiveByOwner(
	ctx context.Context,
	ownerID string,
	limit int,
) ([]*envelopeDomain.DekRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, owner_id, protected_record_id, wrapped_dek, provider_version, key_version, created_at, rotated_at, deleted_at
			  FROM dek_records
			  WHERE owner_id = $1 AND deleted_at IS NULL
			  ORDER BY created_at ASC
			  LIMIT $2`

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
		err := rows.Scan(
			&record.ID,
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
func (p *PostgreSQLDekRecordRepository) Destroy(
	ctx context.Context,
	id uuid.UUID,
	junkDek []byte,
	deletedAt time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE dek_records
			  SET wrapped_dek = $1, deleted_at = $2
			  WHERE id = $3 AND deleted_at IS NULL`

	result, err := querier.ExecContext(ctx, query, junkDek, deletedAt, id)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to destroy dek record")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}

	return rowsAffected > 0, nil
}

// isPostgreSQLUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isPostgreSQLUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// NewPostgreSQLDekRecordRepository creates a new PostgreSQL DEK record repository.
func NewPostgreSQLDekRecordRepository(db *sql.DB) *PostgreSQLDekRecordRepository {
	return &PostgreSQLDekRecordRepository{db: db}
}
