// Package queue provides the PostgreSQL-backed upload queue records.
package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/common"
	"github.com/dpetrovs/archivegate/internal/dbx"
)

// PostgresRepository implements queue persistence over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new queue record.
func (r *PostgresRepository) Create(ctx context.Context, item *archive.QueueItem) error {
	query := `
		INSERT INTO upload_queue
			(id, distribution, series, pocket, archive_id, package, version,
			 changes_file, signer, status, rejection_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.Distribution, item.Series, string(item.Pocket), item.ArchiveID,
		item.Package, item.Version, item.ChangesFile, item.Signer,
		string(item.Status), item.RejectionMessage, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert queue item: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, distribution, series, pocket, archive_id, package, version,
		changes_file, signer, status, rejection_message, created_at
	FROM upload_queue
`

// GetByID returns one queue record, or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*archive.QueueItem, error) {
	var item archive.QueueItem
	err := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id).Scan(
		&item.ID, &item.Distribution, &item.Series, &item.Pocket, &item.ArchiveID,
		&item.Package, &item.Version, &item.ChangesFile, &item.Signer,
		&item.Status, &item.RejectionMessage, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select queue item: %w", err)
	}
	return &item, nil
}

// List returns the queue records in one status, oldest first, the order an
// operator reviews them in.
func (r *PostgresRepository) List(ctx context.Context, status archive.QueueStatus) ([]*archive.QueueItem, error) {
	rows, err := r.db.QueryContext(ctx,
		selectColumns+` WHERE status = $1 ORDER BY created_at, id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to select queue items: %w", err)
	}
	defer rows.Close()

	var result []*archive.QueueItem
	for rows.Next() {
		var item archive.QueueItem
		if err := rows.Scan(
			&item.ID, &item.Distribution, &item.Series, &item.Pocket, &item.ArchiveID,
			&item.Package, &item.Version, &item.ChangesFile, &item.Signer,
			&item.Status, &item.RejectionMessage, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetStatus moves a queue record to a new status, recording the reason for
// rejections. Returns common.ErrorNotFound for an unknown record.
func (r *PostgresRepository) SetStatus(ctx context.Context, id string, status archive.QueueStatus, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE upload_queue SET status = $2, rejection_message = $3 WHERE id = $1
	`, id, string(status), reason)
	if err != nil {
		return fmt.Errorf("failed to update queue item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
