// Package publications provides the PostgreSQL-backed publication history
// used for ancestry lookups.
package publications

import (
	"context"
	"fmt"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/dbx"
)

// PostgresRepository implements publication queries over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// PublishedSources returns the source publications of pkg in one pocket,
// newest first. Pending publications count as ancestry when asked for:
// an upload racing its predecessor's publisher run must still see it.
func (r *PostgresRepository) PublishedSources(ctx context.Context, ar *archive.Archive,
	series *archive.DistroSeries, pkg string, pocket archive.Pocket, includePending bool,
) ([]*archive.SourcePublication, error) {
	query := `
		SELECT package, version, component, section, pocket, status, created_at
		FROM source_publications
		WHERE archive_id = $1 AND series = $2 AND package = $3 AND pocket = $4
			AND (status = 'published' OR ($5 AND status = 'pending'))
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ar.ID, series.Name, pkg, string(pocket), includePending)
	if err != nil {
		return nil, fmt.Errorf("failed to select source publications: %w", err)
	}
	defer rows.Close()

	var result []*archive.SourcePublication
	for rows.Next() {
		var item archive.SourcePublication
		if err := rows.Scan(
			&item.Package, &item.Version, &item.Component, &item.Section,
			&item.Pocket, &item.Status, &item.CreatedAt,
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

// PublishedBinaries is the binary counterpart of PublishedSources, scoped
// to one architecture.
func (r *PostgresRepository) PublishedBinaries(ctx context.Context, ar *archive.Archive,
	series *archive.DistroSeries, pkg, arch string, pocket archive.Pocket, includePending bool,
) ([]*archive.BinaryPublication, error) {
	query := `
		SELECT package, version, component, section, priority, architecture, pocket, status, created_at
		FROM binary_publications
		WHERE archive_id = $1 AND series = $2 AND package = $3 AND architecture = $4 AND pocket = $5
			AND (status = 'published' OR ($6 AND status = 'pending'))
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query,
		ar.ID, series.Name, pkg, arch, string(pocket), includePending)
	if err != nil {
		return nil, fmt.Errorf("failed to select binary publications: %w", err)
	}
	defer rows.Close()

	var result []*archive.BinaryPublication
	for rows.Next() {
		var item archive.BinaryPublication
		if err := rows.Scan(
			&item.Package, &item.Version, &item.Component, &item.Section,
			&item.Priority, &item.Architecture, &item.Pocket, &item.Status, &item.CreatedAt,
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
