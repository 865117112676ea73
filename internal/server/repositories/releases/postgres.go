// Package releases provides PostgreSQL-backed lookups of distribution
// structure: series, their architectures, and archives.
package releases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/common"
	"github.com/dpetrovs/archivegate/internal/dbx"
)

// PostgresRepository implements release lookups over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// LookupSuite resolves a suite name like "noble-security" into the series
// and pocket it targets. Returns common.ErrorNotFound for a series the
// distribution does not have.
func (r *PostgresRepository) LookupSuite(ctx context.Context, distribution, suite string) (*archive.DistroSeries, archive.Pocket, error) {
	name, pocket := archive.ParseSuite(suite)

	series := &archive.DistroSeries{Distribution: distribution, Name: name}
	query := `
		SELECT status, nominated_arch_indep FROM distro_series
		WHERE distribution = $1 AND name = $2
	`
	err := r.db.QueryRowContext(ctx, query, distribution, name).
		Scan(&series.Status, &series.NominatedArchIndep)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pocket, common.ErrorNotFound
	}
	if err != nil {
		return nil, pocket, fmt.Errorf("failed to select distro series: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT architecture FROM series_architectures
		WHERE distribution = $1 AND series = $2
		ORDER BY architecture
	`, distribution, name)
	if err != nil {
		return nil, pocket, fmt.Errorf("failed to select series architectures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var arch string
		if err := rows.Scan(&arch); err != nil {
			return nil, pocket, err
		}
		series.Architectures = append(series.Architectures, arch)
	}
	if err := rows.Err(); err != nil {
		return nil, pocket, err
	}

	return series, pocket, nil
}

// PartnerArchive returns the distribution's designated partner archive, or
// common.ErrorNotFound when none is configured.
func (r *PostgresRepository) PartnerArchive(ctx context.Context, distribution string) (*archive.Archive, error) {
	return r.selectArchive(ctx, `
		SELECT id, distribution, name, purpose, owner FROM archives
		WHERE distribution = $1 AND purpose = 'partner'
	`, distribution)
}

// ArchiveByName resolves an upload target archive by name.
func (r *PostgresRepository) ArchiveByName(ctx context.Context, distribution, name string) (*archive.Archive, error) {
	return r.selectArchive(ctx, `
		SELECT id, distribution, name, purpose, owner FROM archives
		WHERE distribution = $1 AND name = $2
	`, distribution, name)
}

func (r *PostgresRepository) selectArchive(ctx context.Context, query string, args ...any) (*archive.Archive, error) {
	var item archive.Archive
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&item.ID, &item.Distribution, &item.Name, &item.Purpose, &item.Owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select archive: %w", err)
	}
	return &item, nil
}
