// Package permissions provides the PostgreSQL-backed upload ACL records.
package permissions

import (
	"context"
	"fmt"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/dbx"
)

// PostgresRepository implements ACL queries over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// PermittedComponents returns the component names the key holder may
// upload to in the distribution; an empty result means no rights at all.
func (r *PostgresRepository) PermittedComponents(ctx context.Context, fingerprint, distribution string) ([]string, error) {
	query := `
		SELECT DISTINCT component FROM upload_permissions
		WHERE fingerprint = $1 AND distribution = $2
		ORDER BY component
	`
	rows, err := r.db.QueryContext(ctx, query, fingerprint, distribution)
	if err != nil {
		return nil, fmt.Errorf("failed to select upload permissions: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var component string
		if err := rows.Scan(&component); err != nil {
			return nil, err
		}
		result = append(result, component)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// IsOwner reports whether the key holder belongs to the archive's owning
// person or team. Direct ownership is modelled as self-membership.
func (r *PostgresRepository) IsOwner(ctx context.Context, fingerprint string, ar *archive.Archive) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM team_members WHERE team = $1 AND fingerprint = $2
		)
	`
	var owner bool
	if err := r.db.QueryRowContext(ctx, query, ar.Owner, fingerprint).Scan(&owner); err != nil {
		return false, fmt.Errorf("failed to check archive ownership: %w", err)
	}
	return owner, nil
}
