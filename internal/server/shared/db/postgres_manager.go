package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dpetrovs/archivegate/internal/server/migrations"
	"github.com/dpetrovs/archivegate/internal/server/repositories/permissions"
	"github.com/dpetrovs/archivegate/internal/server/repositories/publications"
	"github.com/dpetrovs/archivegate/internal/server/repositories/queue"
	"github.com/dpetrovs/archivegate/internal/server/repositories/releases"
)

type PostgresRepositoryManager struct {
	db           *sql.DB
	publications publications.Repository
	permissions  permissions.Repository
	releases     releases.Repository
	queue        queue.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Publications() publications.Repository {
	return m.publications
}

func (m *PostgresRepositoryManager) Permissions() permissions.Repository {
	return m.permissions
}

func (m *PostgresRepositoryManager) Releases() releases.Repository {
	return m.releases
}

func (m *PostgresRepositoryManager) Queue() queue.Repository {
	return m.queue
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:           db,
		publications: publications.NewPostgresRepository(db),
		permissions:  permissions.NewPostgresRepository(db),
		releases:     releases.NewPostgresRepository(db),
		queue:        queue.NewPostgresRepository(db),
	}

	err = m.RunMigrations(context.Background())
	if err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
