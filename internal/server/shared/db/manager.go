package db

import (
	"context"
	"database/sql"

	"github.com/dpetrovs/archivegate/internal/server/repositories/permissions"
	"github.com/dpetrovs/archivegate/internal/server/repositories/publications"
	"github.com/dpetrovs/archivegate/internal/server/repositories/queue"
	"github.com/dpetrovs/archivegate/internal/server/repositories/releases"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Publications() publications.Repository
	Permissions() permissions.Repository
	Releases() releases.Repository
	Queue() queue.Repository
}
