package queue

import (
	"context"

	"github.com/dpetrovs/archivegate/internal/archive"
)

// Repository persists the upload queue: one record per processed upload.
type Repository interface {
	Create(ctx context.Context, item *archive.QueueItem) error
	GetByID(ctx context.Context, id string) (*archive.QueueItem, error)
	List(ctx context.Context, status archive.QueueStatus) ([]*archive.QueueItem, error)
	SetStatus(ctx context.Context, id string, status archive.QueueStatus, reason string) error
}
