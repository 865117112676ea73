package services

import (
	"context"
	"fmt"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/logging"
	"github.com/dpetrovs/archivegate/internal/server/repositories/queue"
)

// QueueService exposes the operator side of the acceptance queue: listing
// held uploads and resolving them.
type QueueService struct {
	logger logging.Logger
	queue  queue.Repository
}

func NewQueueService(logger logging.Logger, queue queue.Repository) *QueueService {
	return &QueueService{
		logger: logger.With("component", "queue-service"),
		queue:  queue,
	}
}

var queueStatuses = map[archive.QueueStatus]bool{
	archive.QueueNew:        true,
	archive.QueueUnapproved: true,
	archive.QueueAccepted:   true,
	archive.QueueDone:       true,
	archive.QueueRejected:   true,
}

// List returns the queue items in the given state, oldest first.
func (s *QueueService) List(ctx context.Context, status archive.QueueStatus) ([]*archive.QueueItem, error) {
	if !queueStatuses[status] {
		return nil, fmt.Errorf("unknown queue status %q", status)
	}
	return s.queue.List(ctx, status)
}

// Approve moves a held upload to accepted. Only uploads waiting in the new
// or unapproved states can be approved.
func (s *QueueService) Approve(ctx context.Context, id string) error {
	item, err := s.queue.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if item.Status != archive.QueueNew && item.Status != archive.QueueUnapproved {
		return fmt.Errorf("cannot approve upload in state %q", item.Status)
	}

	if err := s.queue.SetStatus(ctx, id, archive.QueueAccepted, ""); err != nil {
		return err
	}
	s.logger.Info(ctx, "upload approved", "id", id, "package", item.Package)
	return nil
}

// Reject moves a held upload to rejected with the operator's reason.
func (s *QueueService) Reject(ctx context.Context, id, reason string) error {
	item, err := s.queue.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if item.Status != archive.QueueNew && item.Status != archive.QueueUnapproved {
		return fmt.Errorf("cannot reject upload in state %q", item.Status)
	}

	if err := s.queue.SetStatus(ctx, id, archive.QueueRejected, reason); err != nil {
		return err
	}
	s.logger.Info(ctx, "upload rejected by operator", "id", id, "package", item.Package)
	return nil
}
