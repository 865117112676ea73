package permissions

import (
	"context"

	"github.com/dpetrovs/archivegate/internal/archive"
)

// Repository answers upload-rights questions about a signing key.
type Repository interface {
	PermittedComponents(ctx context.Context, fingerprint, distribution string) ([]string, error)
	IsOwner(ctx context.Context, fingerprint string, ar *archive.Archive) (bool, error)
}
