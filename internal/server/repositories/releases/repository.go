package releases

import (
	"context"

	"github.com/dpetrovs/archivegate/internal/archive"
)

// Repository resolves distribution structure: suites, archives and the
// partner archive. Lookups that find nothing return common.ErrorNotFound.
type Repository interface {
	LookupSuite(ctx context.Context, distribution, suite string) (*archive.DistroSeries, archive.Pocket, error)
	PartnerArchive(ctx context.Context, distribution string) (*archive.Archive, error)
	ArchiveByName(ctx context.Context, distribution, name string) (*archive.Archive, error)
}
