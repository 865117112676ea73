package publications

import (
	"context"

	"github.com/dpetrovs/archivegate/internal/archive"
)

// Repository is the ancestry query surface the upload engine consumes.
// Both queries return candidates newest-first and must be side-effect
// free: the engine may call them repeatedly within one run.
type Repository interface {
	PublishedSources(ctx context.Context, ar *archive.Archive, series *archive.DistroSeries,
		pkg string, pocket archive.Pocket, includePending bool) ([]*archive.SourcePublication, error)
	PublishedBinaries(ctx context.Context, ar *archive.Archive, series *archive.DistroSeries,
		pkg, arch string, pocket archive.Pocket, includePending bool) ([]*archive.BinaryPublication, error)
}
