package upload

import (
	"context"

	"github.com/dpetrovs/archivegate/internal/archive"
)

// The engine talks to the surrounding system through the narrow, read-only
// query surfaces below. Implementations must be side-effect free and safe
// to call repeatedly: the engine invokes them in a fixed order and other
// uploads may be accepted concurrently against the same backing store.

// AncestryStore finds prior publications of a package. Both queries return
// candidates newest-first; the engine only ever consults the first one.
type AncestryStore interface {
	// PublishedSources returns the published source releases of pkg in the
	// given pocket of the series, optionally including pending ones.
	PublishedSources(ctx context.Context, ar *archive.Archive, series *archive.DistroSeries,
		pkg string, pocket archive.Pocket, includePending bool) ([]*archive.SourcePublication, error)

	// PublishedBinaries is the binary counterpart, scoped additionally to
	// one architecture.
	PublishedBinaries(ctx context.Context, ar *archive.Archive, series *archive.DistroSeries,
		pkg, arch string, pocket archive.Pocket, includePending bool) ([]*archive.BinaryPublication, error)
}

// PermissionStore answers upload-rights questions about a signer.
type PermissionStore interface {
	// PermittedComponents returns the component names the key holder may
	// upload to in the distribution; empty means no rights at all.
	PermittedComponents(ctx context.Context, fingerprint, distribution string) ([]string, error)

	// IsOwner reports whether the key holder is (a member of) the owner of
	// a personal archive.
	IsOwner(ctx context.Context, fingerprint string, ar *archive.Archive) (bool, error)
}

// ReleaseStore resolves distribution structure: suites and the partner
// archive. Lookups that find nothing return common.ErrorNotFound.
type ReleaseStore interface {
	LookupSuite(ctx context.Context, distribution, suite string) (*archive.DistroSeries, archive.Pocket, error)
	PartnerArchive(ctx context.Context, distribution string) (*archive.Archive, error)
}

// Stores bundles the engine's query dependencies.
type Stores struct {
	Releases    ReleaseStore
	Ancestry    AncestryStore
	Permissions PermissionStore
}

// Policy is the upload pathway's rulebook, injected by the caller. The
// capability flags gate which upload shapes the pathway takes at all;
// CheckUpload is the final extensible hook and may append rejections.
type Policy interface {
	Name() string

	CanUploadSource() bool
	CanUploadBinaries() bool
	CanUploadMixed() bool

	// AutoApprove reports whether an otherwise-clean upload may bypass the
	// unapproved queue.
	AutoApprove(e *Engine) bool

	// CheckUpload runs after every built-in stage.
	CheckUpload(ctx context.Context, e *Engine)

	// AnnounceList is the address announcements go to; empty disables
	// announcements for this pathway.
	AnnounceList() string
}

// Committer persists the outcome of a processed upload: the queue record
// and, for accepted uploads, the file payloads.
type Committer interface {
	Commit(ctx context.Context, e *Engine, status archive.QueueStatus) error
}

// NoticeKind enumerates the notices the acceptance decision can dispatch.
type NoticeKind int

const (
	NoticeNew NoticeKind = iota
	NoticeUnapproved
	NoticeAccepted
	NoticeAnnouncement
	NoticeRejected
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeNew:
		return "new"
	case NoticeUnapproved:
		return "unapproved"
	case NoticeAccepted:
		return "accepted"
	case NoticeAnnouncement:
		return "announcement"
	case NoticeRejected:
		return "rejected"
	}
	return "unknown"
}

// Notifier dispatches one notice about the upload.
type Notifier interface {
	Notify(ctx context.Context, e *Engine, kind NoticeKind) error
}
