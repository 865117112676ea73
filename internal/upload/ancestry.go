package upload

import (
	"context"
	"fmt"
	"strings"

	"pault.ag/go/debian/version"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/changes"
)

// resolveAncestryAndOverrides walks every source and binary file, finds its
// most recent prior publication, copies the ancestry's overrides onto it
// and clears its NEW flag, and enforces version monotonicity. Files with no
// ancestry stay NEW. Custom files carry no overrides and are skipped.
func (e *Engine) resolveAncestryAndOverrides(ctx context.Context) error {
	if e.series == nil {
		// The suite never resolved; that rejection is already recorded.
		return nil
	}
	for _, f := range e.manifest.Files {
		var err error
		switch f.Kind {
		case changes.KindSource:
			err = e.resolveSourceAncestry(ctx, f)
		case changes.KindBinary:
			err = e.resolveBinaryAncestry(ctx, f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// pocketSearchOrder is the prioritized ancestry search: the target pocket
// first, falling back to Release.
func (e *Engine) pocketSearchOrder() []archive.Pocket {
	if e.pocket == archive.PocketRelease {
		return []archive.Pocket{archive.PocketRelease}
	}
	return []archive.Pocket{e.pocket, archive.PocketRelease}
}

func (e *Engine) resolveSourceAncestry(ctx context.Context, f *changes.UploadedFile) error {
	var ancestor *archive.SourcePublication
	for _, pocket := range e.pocketSearchOrder() {
		pubs, err := e.stores.Ancestry.PublishedSources(
			ctx, e.target, e.series, f.Package, pocket, true)
		if err != nil {
			return fmt.Errorf("source ancestry lookup for %s: %w", f.Package, err)
		}
		if len(pubs) > 0 {
			ancestor = pubs[0]
			break
		}
	}

	if ancestor == nil {
		f.New = true
		return nil
	}

	// A source re-upload must be strictly newer; equal versions reject.
	// The version check and the override are independent outcomes: the
	// override applies even when the comparison fails, so an operator
	// inspecting the rejection sees the file as it would have landed.
	if cmp, err := compareVersions(e.manifest.Version, ancestor.Version); err != nil {
		e.Reject(fmt.Sprintf("Unable to compare version %q with the archive's %q: %v",
			e.manifest.Version, ancestor.Version, err))
	} else if cmp <= 0 {
		e.Reject(fmt.Sprintf("Version older than that in the archive. %s <= %s",
			e.manifest.Version, ancestor.Version))
	}

	f.ComponentName = ancestor.Component
	f.SectionName = ancestor.Section
	f.New = false
	return nil
}

func (e *Engine) resolveBinaryAncestry(ctx context.Context, f *changes.UploadedFile) error {
	arch := f.Architecture
	if arch == changes.ArchIndependent {
		arch = e.series.NominatedArchIndep
	}
	if !e.series.HasArchitecture(arch) {
		e.Reject(fmt.Sprintf("Unable to find arch: %s", arch))
		return nil
	}

	// Overrides may be inherited from any architecture: the first build of
	// a binary on a new architecture should land where its siblings live.
	ancestor, err := e.findBinaryAncestry(ctx, f.Package, arch, true)
	if err != nil {
		return err
	}
	if ancestor == nil {
		f.New = true
		return nil
	}

	f.ComponentName = ancestor.Component
	f.SectionName = ancestor.Section
	f.PriorityName = strings.ToLower(ancestor.Priority)
	f.New = false

	// The version check never crosses architectures: comparing versions of
	// unrelated builds is unsound. An equal version is tolerated, since
	// rebuilding a binary at the same version happens when an architecture
	// catches up.
	same, err := e.findBinaryAncestry(ctx, f.Package, arch, false)
	if err != nil {
		return err
	}
	if same != nil {
		if cmp, err := compareVersions(f.Version, same.Version); err != nil {
			e.Reject(fmt.Sprintf("Unable to compare version %q with the archive's %q: %v",
				f.Version, same.Version, err))
		} else if cmp < 0 {
			e.Reject(fmt.Sprintf("Version older than that in the archive. %s < %s",
				f.Version, same.Version))
		}
	}
	return nil
}

// findBinaryAncestry searches the pocket order for the newest publication
// of pkg; with tryOtherArchs it widens each pocket to the series' other
// architectures after the file's own architecture comes up empty.
func (e *Engine) findBinaryAncestry(ctx context.Context, pkg, arch string, tryOtherArchs bool) (*archive.BinaryPublication, error) {
	for _, pocket := range e.pocketSearchOrder() {
		pubs, err := e.stores.Ancestry.PublishedBinaries(
			ctx, e.target, e.series, pkg, arch, pocket, true)
		if err != nil {
			return nil, fmt.Errorf("binary ancestry lookup for %s: %w", pkg, err)
		}
		if len(pubs) > 0 {
			return pubs[0], nil
		}
		if !tryOtherArchs {
			continue
		}
		for _, other := range e.series.Architectures {
			if other == arch {
				continue
			}
			pubs, err := e.stores.Ancestry.PublishedBinaries(
				ctx, e.target, e.series, pkg, other, pocket, true)
			if err != nil {
				return nil, fmt.Errorf("binary ancestry lookup for %s: %w", pkg, err)
			}
			if len(pubs) > 0 {
				return pubs[0], nil
			}
		}
	}
	return nil, nil
}

// compareVersions applies dpkg version-comparison semantics.
func compareVersions(a, b string) (int, error) {
	va, err := version.Parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := version.Parse(b)
	if err != nil {
		return 0, err
	}
	return version.Compare(va, vb), nil
}
