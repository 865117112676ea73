package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/common"
)

// overrideArchive reroutes uploads declaring the partner component to the
// distribution's partner archive. Partner content never mixes: either
// every file is partner, or the upload is refused without attempting to
// resolve an archive. PPAs have no partner counterpart at all.
func (e *Engine) overrideArchive(ctx context.Context) error {
	var componentNames []string
	seen := make(map[string]bool)
	hasPartner := false
	for _, f := range e.manifest.Files {
		if seen[f.ComponentName] {
			continue
		}
		seen[f.ComponentName] = true
		componentNames = append(componentNames, f.ComponentName)
		if f.ComponentName == archive.ComponentPartner {
			hasPartner = true
		}
	}
	if !hasPartner {
		return nil
	}

	if e.target.IsPPA() {
		e.Reject("PPA does not support partner uploads.")
		return nil
	}
	if len(componentNames) > 1 {
		e.Reject("Cannot mix partner files with non-partner.")
		return nil
	}

	partner, err := e.stores.Releases.PartnerArchive(ctx, e.target.Distribution)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		e.Reject(fmt.Sprintf("Partner archive for distro '%s' not found",
			e.target.Distribution))
	case err != nil:
		return fmt.Errorf("partner archive lookup: %w", err)
	default:
		e.overridden = partner
	}
	return nil
}
