package upload

import (
	"context"
	"fmt"

	"github.com/dpetrovs/archivegate/internal/changes"
)

// verifyACL resolves the signer's upload rights and checks every
// non-custom, non-NEW file against them.
//
// Unsigned manifests skip ACL enforcement entirely: they only reach the
// engine through pathways (sync, build farm) whose policy vouches for the
// origin. For PPAs, ownership substitutes for component ACLs. NEW files
// are exempt by design: a package the target has never seen has no
// established component yet, and goes through manual review instead.
func (e *Engine) verifyACL(ctx context.Context) error {
	signer := e.manifest.Signer
	if signer == nil {
		return nil
	}

	if e.target.IsPPA() {
		owner, err := e.stores.Permissions.IsOwner(ctx, signer.Fingerprint, e.target)
		if err != nil {
			return fmt.Errorf("ppa ownership lookup: %w", err)
		}
		if !owner {
			e.Reject(fmt.Sprintf("Signer has no upload rights to this PPA (%s).",
				e.target.Owner))
		}
		return nil
	}

	components, err := e.stores.Permissions.PermittedComponents(
		ctx, signer.Fingerprint, e.target.Distribution)
	if err != nil {
		return fmt.Errorf("permitted components lookup: %w", err)
	}
	if len(components) == 0 {
		e.Reject(fmt.Sprintf(
			"The signer of this package has no upload rights to this "+
				"distribution's primary archive (%s). Did you mean to upload to "+
				"a PPA?", e.target.Distribution))
		return nil
	}

	permitted := make(map[string]bool, len(components))
	for _, c := range components {
		permitted[c] = true
	}

	for _, f := range e.manifest.Files {
		if f.Kind == changes.KindCustom || f.New {
			continue
		}
		if !permitted[f.ComponentName] {
			e.Reject(fmt.Sprintf(
				"Signer is not permitted to upload to the component '%s' of "+
					"file '%s'.", f.ComponentName, f.Filename))
		}
	}
	return nil
}
