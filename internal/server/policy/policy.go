// Package policy provides the upload pathways an archive accepts: who may
// use them, which upload shapes they take and whether clean uploads are
// auto-approved. Each pathway implements upload.Policy and is chosen by
// the intake layer, never by the uploader's manifest.
package policy

import (
	"context"
	"fmt"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/upload"
)

// Insecure is the default pathway for signed uploads from developers.
// Source-only: binaries are built by the build farm, not uploaded.
type Insecure struct {
	Announce string
}

func (Insecure) Name() string            { return "insecure" }
func (Insecure) CanUploadSource() bool   { return true }
func (Insecure) CanUploadBinaries() bool { return false }
func (Insecure) CanUploadMixed() bool    { return false }

// AutoApprove lets Release and Proposed uploads straight through; the
// post-release pockets all hold for manual review.
func (Insecure) AutoApprove(e *upload.Engine) bool {
	switch e.Pocket() {
	case archive.PocketRelease, archive.PocketProposed:
		return true
	}
	return false
}

func (Insecure) CheckUpload(ctx context.Context, e *upload.Engine) {
	if e.Manifest().Signer == nil {
		e.Reject("Unsigned uploads are not permitted by the insecure policy.")
	}
}

func (p Insecure) AnnounceList() string { return p.Announce }

// Buildd accepts binary uploads from the build farm. These arrive over a
// trusted channel and are unsigned.
type Buildd struct{}

func (Buildd) Name() string                                      { return "buildd" }
func (Buildd) CanUploadSource() bool                             { return false }
func (Buildd) CanUploadBinaries() bool                           { return true }
func (Buildd) CanUploadMixed() bool                              { return false }
func (Buildd) AutoApprove(e *upload.Engine) bool                 { return true }
func (Buildd) CheckUpload(ctx context.Context, e *upload.Engine) {}
func (Buildd) AnnounceList() string                              { return "" }

// Sync is the unsigned source-only pathway used when mirroring packages
// from a parent distribution.
type Sync struct{}

func (Sync) Name() string                      { return "sync" }
func (Sync) CanUploadSource() bool             { return true }
func (Sync) CanUploadBinaries() bool           { return false }
func (Sync) CanUploadMixed() bool              { return false }
func (Sync) AutoApprove(e *upload.Engine) bool { return true }

func (Sync) CheckUpload(ctx context.Context, e *upload.Engine) {
	// Synced packages were announced by their origin already.
	if e.Manifest().Signer != nil {
		e.Warn("Changes file is signed but the policy is sync; ignoring the signature.")
	}
}

func (Sync) AnnounceList() string { return "" }

// PPA is the pathway for personal archives: signed, source-only, with
// ownership checked instead of component ACLs.
type PPA struct{}

func (PPA) Name() string                      { return "ppa" }
func (PPA) CanUploadSource() bool             { return true }
func (PPA) CanUploadBinaries() bool           { return false }
func (PPA) CanUploadMixed() bool              { return false }
func (PPA) AutoApprove(e *upload.Engine) bool { return true }

func (PPA) CheckUpload(ctx context.Context, e *upload.Engine) {
	if e.Manifest().Signer == nil {
		e.Reject("PPA uploads must be signed.")
	}
}

func (PPA) AnnounceList() string { return "" }

// ForName returns the named pathway. The announce list only matters for
// the insecure policy; the others never announce.
func ForName(name, announce string) (upload.Policy, error) {
	switch name {
	case "insecure":
		return Insecure{Announce: announce}, nil
	case "buildd":
		return Buildd{}, nil
	case "sync":
		return Sync{}, nil
	case "ppa":
		return PPA{}, nil
	}
	return nil, fmt.Errorf("unknown upload policy %q", name)
}
