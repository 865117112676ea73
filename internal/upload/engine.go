// Package upload implements the acceptance pipeline for Debian-style
// package uploads: consistency checks between the declared architectures
// and the files actually present, ancestry lookup with override
// application, signer ACL verification, partner-archive rerouting, and the
// final accept/reject decision with its notification plan.
//
// Problems accumulate: a stage never aborts the run on the first defect,
// so a rejection notice carries everything wrong with the upload at once.
// The only exception is a manifest whose addresses or file list are
// unprocessable, where the remaining checks would be meaningless.
package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pault.ag/go/debian/version"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/changes"
	"github.com/dpetrovs/archivegate/internal/common"
	"github.com/dpetrovs/archivegate/internal/logging"
)

// Engine drives the validation of one upload. Construct one per upload
// attempt, call Process exactly once, then Accept or RejectUpload; the
// engine is not reused.
type Engine struct {
	logger   logging.Logger
	manifest *changes.Manifest
	policy   Policy
	stores   Stores

	// target is the archive the upload was addressed to; overridden is set
	// instead when the partner rule reroutes it.
	target     *archive.Archive
	overridden *archive.Archive

	series *archive.DistroSeries
	pocket archive.Pocket

	rejections []string
	warnings   []string

	sourceful bool
	binaryful bool
	archindep bool
	archdep   bool
	native    bool
	hasorig   bool

	processed bool
}

// New builds an engine for one upload targeted at the given archive.
func New(logger logging.Logger, m *changes.Manifest, p Policy, target *archive.Archive, stores Stores) *Engine {
	return &Engine{
		logger:   logger.With("component", "upload-engine", "changes", m.Path),
		manifest: m,
		policy:   p,
		stores:   stores,
		target:   target,
		pocket:   archive.PocketRelease,
	}
}

// Reject records one blocking defect. The decision outcome follows the
// rejection list directly, so a single call here makes the upload
// unacceptable.
func (e *Engine) Reject(msg string) {
	e.rejections = append(e.rejections, msg)
}

// Warn records a non-blocking defect for the acceptance notice.
func (e *Engine) Warn(msg string) {
	e.warnings = append(e.warnings, msg)
}

// IsRejected derives the outcome from the accumulated rejections; it is
// never cached independently of the list.
func (e *Engine) IsRejected() bool {
	return len(e.rejections) > 0
}

// RejectionMessage joins every rejection reason, one per line.
func (e *Engine) RejectionMessage() string {
	return strings.Join(e.rejections, "\n")
}

// WarningMessage returns the headered warning block, or "" when the run
// produced no warnings.
func (e *Engine) WarningMessage() string {
	if len(e.warnings) == 0 {
		return ""
	}
	return "Upload Warnings:\n" + strings.Join(e.warnings, "\n")
}

// fold merges a validation step's diagnostics into the engine's
// accumulators. A severity outside the closed set is a contract violation
// by the collaborator, not an upload defect.
func (e *Engine) fold(diags []changes.Diagnostic) {
	for _, d := range diags {
		switch d.Severity {
		case changes.SeverityRejection:
			e.Reject(d.Message)
		case changes.SeverityWarning:
			e.Warn(d.Message)
		default:
			panic(fmt.Sprintf("unknown diagnostic severity %d", d.Severity))
		}
	}
}

func (e *Engine) Manifest() *changes.Manifest   { return e.manifest }
func (e *Engine) Policy() Policy                { return e.policy }
func (e *Engine) Series() *archive.DistroSeries { return e.series }
func (e *Engine) Pocket() archive.Pocket        { return e.pocket }
func (e *Engine) Sourceful() bool               { return e.sourceful }
func (e *Engine) Binaryful() bool               { return e.binaryful }
func (e *Engine) ArchIndep() bool               { return e.archindep }
func (e *Engine) ArchDep() bool                 { return e.archdep }
func (e *Engine) Native() bool                  { return e.native }
func (e *Engine) HasOrig() bool                 { return e.hasorig }

// TargetArchive is the archive persistence should use: the partner archive
// when the partner rule fired, the addressed archive otherwise.
func (e *Engine) TargetArchive() *archive.Archive {
	if e.overridden != nil {
		return e.overridden
	}
	return e.target
}

// HasNewFiles reports whether any file survived ancestry lookup as NEW.
func (e *Engine) HasNewFiles() bool {
	for _, f := range e.manifest.Files {
		if f.Kind != changes.KindCustom && f.New {
			return true
		}
	}
	return false
}

// singleCustom reports whether the upload is exactly one custom file, the
// shape that bypasses sourceful/binaryful policy, ancestry and ACLs.
func (e *Engine) singleCustom() bool {
	return len(e.manifest.Files) == 1 && e.manifest.Files[0].Kind == changes.KindCustom
}

// Process runs every validation stage in order and accumulates the
// results. Domain defects land in the rejection and warning lists; the
// returned error is reserved for infrastructure failures (a store that
// could not be queried), after which the upload is undecided and may be
// retried.
func (e *Engine) Process(ctx context.Context) error {
	if e.processed {
		panic("upload engine processed twice")
	}
	e.processed = true

	// Resolve the target series and pocket from the declared suite. An
	// unknown suite is a rejection, not an abort: the remaining checks
	// still run so the notice is as complete as possible.
	series, pocket, err := e.stores.Releases.LookupSuite(ctx, e.target.Distribution, e.manifest.Suite)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		e.Reject(fmt.Sprintf("Unable to find distroseries: %s", e.manifest.Suite))
	case err != nil:
		return fmt.Errorf("suite lookup: %w", err)
	default:
		e.series = series
		e.pocket = pocket
	}

	// Address and file-list processing gate everything else: over a
	// manifest this malformed no later check is meaningful.
	addrDiags := e.manifest.ProcessAddresses()
	fileDiags := e.manifest.ProcessFiles()
	e.fold(addrDiags)
	e.fold(fileDiags)
	if changes.HasRejection(addrDiags) || changes.HasRejection(fileDiags) {
		e.logger.Info(ctx, "upload unprocessable, skipping remaining checks")
		return nil
	}

	for _, f := range e.manifest.Files {
		e.fold(f.CheckName())
		e.fold(f.Verify())
	}

	flags, diags := checkOverallConsistency(e.manifest)
	e.fold(diags)
	e.sourceful = flags.sourceful
	e.binaryful = flags.binaryful
	e.archindep = flags.archindep
	e.archdep = flags.archdep

	if e.sourceful {
		native, hasorig, diags := checkSourcefulFiles(e.manifest)
		e.fold(diags)
		e.native = native
		e.hasorig = hasorig
	}
	if e.binaryful {
		e.fold(checkBinaryfulFiles(e.manifest))
	}

	e.fold(e.verifySemantics())

	if !e.singleCustom() {
		e.checkUploadShape()
		if err := e.resolveAncestryAndOverrides(ctx); err != nil {
			return err
		}
		if err := e.verifyACL(ctx); err != nil {
			return err
		}
	}

	if err := e.overrideArchive(ctx); err != nil {
		return err
	}

	e.checkPocketLifecycle()

	e.policy.CheckUpload(ctx, e)

	return nil
}

// checkUploadShape enforces the pathway's capability flags.
func (e *Engine) checkUploadShape() {
	if e.sourceful && !e.policy.CanUploadSource() {
		e.Reject("Upload rejected because it contains source packages. " +
			"The " + e.policy.Name() + " policy does not permit source uploads.")
	}
	if e.binaryful && !e.policy.CanUploadBinaries() {
		e.Reject("Upload rejected because it contains binaries. " +
			"The " + e.policy.Name() + " policy does not permit binary uploads.")
	}
	if e.sourceful && e.binaryful && !e.policy.CanUploadMixed() {
		e.Reject("Upload rejected because it contains a mix of source and binaries. " +
			"The " + e.policy.Name() + " policy does not permit mixed uploads.")
	}
	if e.sourceful && e.manifest.DSC == nil {
		e.Reject("Unable to find the DSC file in the source upload.")
	}
}

// checkPocketLifecycle verifies the series still takes direct uploads to
// the requested pocket.
func (e *Engine) checkPocketLifecycle() {
	if e.series == nil {
		return
	}
	if e.TargetArchive().IsPPA() {
		if e.pocket != archive.PocketRelease {
			e.Reject("PPA uploads must be for the RELEASE pocket.")
		}
		return
	}
	if !e.series.CanUploadToPocket(e.pocket) {
		e.Reject(fmt.Sprintf(
			"Not permitted to upload to the %s pocket in a series in the '%s' state.",
			strings.ToUpper(string(e.pocket)), e.series.Status))
	}
}

// verifySemantics cross-checks the manifest's declared identity against
// the files carrying it.
func (e *Engine) verifySemantics() []changes.Diagnostic {
	var diags []changes.Diagnostic

	declared, err := version.Parse(e.manifest.Version)
	if err != nil {
		diags = append(diags, changes.Rejectionf(
			"Unable to parse the Version field %q: %v", e.manifest.Version, err))
		return diags
	}
	// Filenames never carry the epoch, so compare against the epochless
	// rendering of the declared version.
	bare := declared
	bare.Epoch = 0

	for _, f := range e.manifest.Files {
		switch f.Kind {
		case changes.KindSource:
			want := bare.String()
			if f.IsOrig() {
				// Orig tarballs carry only the upstream version in their
				// name, never the Debian revision.
				want = bare.Version
			}
			if f.Version != want {
				diags = append(diags, changes.Rejectionf(
					"%s: version %q does not match the changes file version %q.",
					f.Filename, f.Version, e.manifest.Version))
			}
		case changes.KindBinary:
			// Binaries built from the source may legitimately carry a
			// binNMU or otherwise diverging version.
			if f.Version != bare.String() {
				diags = append(diags, changes.Warningf(
					"%s: version %q differs from the changes file version %q.",
					f.Filename, f.Version, e.manifest.Version))
			}
		}
	}
	return diags
}

// Result is the terminal outcome of an upload run.
type Result int

const (
	ResultAccepted Result = iota
	ResultRejected
)

// Plan is what acceptance does with a clean upload: which queue state it
// lands in and which notices go out.
type Plan struct {
	Status  archive.QueueStatus
	Notices []NoticeKind
}

// acceptancePlan applies the notification policy table, first match wins.
func (e *Engine) acceptancePlan() Plan {
	// Language-pack style translation sources are accepted silently; the
	// translations machinery picks them up on its own schedule.
	if e.sourceful && e.manifest.DSC != nil && e.manifest.DSC.SectionName == "translations" {
		return Plan{Status: archive.QueueAccepted}
	}
	if e.HasNewFiles() {
		return Plan{Status: archive.QueueNew, Notices: []NoticeKind{NoticeNew}}
	}
	if !e.policy.AutoApprove(e) {
		return Plan{Status: archive.QueueUnapproved, Notices: []NoticeKind{NoticeUnapproved}}
	}
	if e.pocket == archive.PocketBackports {
		return Plan{Status: archive.QueueAccepted, Notices: []NoticeKind{NoticeAccepted}}
	}
	if e.pocket == archive.PocketSecurity && !e.sourceful {
		return Plan{Status: archive.QueueAccepted, Notices: []NoticeKind{NoticeAccepted}}
	}
	return Plan{Status: archive.QueueAccepted, Notices: []NoticeKind{NoticeAccepted, NoticeAnnouncement}}
}

// Accept commits a processed upload and dispatches its notices. It
// re-checks the rejection state defensively, and a commit failure is
// folded into a rejection rather than surfaced: by that point partial
// state may exist and the upload must end in a definite outcome.
func (e *Engine) Accept(ctx context.Context, committer Committer, notifier Notifier) Result {
	if e.IsRejected() {
		return e.RejectUpload(ctx, committer, notifier)
	}

	plan := e.acceptancePlan()
	if err := committer.Commit(ctx, e, plan.Status); err != nil {
		e.logger.Error(ctx, "accept failed, rejecting", "error", err)
		e.Reject(fmt.Sprintf("Exception while accepting: %v", err))
		return e.RejectUpload(ctx, committer, notifier)
	}

	for _, kind := range plan.Notices {
		if err := notifier.Notify(ctx, e, kind); err != nil {
			e.logger.Error(ctx, "notification failed", "notice", kind.String(), "error", err)
		}
	}
	e.logger.Info(ctx, "upload accepted", "status", string(plan.Status))
	return ResultAccepted
}

// RejectUpload records the rejected outcome and dispatches the single
// rejection notice carrying the aggregated reasons.
func (e *Engine) RejectUpload(ctx context.Context, committer Committer, notifier Notifier) Result {
	if err := committer.Commit(ctx, e, archive.QueueRejected); err != nil {
		e.logger.Error(ctx, "recording rejection failed", "error", err)
	}
	if err := notifier.Notify(ctx, e, NoticeRejected); err != nil {
		e.logger.Error(ctx, "rejection notice failed", "error", err)
	}
	e.logger.Info(ctx, "upload rejected", "reasons", len(e.rejections))
	return ResultRejected
}
