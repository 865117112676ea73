package upload

import (
	"strings"

	"github.com/dpetrovs/archivegate/internal/changes"
)

type archFlags struct {
	sourceful bool
	binaryful bool
	archindep bool
	archdep   bool
}

// checkOverallConsistency compares what the Architecture line claims
// against what the file list actually carries. Sourcefulness and
// binaryfulness must agree exactly. For arch-independence the check is
// one-directional: files claiming an architecture the line never declared
// are a defect, while a declared architecture with no files is tolerated,
// because build-farm uploads legitimately deliver one architecture of a
// multi-architecture build at a time.
//
// The declared-architecture reading wins as the source of truth: the
// returned flags are the think_* values, not the file-derived ones.
func checkOverallConsistency(m *changes.Manifest) (archFlags, []changes.Diagnostic) {
	var flags archFlags
	var diags []changes.Diagnostic

	declared := make(map[string]bool, len(m.Architectures))
	for _, a := range m.Architectures {
		declared[a] = true
	}

	working := make(map[string]bool, len(declared))
	for a := range declared {
		working[a] = true
	}
	if working["source"] {
		flags.sourceful = true
		delete(working, "source")
	}
	flags.binaryful = len(working) > 0
	if working[changes.ArchIndependent] {
		flags.archindep = true
		delete(working, changes.ArchIndependent)
	}
	flags.archdep = flags.binaryful && len(working) > 0

	var filesSourceful, filesBinaryful, filesArchindep, filesArchdep bool
	for _, f := range m.Files {
		switch f.Kind {
		case changes.KindSource:
			filesSourceful = true
		case changes.KindCustom:
			// Custom payloads (translations, dist-upgrader tarballs) count
			// as binaryful: they declare a real architecture in the changes
			// file without being .debs.
			filesBinaryful = true
		case changes.KindBinary:
			filesBinaryful = true
			if f.Architecture == changes.ArchIndependent {
				filesArchindep = true
			} else {
				filesArchdep = true
				if !declared[f.Architecture] {
					diags = append(diags, changes.Rejectionf(
						"%s: uploaded for architecture %q which is not in the "+
							"changes file architecture list.", f.Filename, f.Architecture))
				}
			}
		}
	}

	if filesSourceful != flags.sourceful {
		diags = append(diags, changes.Rejectionf(
			"Mismatch in sourcefulness. (arch) %t != (files) %t",
			flags.sourceful, filesSourceful))
	}
	if filesBinaryful != flags.binaryful {
		diags = append(diags, changes.Rejectionf(
			"Mismatch in binaryfulness. (arch) %t != (files) %t",
			flags.binaryful, filesBinaryful))
	}
	if filesArchindep && !flags.archindep {
		diags = append(diags, changes.Rejectionf(
			"One or more files uploaded with architecture 'all' but changes "+
				"file does not list 'all'."))
	}
	if filesArchdep && !flags.archdep {
		diags = append(diags, changes.Rejectionf(
			"One or more files uploaded with specific architectures but "+
				"changes file does not list any."))
	}

	return flags, diags
}

// checkSourcefulFiles validates the minimal file set of a source upload:
// exactly one .dsc, at most one diff, orig tarball and native tarball, and
// at least one of diff or native tarball. Only called on sourceful uploads.
func checkSourcefulFiles(m *changes.Manifest) (native, hasorig bool, diags []changes.Diagnostic) {
	var dsc, diff, orig, tar int
	for _, f := range m.Files {
		switch {
		case f.IsDSC():
			dsc++
		case f.IsDiff():
			diff++
		case f.IsOrig():
			orig++
		case f.IsNativeTar():
			tar++
		}
	}

	if dsc == 0 {
		diags = append(diags, changes.Rejectionf("Sourceful upload without a .dsc"))
	} else if dsc > 1 {
		diags = append(diags, changes.Rejectionf("Changes file lists more than one .dsc"))
	}
	if diff > 1 {
		diags = append(diags, changes.Rejectionf("Changes file lists more than one .diff.gz"))
	}
	if orig > 1 {
		diags = append(diags, changes.Rejectionf("Changes file lists more than one orig.tar.gz"))
	}
	if tar > 1 {
		diags = append(diags, changes.Rejectionf("Changes file lists more than one native tar"))
	}
	if diff == 0 && tar == 0 {
		diags = append(diags, changes.Rejectionf("Sourceful upload without a diff or native tar"))
	}

	return tar > 0, orig > 0, diags
}

// checkBinaryfulFiles enforces the one-build-per-upload rule: besides the
// "source" and "all" slots, at most one concrete architecture may appear
// in the declared list. Translation pseudo-architectures do not count.
func checkBinaryfulFiles(m *changes.Manifest) []changes.Diagnostic {
	count := 0
	declared := make(map[string]bool, len(m.Architectures))
	for _, a := range m.Architectures {
		declared[a] = true
		if strings.HasSuffix(a, "_translations") {
			continue
		}
		count++
	}

	permitted := 1
	if declared["source"] {
		permitted++
	}
	if declared[changes.ArchIndependent] {
		permitted++
	}

	if count > permitted {
		return []changes.Diagnostic{changes.Rejectionf(
			"Policy permits only one build per upload, but the changes file "+
				"lists %d architectures.", count)}
	}
	return nil
}
