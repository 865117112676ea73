package changes

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dpetrovs/archivegate/internal/filex"
)

// Kind is the closed set of file variants an upload can carry.
type Kind int

const (
	KindSource Kind = iota
	KindBinary
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindBinary:
		return "binary"
	case KindCustom:
		return "custom"
	}
	return "unknown"
}

// ArchIndependent is the architecture tag of binaries built once and
// published everywhere.
const ArchIndependent = "all"

// UploadedFile is one file referenced by the manifest's Files stanza.
//
// ComponentName, SectionName and PriorityName start as declared by the
// uploader and are overridden from ancestry by the pipeline. New starts
// true and is only ever cleared after a successful ancestry lookup.
type UploadedFile struct {
	Filename string
	Size     int64
	MD5      string
	// SHA256 comes from the Checksums-Sha256 stanza; empty when the
	// uploading tool did not emit one.
	SHA256 string

	Kind Kind
	// CustomFormat is the raw-* section tag of a custom file, e.g.
	// "raw-translations"; empty for source and binary files.
	CustomFormat string

	Package      string
	Version      string
	Architecture string

	ComponentName string
	SectionName   string
	PriorityName  string
	New           bool

	dir string
}

// Path returns the on-disk location of the file's payload.
func (f *UploadedFile) Path() string {
	return filepath.Join(f.dir, f.Filename)
}

// Filenames in an upload may end up in shell commands and filesystem paths
// downstream, so anything outside this set is refused outright.
var taintFreeRE = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9+._~-]*$`)

// CheckName rejects filenames with characters unsafe for archive paths.
func (f *UploadedFile) CheckName() []Diagnostic {
	if !taintFreeRE.MatchString(f.Filename) {
		return []Diagnostic{Rejectionf(
			"Tainted filename detected: %s", f.Filename)}
	}
	return nil
}

// Verify compares the payload on disk against the declared size and MD5
// digest. A missing payload, a size mismatch and a digest mismatch are all
// rejections; an unreadable payload is reported as a rejection too, since
// nothing further can be checked.
func (f *UploadedFile) Verify() []Diagnostic {
	path := f.Path()

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return []Diagnostic{Rejectionf(
			"Unable to find %s in upload or distribution.", f.Filename)}
	}
	if err != nil {
		return []Diagnostic{Rejectionf("Unable to read %s: %v", f.Filename, err)}
	}

	var diags []Diagnostic
	if info.Size() != f.Size {
		diags = append(diags, Rejectionf(
			"File size mismatch for %s: listed %d, actual %d",
			f.Filename, f.Size, info.Size()))
	}

	sum, err := filex.MD5Sum(path)
	if err != nil {
		diags = append(diags, Rejectionf("Unable to read %s: %v", f.Filename, err))
		return diags
	}
	if !strings.EqualFold(sum, f.MD5) {
		diags = append(diags, Rejectionf(
			"File %s mentioned in the changes has a checksum mismatch. %s != %s",
			f.Filename, sum, f.MD5))
	}

	if f.SHA256 != "" {
		sum, err := filex.SHA256Sum(path)
		if err != nil {
			diags = append(diags, Rejectionf("Unable to read %s: %v", f.Filename, err))
			return diags
		}
		if !strings.EqualFold(sum, f.SHA256) {
			diags = append(diags, Rejectionf(
				"File %s mentioned in the changes has a SHA256 checksum mismatch. %s != %s",
				f.Filename, sum, f.SHA256))
		}
	}
	return diags
}

// IsDSC reports whether the file is a source control (.dsc) file.
func (f *UploadedFile) IsDSC() bool {
	return f.Kind == KindSource && strings.HasSuffix(f.Filename, ".dsc")
}

// IsDiff reports whether the file is a source diff.
func (f *UploadedFile) IsDiff() bool {
	return f.Kind == KindSource && strings.HasSuffix(f.Filename, ".diff.gz")
}

// IsOrig reports whether the file is a pristine upstream tarball.
func (f *UploadedFile) IsOrig() bool {
	if f.Kind != KindSource {
		return false
	}
	for _, suffix := range tarSuffixes {
		if strings.HasSuffix(f.Filename, ".orig.tar"+suffix) {
			return true
		}
	}
	return false
}

// IsNativeTar reports whether the file is a native source tarball (a plain
// tarball that is neither an orig nor a debian tarball).
func (f *UploadedFile) IsNativeTar() bool {
	if f.Kind != KindSource || f.IsOrig() {
		return false
	}
	for _, suffix := range tarSuffixes {
		if strings.HasSuffix(f.Filename, ".tar"+suffix) &&
			!strings.HasSuffix(f.Filename, ".debian.tar"+suffix) {
			return true
		}
	}
	return false
}

var tarSuffixes = []string{".gz", ".bz2", ".xz"}

var (
	// name_version_arch.deb (also .udeb and .ddeb)
	debNameRE = regexp.MustCompile(`^([^_]+)_([^_]+)_([^_.]+)\.(u|d)?deb$`)
	// name_version.suffix for source files
	sourceNameRE = regexp.MustCompile(`^([^_]+)_([^_]+?)\.(dsc|diff\.gz|tar\..+|orig\.tar\..+|debian\.tar\..+)$`)
)

// classifyFile derives the variant and identity fields from the filename
// and the section column of the Files stanza. Custom payloads are flagged
// by a raw-* section the way dist-upgrader and translation tarballs are.
func classifyFile(f *UploadedFile, section string) error {
	if strings.HasPrefix(section, "raw-") || section == "byhand" {
		f.Kind = KindCustom
		f.CustomFormat = section
		return nil
	}

	if m := debNameRE.FindStringSubmatch(f.Filename); m != nil {
		f.Kind = KindBinary
		f.Package = m[1]
		f.Version = m[2]
		f.Architecture = m[3]
		return nil
	}

	if m := sourceNameRE.FindStringSubmatch(f.Filename); m != nil {
		f.Kind = KindSource
		f.Package = m[1]
		f.Version = m[2]
		return nil
	}

	return errors.New("unrecognized file type")
}
