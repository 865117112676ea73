package changes

import (
	"bufio"
	"bytes"
	"fmt"
	"net/mail"
	"path/filepath"
	"strconv"
	"strings"

	"pault.ag/go/debian/control"
)

// Manifest holds the control data of one .changes upload: the declared
// architectures, the ordered file list and the addresses. It is built once
// by Parse and consumed read-only by the acceptance engine, except for the
// override fields on its files.
type Manifest struct {
	// Path locates the .changes file itself; referenced payloads are
	// expected beside it.
	Path string

	Source     string
	Version    string
	Suite      string
	Urgency    string
	Maintainer string
	ChangedBy  string

	// Architectures is the declared architecture list in manifest order.
	// It may contain the pseudo-tags "source" and "all".
	Architectures []string

	// Files preserves the Files stanza declaration order.
	Files []*UploadedFile

	// DSC is the single source control file, nil for sourceless uploads.
	DSC *UploadedFile

	// Signer is nil for unsigned uploads.
	Signer *Signer

	fileProblems []Diagnostic
}

// Parse builds a Manifest from the plaintext control data of a .changes
// file. Signature handling happens before this; pass the clearsign payload
// (or the raw bytes for unsigned uploads).
//
// Malformed entries in the Files stanza do not fail the parse: they are
// recorded and later surfaced by ProcessFiles, so that the engine can
// report them alongside everything else it finds.
func Parse(plaintext []byte, path string) (*Manifest, error) {
	c, err := control.ParseChanges(bufio.NewReader(bytes.NewReader(plaintext)), path)
	if err != nil {
		return nil, fmt.Errorf("parse changes: %w", err)
	}

	m := &Manifest{
		Path:       path,
		Source:     c.Source,
		Version:    c.Version.String(),
		Suite:      c.Distribution,
		Urgency:    c.Urgency,
		Maintainer: c.Maintainer,
		ChangedBy:  c.ChangedBy,
	}
	m.Architectures = strings.Fields(c.Values["Architecture"])

	sha256s := make(map[string]string, len(c.ChecksumsSha256))
	for _, h := range c.ChecksumsSha256 {
		sha256s[h.Filename] = h.Hash
	}

	dir := filepath.Dir(path)
	for _, line := range strings.Split(c.Values["Files"], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		f, err := parseFilesLine(line, dir)
		if err != nil {
			m.fileProblems = append(m.fileProblems,
				Rejectionf("Unable to identify file %s in the changes: %v", line, err))
			continue
		}
		f.SHA256 = sha256s[f.Filename]
		m.Files = append(m.Files, f)
		if f.IsDSC() && m.DSC == nil {
			m.DSC = f
		}
	}

	return m, nil
}

// parseFilesLine parses one "md5 size section priority filename" entry.
func parseFilesLine(line, dir string) (*UploadedFile, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return nil, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	size, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad size %q", fields[1])
	}

	component, section := splitComponentAndSection(fields[2])

	f := &UploadedFile{
		Filename:      fields[4],
		Size:          size,
		MD5:           fields[0],
		ComponentName: component,
		SectionName:   section,
		PriorityName:  fields[3],
		New:           true,
		dir:           dir,
	}
	if err := classifyFile(f, fields[2]); err != nil {
		return nil, err
	}
	return f, nil
}

// splitComponentAndSection splits a "component/section" value; a bare
// section implies the main component.
func splitComponentAndSection(s string) (string, string) {
	if i := strings.Index(s, "/"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "main", s
}

// ProcessAddresses checks the address fields the notification layer later
// depends on. A manifest with no parseable contact address cannot be
// processed further, so these come back as rejections.
func (m *Manifest) ProcessAddresses() []Diagnostic {
	var diags []Diagnostic

	if m.Maintainer == "" {
		diags = append(diags, Rejectionf("Missing Maintainer field in the changes file."))
	} else if _, err := mail.ParseAddress(m.Maintainer); err != nil {
		diags = append(diags, Rejectionf("Unable to parse Maintainer address %q: %v", m.Maintainer, err))
	}

	switch {
	case m.ChangedBy == "":
		// dpkg-genchanges always emits Changed-By; treat its absence as a
		// defect worth flagging but fall back to Maintainer for notices.
		diags = append(diags, Warningf("Missing Changed-By field in the changes file."))
	default:
		if _, err := mail.ParseAddress(m.ChangedBy); err != nil {
			diags = append(diags, Rejectionf("Unable to parse Changed-By address %q: %v", m.ChangedBy, err))
		}
	}

	return diags
}

// ProcessFiles surfaces the problems found in the Files stanza. An upload
// carrying no identifiable files at all is unprocessable.
func (m *Manifest) ProcessFiles() []Diagnostic {
	diags := append([]Diagnostic(nil), m.fileProblems...)
	if len(m.Files) == 0 {
		diags = append(diags, Rejectionf("No files found in the changes."))
	}
	return diags
}

// SourceFiles returns the source variant files in declaration order.
func (m *Manifest) SourceFiles() []*UploadedFile { return m.filesOfKind(KindSource) }

// BinaryFiles returns the binary variant files in declaration order.
func (m *Manifest) BinaryFiles() []*UploadedFile { return m.filesOfKind(KindBinary) }

// CustomFiles returns the custom variant files in declaration order.
func (m *Manifest) CustomFiles() []*UploadedFile { return m.filesOfKind(KindCustom) }

func (m *Manifest) filesOfKind(k Kind) []*UploadedFile {
	var out []*UploadedFile
	for _, f := range m.Files {
		if f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}

// ContactAddress is the address rejection and acceptance notices go to:
// Changed-By when present, else Maintainer.
func (m *Manifest) ContactAddress() string {
	if m.ChangedBy != "" {
		return m.ChangedBy
	}
	return m.Maintainer
}
