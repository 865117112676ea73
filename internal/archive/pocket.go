// Package archive defines the domain vocabulary shared by the upload
// pipeline, the repositories and the services: distributions, series,
// pockets, archives, publication records and upload-queue items.
package archive

import "strings"

// Pocket is a named sub-channel of a distribution series with its own
// publication and lifecycle rules.
type Pocket string

const (
	PocketRelease   Pocket = "Release"
	PocketSecurity  Pocket = "Security"
	PocketUpdates   Pocket = "Updates"
	PocketProposed  Pocket = "Proposed"
	PocketBackports Pocket = "Backports"
)

// Suffix returns the suite-name suffix for the pocket. The Release pocket
// has no suffix: uploads name it by the bare series name.
func (p Pocket) Suffix() string {
	if p == PocketRelease {
		return ""
	}
	return "-" + strings.ToLower(string(p))
}

// ParseSuite splits a suite name like "noble-security" into the series name
// and the pocket. A name without a recognized pocket suffix targets the
// Release pocket.
func ParseSuite(suite string) (string, Pocket) {
	if i := strings.LastIndex(suite, "-"); i > 0 {
		switch suffix := suite[i+1:]; suffix {
		case "security":
			return suite[:i], PocketSecurity
		case "updates":
			return suite[:i], PocketUpdates
		case "proposed":
			return suite[:i], PocketProposed
		case "backports":
			return suite[:i], PocketBackports
		}
	}
	return suite, PocketRelease
}
