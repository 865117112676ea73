// Package changes models a Debian-style upload: the .changes manifest, the
// files it references, and the signer identity recovered from its clearsign
// signature. Validation steps in this package and in the upload engine
// report problems as ordered Diagnostic lists instead of raising, so that a
// single run can collect every defect an upload carries.
package changes

import "fmt"

// Severity splits diagnostics into blocking rejections and informational
// warnings. Warnings never make an upload unacceptable.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityRejection
)

// Diagnostic is one human-readable problem found while validating an upload.
type Diagnostic struct {
	Severity Severity
	Message  string
}

// Rejectionf builds a blocking diagnostic.
func Rejectionf(format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityRejection, Message: fmt.Sprintf(format, args...)}
}

// Warningf builds a non-blocking diagnostic.
func Warningf(format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// HasRejection reports whether any diagnostic in the list is blocking.
func HasRejection(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityRejection {
			return true
		}
	}
	return false
}
