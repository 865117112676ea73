package archive

// Purpose distinguishes the archives a distribution publishes into.
type Purpose string

const (
	PurposePrimary Purpose = "primary"
	PurposePartner Purpose = "partner"
	PurposePPA     Purpose = "ppa"
)

// ComponentPartner is the component name that reroutes an upload to the
// distribution's partner archive.
const ComponentPartner = "partner"

// Archive is a publication target: the distribution's primary archive, its
// partner archive, or a person/team-owned PPA.
type Archive struct {
	ID           int64
	Distribution string
	Name         string
	Purpose      Purpose

	// Owner is the person or team owning a PPA; empty for the primary and
	// partner archives, which are owned by the distribution itself.
	Owner string
}

// IsPPA reports whether the archive is a personal archive, where upload
// rights come from ownership rather than per-component ACLs.
func (a *Archive) IsPPA() bool {
	return a.Purpose == PurposePPA
}
