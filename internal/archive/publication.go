package archive

import "time"

// PublicationStatus is the lifecycle state of a publication record.
type PublicationStatus string

const (
	PublicationPending    PublicationStatus = "pending"
	PublicationPublished  PublicationStatus = "published"
	PublicationSuperseded PublicationStatus = "superseded"
	PublicationDeleted    PublicationStatus = "deleted"
)

// SourcePublication records one published (or pending) source package
// release in a series pocket. It is what ancestry lookups return.
type SourcePublication struct {
	Package   string
	Version   string
	Component string
	Section   string
	Pocket    Pocket
	Status    PublicationStatus
	CreatedAt time.Time
}

// BinaryPublication records one published (or pending) binary package
// release on a concrete architecture.
type BinaryPublication struct {
	Package      string
	Version      string
	Component    string
	Section      string
	Priority     string
	Architecture string
	Pocket       Pocket
	Status       PublicationStatus
	CreatedAt    time.Time
}
