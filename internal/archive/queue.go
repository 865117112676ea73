package archive

import "time"

// QueueStatus is the state of an upload in the acceptance queue.
type QueueStatus string

const (
	// QueueNew holds uploads introducing a package the target has never
	// seen; an operator assigns the component before acceptance.
	QueueNew QueueStatus = "new"
	// QueueUnapproved holds uploads the policy withheld from auto-approval.
	QueueUnapproved QueueStatus = "unapproved"
	QueueAccepted   QueueStatus = "accepted"
	QueueDone       QueueStatus = "done"
	QueueRejected   QueueStatus = "rejected"
)

// QueueItem is the persistent record of one processed upload.
type QueueItem struct {
	ID           string
	Distribution string
	Series       string
	Pocket       Pocket
	ArchiveID    int64

	Package     string
	Version     string
	ChangesFile string
	Signer      string

	Status           QueueStatus
	RejectionMessage string
	CreatedAt        time.Time
}
