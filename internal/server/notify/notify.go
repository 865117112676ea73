// Package notify turns acceptance decisions into notices for uploaders
// and, where the policy wants it, a public announcement. Rendering is
// deliberately plain text: one subject, one body, no templating.
package notify

import (
	"context"
	"fmt"

	"github.com/dpetrovs/archivegate/internal/logging"
	"github.com/dpetrovs/archivegate/internal/upload"
)

// Mailer delivers one message. Implementations must not mutate upload
// state; a failed delivery is logged by the caller, never retried here.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes notices to the structured log instead of delivering
// them, for development setups and tests.
type LogMailer struct {
	Logger logging.Logger
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.Logger.Info(ctx, "notice", "to", to, "subject", subject, "body", body)
	return nil
}

// Notifier implements upload.Notifier over a Mailer.
type Notifier struct {
	mailer Mailer
	sender string
	logger logging.Logger
}

func New(mailer Mailer, sender string, logger logging.Logger) *Notifier {
	return &Notifier{
		mailer: mailer,
		sender: sender,
		logger: logger.With("component", "notify"),
	}
}

// Notify dispatches one notice about the upload. Announcements with no
// announce list configured are dropped silently.
func (n *Notifier) Notify(ctx context.Context, e *upload.Engine, kind upload.NoticeKind) error {
	m := e.Manifest()
	name := fmt.Sprintf("%s_%s", m.Source, m.Version)

	to := m.ContactAddress()
	var subject, body string

	switch kind {
	case upload.NoticeNew:
		subject = fmt.Sprintf("%s is NEW", name)
		body = fmt.Sprintf(
			"%s\n\nYour upload introduces a package unknown to %s and is being "+
				"held for review. It will be processed by an archive administrator.\n",
			name, m.Suite)
	case upload.NoticeUnapproved:
		subject = fmt.Sprintf("%s is waiting for approval", name)
		body = fmt.Sprintf(
			"%s\n\nYour upload to %s has been validated and is waiting for "+
				"approval before it is accepted.\n", name, m.Suite)
	case upload.NoticeAccepted:
		subject = fmt.Sprintf("%s ACCEPTED", name)
		body = fmt.Sprintf("%s\n\nAccepted into %s.\n", name, m.Suite)
	case upload.NoticeAnnouncement:
		to = e.Policy().AnnounceList()
		if to == "" {
			return nil
		}
		subject = fmt.Sprintf("%s (Accepted)", name)
		body = fmt.Sprintf("%s has been accepted into %s.\n", name, m.Suite)
	case upload.NoticeRejected:
		subject = fmt.Sprintf("%s REJECTED", name)
		body = fmt.Sprintf("Rejected:\n%s\n", e.RejectionMessage())
	default:
		return fmt.Errorf("unknown notice kind %d", kind)
	}

	if w := e.WarningMessage(); w != "" && kind != upload.NoticeAnnouncement {
		body += "\n" + w + "\n"
	}

	if to == "" {
		n.logger.Warn(ctx, "no contact address for notice", "subject", subject)
		return nil
	}
	return n.mailer.Send(ctx, to, subject, body)
}
