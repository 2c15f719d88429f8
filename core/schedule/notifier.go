package schedule

import (
	"net/mail"

	"github.com/trezcool/ccourse/core"
)

// Notifier is told about schedule changes after they are persisted.
type Notifier interface {
	SessionScheduled(cs ClassSession, rescheduled bool)
	SessionCancelled(cs ClassSession)
}

type emailNotifier struct {
	mailSvc    core.EmailService
	recipients []mail.Address
}

var _ Notifier = (*emailNotifier)(nil)

// NewEmailNotifier mails schedule changes to recipients. Without recipients it sends nothing.
func NewEmailNotifier(mailSvc core.EmailService, recipients ...mail.Address) Notifier {
	return &emailNotifier{mailSvc: mailSvc, recipients: recipients}
}

type sessionMailData struct {
	Action      string
	Day         string
	Date        string
	StartTime   string
	EndTime     string
	Mode        string
	MeetingLink string
}

func newSessionMailData(cs ClassSession, action string) sessionMailData {
	return sessionMailData{
		Action:      action,
		Day:         cs.Day,
		Date:        cs.Date.String(),
		StartTime:   cs.StartTime.String(),
		EndTime:     cs.EndTime.String(),
		Mode:        string(cs.Mode),
		MeetingLink: cs.MeetingLink.String,
	}
}

func (n *emailNotifier) SessionScheduled(cs ClassSession, rescheduled bool) {
	if len(n.recipients) == 0 {
		return
	}
	action, subject := "scheduled", "New class scheduled"
	if rescheduled {
		action, subject = "rescheduled", "Class rescheduled"
	}
	n.mailSvc.SendMessages(&core.EmailMessage{
		To:           n.recipients,
		Subject:      subject + ": " + cs.Day + " " + cs.Date.String(),
		TemplateName: "class_scheduled",
		TemplateData: newSessionMailData(cs, action),
	})
}

func (n *emailNotifier) SessionCancelled(cs ClassSession) {
	if len(n.recipients) == 0 {
		return
	}
	n.mailSvc.SendMessages(&core.EmailMessage{
		To:           n.recipients,
		Subject:      "Class cancelled: " + cs.Day + " " + cs.Date.String(),
		TemplateName: "class_cancelled",
		TemplateData: newSessionMailData(cs, "cancelled"),
	})
}
