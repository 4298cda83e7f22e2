package admission

import (
	"net/mail"
	"strings"

	"github.com/tclass/web/core"
)

type mailNotifier struct {
	mailSvc core.EmailService
	logger  core.Logger
}

var _ Notifier = (*mailNotifier)(nil)

// NewMailNotifier emails applicants a confirmation of their submission.
func NewMailNotifier(mailSvc core.EmailService, logger core.Logger) Notifier {
	return &mailNotifier{mailSvc: mailSvc, logger: logger}
}

type applicationReceivedData struct {
	Name      string
	Form      string
	Reference string
}

func (n *mailNotifier) ApplicationReceived(v Variant, f Form, r Receipt) {
	addr, err := mail.ParseAddress(strings.TrimSpace(f.EmailAddress))
	if err != nil {
		n.logger.Warn("applicant email is not deliverable", err)
		return
	}
	name := f.FullName()
	if name == "" {
		name = "applicant"
	}
	addr.Name = name
	n.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{*addr},
		Subject:      "Application received",
		TemplateName: "application_received",
		TemplateData: applicationReceivedData{Name: name, Form: string(v), Reference: r.Reference},
	})
}
