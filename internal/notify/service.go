package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/whrealtors/realty-web/internal/leads"
	"github.com/whrealtors/realty-web/pkg/logging"
)

// ProjectTitleFunc resolves a project id to its display title.
type ProjectTitleFunc func(projectID string) (string, bool)

// LeadNotifier emails the sales team when a lead is stored.
type LeadNotifier struct {
	email      EmailSender
	recipients []string
	titles     ProjectTitleFunc
	location   *time.Location
	logger     *logging.Logger
}

// NotifierOption customizes the notifier.
type NotifierOption func(*LeadNotifier)

// WithProjectTitles lets the email name the project instead of its id.
func WithProjectTitles(fn ProjectTitleFunc) NotifierOption {
	return func(n *LeadNotifier) { n.titles = fn }
}

// WithLocation renders timestamps in loc.
func WithLocation(loc *time.Location) NotifierOption {
	return func(n *LeadNotifier) {
		if loc != nil {
			n.location = loc
		}
	}
}

// NewLeadNotifier returns nil when there is no sender or no recipient, so the
// caller can skip registering the hook.
func NewLeadNotifier(email EmailSender, recipients []string, logger *logging.Logger, opts ...NotifierOption) *LeadNotifier {
	var to []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	if email == nil || len(to) == 0 {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	n := &LeadNotifier{
		email:      email,
		recipients: to,
		location:   time.UTC,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *LeadNotifier) Name() string { return "email" }

// LeadCreated sends one email per recipient and joins the failures.
func (n *LeadNotifier) LeadCreated(ctx context.Context, lead *leads.Lead) error {
	msg := n.compose(lead)
	var errs []error
	for _, to := range n.recipients {
		msg.To = to
		if err := n.email.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("notify: send to %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}

func (n *LeadNotifier) compose(lead *leads.Lead) EmailMessage {
	project := n.projectLabel(lead.ProjectID)
	phone := lead.Phone
	if phone == "" {
		phone = "not provided"
	}
	received := lead.CreatedAt.In(n.location).Format("02 Jan 2006 15:04 MST")

	body := fmt.Sprintf(`A new enquiry has come in.

Project: %s
Name: %s
Email: %s
Phone: %s
Received: %s
Lead #%d`, project, lead.Name, lead.Email, phone, received, lead.ID)

	esc := html.EscapeString
	htmlBody := fmt.Sprintf(`<p>A new enquiry has come in.</p>
<table>
<tr><th align="left">Project</th><td>%s</td></tr>
<tr><th align="left">Name</th><td>%s</td></tr>
<tr><th align="left">Email</th><td><a href="mailto:%s">%s</a></td></tr>
<tr><th align="left">Phone</th><td>%s</td></tr>
<tr><th align="left">Received</th><td>%s</td></tr>
</table>
<p>Lead #%d</p>`, esc(project), esc(lead.Name), esc(lead.Email), esc(lead.Email), esc(phone), esc(received), lead.ID)

	return EmailMessage{
		ReplyTo: lead.Email,
		Subject: fmt.Sprintf("New enquiry: %s (%s)", lead.Name, project),
		Body:    body,
		HTML:    htmlBody,
	}
}

func (n *LeadNotifier) projectLabel(id string) string {
	if id == "" {
		return "General enquiry"
	}
	if n.titles != nil {
		if title, ok := n.titles(id); ok && title != "" {
			return title
		}
	}
	return id
}
