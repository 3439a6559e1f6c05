package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whrealtors/realty-web/internal/leads"
	"github.com/whrealtors/realty-web/pkg/logging"
)

type mockEmailSender struct {
	sent   []EmailMessage
	failOn string
}

func (m *mockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if m.failOn != "" && msg.To == m.failOn {
		return errors.New("mock email error")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func sunriseLead() *leads.Lead {
	return &leads.Lead{
		ID:        42,
		Name:      "Jane <Smith>",
		Email:     "jane@example.com",
		ProjectID: "sunrise-towers",
		CreatedAt: time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC),
	}
}

func TestNewLeadNotifier_NilWithoutRecipientsOrSender(t *testing.T) {
	assert.Nil(t, NewLeadNotifier(&mockEmailSender{}, []string{" ", ""}, nil))
	assert.Nil(t, NewLeadNotifier(nil, []string{"ops@whrealtors.in"}, nil))
}

func TestLeadNotifier_SendsToEveryRecipient(t *testing.T) {
	sender := &mockEmailSender{}
	ist := time.FixedZone("IST", 19800)
	n := NewLeadNotifier(sender, []string{"ops@whrealtors.in", " sales@whrealtors.in "}, logging.New("error"),
		WithProjectTitles(func(id string) (string, bool) {
			if id == "sunrise-towers" {
				return "Sunrise Towers", true
			}
			return "", false
		}),
		WithLocation(ist),
	)
	require.NotNil(t, n)
	assert.Equal(t, "email", n.Name())

	require.NoError(t, n.LeadCreated(context.Background(), sunriseLead()))
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "ops@whrealtors.in", sender.sent[0].To)
	assert.Equal(t, "sales@whrealtors.in", sender.sent[1].To)

	msg := sender.sent[0]
	assert.Equal(t, "New enquiry: Jane <Smith> (Sunrise Towers)", msg.Subject)
	assert.Equal(t, "jane@example.com", msg.ReplyTo)
	assert.Contains(t, msg.Body, "Phone: not provided")
	assert.Contains(t, msg.Body, "Received: 01 Mar 2026 09:30 IST")
	assert.Contains(t, msg.HTML, "Jane &lt;Smith&gt;")
	assert.NotContains(t, msg.HTML, "<Smith>")
}

func TestLeadNotifier_UnknownProjectUsesID(t *testing.T) {
	sender := &mockEmailSender{}
	n := NewLeadNotifier(sender, []string{"ops@whrealtors.in"}, logging.New("error"))

	lead := sunriseLead()
	lead.ProjectID = "moonrise-towers"
	require.NoError(t, n.LeadCreated(context.Background(), lead))
	assert.Contains(t, sender.sent[0].Subject, "(moonrise-towers)")

	lead.ProjectID = ""
	require.NoError(t, n.LeadCreated(context.Background(), lead))
	assert.Contains(t, sender.sent[1].Subject, "(General enquiry)")
}

func TestLeadNotifier_JoinsFailures(t *testing.T) {
	sender := &mockEmailSender{failOn: "ops@whrealtors.in"}
	n := NewLeadNotifier(sender, []string{"ops@whrealtors.in", "sales@whrealtors.in"}, logging.New("error"))

	err := n.LeadCreated(context.Background(), sunriseLead())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send to ops@whrealtors.in")
	assert.Len(t, sender.sent, 1, "remaining recipients still get the email")
}
