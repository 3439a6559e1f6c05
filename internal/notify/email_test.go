package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whrealtors/realty-web/pkg/logging"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "sales@whrealtors.in"}, nil)
	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "sales@whrealtors.in"}, nil)
	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "WH Realtors" {
		t.Errorf("expected default from name 'WH Realtors', got %q", sender.fromName)
	}
}

func TestSendGridSender_Send(t *testing.T) {
	var got struct {
		auth    string
		payload map[string]any
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		got.auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got.payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "sg-key",
		FromEmail: "sales@whrealtors.in",
		Host:      srv.URL,
	}, logging.New("error"))
	err := sender.Send(context.Background(), EmailMessage{
		To:      "ops@whrealtors.in",
		ReplyTo: "jane@example.com",
		Subject: "New enquiry",
		Body:    "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer sg-key", got.auth)
	assert.Equal(t, "New enquiry", got.payload["subject"])
	replyTo, _ := got.payload["reply_to"].(map[string]any)
	assert.Equal(t, "jane@example.com", replyTo["email"])
}

func TestSendGridSender_SendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	sender := NewSendGridSender(SendGridConfig{APIKey: "bad", FromEmail: "sales@whrealtors.in", Host: srv.URL}, logging.New("error"))
	err := sender.Send(context.Background(), EmailMessage{To: "ops@whrealtors.in", Subject: "x", Body: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	var sender *SendGridSender
	err := sender.Send(context.Background(), EmailMessage{To: "ops@whrealtors.in"})
	if err == nil {
		t.Error("expected error when sender is nil")
	}
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	api := &fakeSES{}
	sender := NewSESSender(api, SESConfig{FromEmail: "sales@whrealtors.in"}, logging.New("error"))

	err := sender.Send(context.Background(), EmailMessage{
		To:      "ops@whrealtors.in",
		ReplyTo: "jane@example.com",
		Subject: "New enquiry",
		Body:    "text",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "WH Realtors <sales@whrealtors.in>", aws.ToString(api.input.FromEmailAddress))
	assert.Equal(t, []string{"ops@whrealtors.in"}, api.input.Destination.ToAddresses)
	assert.Equal(t, []string{"jane@example.com"}, api.input.ReplyToAddresses)
	assert.Equal(t, "text", aws.ToString(api.input.Content.Simple.Body.Text.Data))
	assert.Equal(t, "<p>html</p>", aws.ToString(api.input.Content.Simple.Body.Html.Data))
}

func TestSESSender_SendError(t *testing.T) {
	sender := NewSESSender(&fakeSES{err: errors.New("throttled")}, SESConfig{FromEmail: "a@b.in"}, logging.New("error"))
	err := sender.Send(context.Background(), EmailMessage{To: "ops@whrealtors.in", Subject: "x"})
	assert.ErrorContains(t, err, "notify: SES send failed")
}

func TestNewSESSender_NilClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{}, nil))
}

func TestStubEmailSender_Send(t *testing.T) {
	sender := NewStubEmailSender(nil)
	err := sender.Send(context.Background(), EmailMessage{To: "ops@whrealtors.in", Subject: "Test Subject"})
	if err != nil {
		t.Errorf("stub sender should not return error, got: %v", err)
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	assert.Equal(t, "ok", truncate("ok", 200))
	assert.Equal(t, "Hi ...", truncate("Hi ₹1500 per sq yard", 4))

	body := strings.Repeat("न", 100)
	got := truncate(body, 200)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("न", 66)+"...", got)
}
