// Package customers is the HTTP client for the customers (lead) backend.
package customers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/whrealtors/realty-web/pkg/logging"
)

var tracer = otel.Tracer("realty.internal.customers")

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Submission is the payload sent for one lead.
type Submission struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	ProjectID string `json:"project_id"`
}

// Receipt is what the backend returned for a stored lead. Only ID is
// interpreted; the raw body is kept for logging.
type Receipt struct {
	Status int
	ID     json.RawMessage
	Raw    json.RawMessage
}

// Client posts lead submissions to the customers collection.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the transport timeout on the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the backend rooted at baseURL
// (e.g. "http://localhost:5000").
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint is the customers collection URL.
func (c *Client) Endpoint() string {
	return c.baseURL + "/customers"
}

// Submit makes exactly one POST attempt. Errors are either *TransportError or
// *ApplicationError.
func (c *Client) Submit(ctx context.Context, sub Submission) (*Receipt, error) {
	ctx, span := tracer.Start(ctx, "customers.submit", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("realty.project_id", sub.ProjectID))

	receipt, err := c.submit(ctx, sub)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", receipt.Status))
	c.logger.Debug("customers: lead accepted", "project_id", sub.ProjectID, "status", receipt.Status, "body", string(receipt.Raw))
	return receipt, nil
}

func (c *Client) submit(ctx context.Context, sub Submission) (*Receipt, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("encode submission: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	var decoded any
	decodeErr := json.Unmarshal(body, &decoded)
	// Only an object body carries an id or an error indicator.
	var envelope struct {
		ID    json.RawMessage `json:"id"`
		Error any             `json:"error"`
	}
	if _, isObject := decoded.(map[string]any); isObject {
		_ = json.Unmarshal(body, &envelope)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(envelope.Error)
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, &ApplicationError{Status: resp.StatusCode, Message: truncate(msg, 200)}
	}
	if decodeErr != nil {
		return nil, &TransportError{Err: fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)}
	}
	if msg := errorMessage(envelope.Error); msg != "" {
		return nil, &ApplicationError{Status: resp.StatusCode, Message: msg}
	}

	return &Receipt{Status: resp.StatusCode, ID: envelope.ID, Raw: json.RawMessage(body)}, nil
}

// errorMessage treats any non-empty, non-false error value as a failure
// indicator.
func errorMessage(v any) string {
	switch e := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(e)
	case bool:
		if e {
			return "error"
		}
		return ""
	default:
		b, _ := json.Marshal(e)
		return string(b)
	}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
