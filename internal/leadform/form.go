// Package leadform holds the contact form state for one project page and runs
// lead submissions against the customers backend.
package leadform

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/whrealtors/realty-web/internal/customers"
	"github.com/whrealtors/realty-web/internal/observability/metrics"
	"github.com/whrealtors/realty-web/pkg/logging"
)

// ErrMissingRequired is returned by Submit when name or email is empty.
// No request is sent in that case.
var ErrMissingRequired = errors.New("leadform: name and email are required")

// State is the form's position in the submission lifecycle.
type State int

const (
	Editing State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Fields are the user-editable inputs.
type Fields struct {
	Name  string
	Email string
	Phone string
}

// Submitter delivers one snapshot to the backend. *customers.Client satisfies it.
type Submitter interface {
	Submit(ctx context.Context, sub customers.Submission) (*customers.Receipt, error)
}

// Outcome is the resolution of one submission.
type Outcome struct {
	Snapshot customers.Submission
	Receipt  *customers.Receipt
	Err      error
}

func (o Outcome) Succeeded() bool { return o.Err == nil }

// Form is the transient lead state of a single page instance.
//
// Every Submit spawns its own goroutine that owns an immutable snapshot.
// Overlapping submissions are not serialised; each resolution applies its own
// transition, so whichever settles last decides the final field values.
type Form struct {
	projectID string
	submitter Submitter
	logger    *logging.Logger
	metrics   *metrics.SiteMetrics

	onSuccess func(Outcome)
	onFailure func(Outcome)
	onSettled func(Outcome)

	mu       sync.Mutex
	fields   Fields
	state    State
	inFlight int
	lastErr  error
}

// Option configures a Form.
type Option func(*Form)

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) Option {
	return func(f *Form) { f.logger = logger }
}

// WithMetrics records submission outcomes.
func WithMetrics(m *metrics.SiteMetrics) Option {
	return func(f *Form) { f.metrics = m }
}

// OnSuccess runs after a successful submission has cleared the fields.
func OnSuccess(fn func(Outcome)) Option {
	return func(f *Form) { f.onSuccess = fn }
}

// OnFailure runs after a failed submission; fields are left as they are.
func OnFailure(fn func(Outcome)) Option {
	return func(f *Form) { f.onFailure = fn }
}

// OnSettled runs after every submission, success or failure.
func OnSettled(fn func(Outcome)) Option {
	return func(f *Form) { f.onSettled = fn }
}

// New creates an empty form bound to projectID.
func New(projectID string, submitter Submitter, opts ...Option) *Form {
	f := &Form{
		projectID: projectID,
		submitter: submitter,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Form) ProjectID() string { return f.projectID }

func (f *Form) SetName(v string)  { f.edit(func(fl *Fields) { fl.Name = v }) }
func (f *Form) SetEmail(v string) { f.edit(func(fl *Fields) { fl.Email = v }) }
func (f *Form) SetPhone(v string) { f.edit(func(fl *Fields) { fl.Phone = v }) }

// SetFields replaces all three inputs at once.
func (f *Form) SetFields(v Fields) { f.edit(func(fl *Fields) { *fl = v }) }

func (f *Form) edit(apply func(*Fields)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	apply(&f.fields)
	if f.inFlight == 0 {
		f.state = Editing
	}
}

// Fields returns the current input values.
func (f *Form) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// State is Submitting while any request is outstanding, otherwise the result
// of the last settled submission until the next edit returns it to Editing.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// LastError is the error of the most recent failed submission, cleared by a
// later success.
func (f *Form) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Submit snapshots the current fields and sends them in the background. The
// returned channel yields exactly one Outcome and is then closed.
//
// The request is detached from ctx cancellation: once issued it runs to
// completion, bounded only by the submitter's transport timeout.
func (f *Form) Submit(ctx context.Context) (<-chan Outcome, error) {
	f.mu.Lock()
	if f.fields.Name == "" || f.fields.Email == "" {
		f.mu.Unlock()
		f.metrics.ObserveSubmission(metrics.OutcomeRejected, 0)
		return nil, ErrMissingRequired
	}
	snapshot := customers.Submission{
		Name:      f.fields.Name,
		Email:     f.fields.Email,
		Phone:     f.fields.Phone,
		ProjectID: f.projectID,
	}
	f.inFlight++
	f.state = Submitting
	f.mu.Unlock()

	f.metrics.SubmissionStarted()
	done := make(chan Outcome, 1)
	go f.run(context.WithoutCancel(ctx), snapshot, done)
	return done, nil
}

func (f *Form) run(ctx context.Context, snapshot customers.Submission, done chan<- Outcome) {
	defer close(done)
	start := time.Now()

	receipt, err := f.submitter.Submit(ctx, snapshot)
	outcome := Outcome{Snapshot: snapshot, Receipt: receipt, Err: err}

	f.mu.Lock()
	f.inFlight--
	if err == nil {
		f.fields = Fields{}
		f.lastErr = nil
	} else {
		f.lastErr = err
	}
	if f.inFlight == 0 {
		if err == nil {
			f.state = Succeeded
		} else {
			f.state = Failed
		}
	}
	f.mu.Unlock()

	f.metrics.ObserveSubmission(outcomeLabel(err), time.Since(start).Seconds())
	if err == nil {
		f.logger.Info("lead submitted", "project_id", snapshot.ProjectID, "status", receiptStatus(receipt), "response", receiptBody(receipt))
		if f.onSuccess != nil {
			f.onSuccess(outcome)
		}
	} else {
		f.logger.Error("lead submission failed", "project_id", snapshot.ProjectID, "error", err)
		if f.onFailure != nil {
			f.onFailure(outcome)
		}
	}
	if f.onSettled != nil {
		f.onSettled(outcome)
	}
	done <- outcome
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, customers.ErrApplication):
		return metrics.OutcomeApplicationError
	default:
		return metrics.OutcomeTransportError
	}
}

func receiptStatus(r *customers.Receipt) int {
	if r == nil {
		return 0
	}
	return r.Status
}

func receiptBody(r *customers.Receipt) string {
	if r == nil {
		return ""
	}
	return string(r.Raw)
}
