package metrics

import "github.com/prometheus/client_golang/prometheus"

// Submission outcome labels.
const (
	OutcomeSuccess          = "success"
	OutcomeApplicationError = "application_error"
	OutcomeTransportError   = "transport_error"
	OutcomeRejected         = "rejected"
)

// SiteMetrics exposes counters/histograms for catalog and lead flows on the site.
type SiteMetrics struct {
	lookupsTotal      *prometheus.CounterVec
	submissionsTotal  *prometheus.CounterVec
	submissionLatency *prometheus.HistogramVec
	inFlight          prometheus.Gauge
}

func NewSiteMetrics(reg prometheus.Registerer) *SiteMetrics {
	m := &SiteMetrics{
		lookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realty",
			Subsystem: "catalog",
			Name:      "lookups_total",
			Help:      "Project lookups by result",
		}, []string{"result"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realty",
			Subsystem: "leadform",
			Name:      "submissions_total",
			Help:      "Lead form submissions by outcome",
		}, []string{"outcome"}),
		submissionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "realty",
			Subsystem: "leadform",
			Name:      "submission_latency_seconds",
			Help:      "Round-trip latency of lead submissions to the customers backend",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "realty",
			Subsystem: "leadform",
			Name:      "submissions_in_flight",
			Help:      "Lead submissions awaiting a backend response",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.lookupsTotal, m.submissionsTotal, m.submissionLatency, m.inFlight)
	return m
}

func (m *SiteMetrics) ObserveLookup(found bool) {
	if m == nil {
		return
	}
	result := "found"
	if !found {
		result = "not_found"
	}
	m.lookupsTotal.WithLabelValues(result).Inc()
}

func (m *SiteMetrics) SubmissionStarted() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

// ObserveSubmission records a settled submission. Rejected submissions never
// started, so they do not touch the in-flight gauge.
func (m *SiteMetrics) ObserveSubmission(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeRejected {
		return
	}
	m.inFlight.Dec()
	m.submissionLatency.WithLabelValues(outcome).Observe(seconds)
}

// LeadsMetrics exposes counters for the customers backend.
type LeadsMetrics struct {
	createdTotal  *prometheus.CounterVec
	sideEffectErr *prometheus.CounterVec
}

func NewLeadsMetrics(reg prometheus.Registerer) *LeadsMetrics {
	m := &LeadsMetrics{
		createdTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realty",
			Subsystem: "leads",
			Name:      "create_total",
			Help:      "Customer create requests by status",
		}, []string{"status"}),
		sideEffectErr: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realty",
			Subsystem: "leads",
			Name:      "side_effect_errors_total",
			Help:      "Failed best-effort side effects after a lead was stored",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.sideEffectErr)
	return m
}

func (m *LeadsMetrics) ObserveCreate(status string) {
	if m == nil {
		return
	}
	m.createdTotal.WithLabelValues(status).Inc()
}

func (m *LeadsMetrics) ObserveSideEffectError(kind string) {
	if m == nil {
		return
	}
	m.sideEffectErr.WithLabelValues(kind).Inc()
}

// Assistant reply outcomes.
const (
	ReplyAnswered = "answered"
	ReplyGreeting = "greeting"
	ReplyBlocked  = "blocked"
	ReplyFiltered = "filtered"
	ReplyFailed   = "failed"
)

// AssistantMetrics tracks the project sales assistant.
type AssistantMetrics struct {
	repliesTotal *prometheus.CounterVec
	llmLatency   *prometheus.HistogramVec
	llmTokens    *prometheus.CounterVec
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realty",
			Subsystem: "assistant",
			Name:      "replies_total",
			Help:      "Assistant replies by project and outcome",
		}, []string{"project", "outcome"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "realty",
			Subsystem: "assistant",
			Name:      "llm_latency_seconds",
			Help:      "Language model call latency by call kind",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16},
		}, []string{"call"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realty",
			Subsystem: "assistant",
			Name:      "llm_tokens_total",
			Help:      "Language model tokens by direction",
		}, []string{"direction"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.repliesTotal, m.llmLatency, m.llmTokens)
	return m
}

func (m *AssistantMetrics) ObserveReply(project, outcome string) {
	if m == nil {
		return
	}
	m.repliesTotal.WithLabelValues(project, outcome).Inc()
}

func (m *AssistantMetrics) ObserveLLMCall(call string, seconds float64, inputTokens, outputTokens int32) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(call).Observe(seconds)
	m.llmTokens.WithLabelValues("input").Add(float64(inputTokens))
	m.llmTokens.WithLabelValues("output").Add(float64(outputTokens))
}
