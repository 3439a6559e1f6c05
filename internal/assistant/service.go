package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/whrealtors/realty-web/internal/catalog"
	"github.com/whrealtors/realty-web/internal/observability/metrics"
	"github.com/whrealtors/realty-web/pkg/logging"
)

var tracer = otel.Tracer("realty.internal.assistant")

var (
	// ErrUnknownProject is returned for ids the catalog does not hold.
	ErrUnknownProject = errors.New("assistant: unknown project")
	// ErrNotConfigured is returned for projects without an assistant profile.
	ErrNotConfigured = errors.New("assistant: project has no assistant")
	// ErrInvalidConversation covers empty histories, unknown roles and
	// conversations that do not end with a visitor message.
	ErrInvalidConversation = errors.New("assistant: invalid conversation")
)

const (
	blockedReply  = "I'm here to help with questions about our projects, pricing and site visits. What would you like to know?"
	filteredReply = "Let me connect you with our sales team for that. Share your name and number in the contact form and we'll call you back."

	defaultMaxHistory = 20
	defaultTopK       = 5
	defaultMaxTokens  = 512
)

// ProjectLookup is satisfied by *catalog.Catalog.
type ProjectLookup interface {
	Lookup(id string) (*catalog.Project, bool)
}

// Reply is what the visitor sees. ImageURL is set when the answer tagged a
// gallery image.
type Reply struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
	Outcome  string `json:"-"`
}

// Service runs one assistant turn: guard, classify, retrieve, answer, check.
type Service struct {
	llm        LLMClient
	model      string
	projects   ProjectLookup
	knowledge  Retriever
	logger     *logging.Logger
	metrics    *metrics.AssistantMetrics
	moderate   bool
	maxTokens  int32
	maxHistory int
	topK       int
}

type Option func(*Service)

// WithModel sets the model id passed on every request (Bedrock needs one).
func WithModel(model string) Option {
	return func(s *Service) { s.model = strings.TrimSpace(model) }
}

func WithKnowledge(r Retriever) Option {
	return func(s *Service) { s.knowledge = r }
}

func WithMetrics(m *metrics.AssistantMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithModeration adds a model BLOCK/ALLOW check on the visitor message and on
// the answer. It costs two extra calls per turn.
func WithModeration(enabled bool) Option {
	return func(s *Service) { s.moderate = enabled }
}

func WithMaxTokens(n int32) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithMaxHistory caps how many trailing turns are sent to the model.
func WithMaxHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

func NewService(llm LLMClient, projects ProjectLookup, logger *logging.Logger, opts ...Option) *Service {
	if llm == nil {
		panic("assistant: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		llm:        llm,
		projects:   projects,
		logger:     logger,
		maxTokens:  defaultMaxTokens,
		maxHistory: defaultMaxHistory,
		topK:       defaultTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply answers the last visitor message of history for projectID.
func (s *Service) Reply(ctx context.Context, projectID string, history []ChatMessage) (*Reply, error) {
	ctx, span := tracer.Start(ctx, "assistant.reply")
	defer span.End()
	span.SetAttributes(attribute.String("realty.project_id", projectID))

	reply, err := s.reply(ctx, projectID, history)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !errors.Is(err, ErrInvalidConversation) && !errors.Is(err, ErrUnknownProject) && !errors.Is(err, ErrNotConfigured) {
			s.metrics.ObserveReply(projectID, metrics.ReplyFailed)
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("assistant.outcome", reply.Outcome))
	s.metrics.ObserveReply(projectID, reply.Outcome)
	return reply, nil
}

func (s *Service) reply(ctx context.Context, projectID string, history []ChatMessage) (*Reply, error) {
	project, ok := s.projects.Lookup(projectID)
	if !ok {
		return nil, ErrUnknownProject
	}
	if project.Assistant == nil {
		return nil, ErrNotConfigured
	}
	turns, err := s.normalize(history)
	if err != nil {
		return nil, err
	}
	question := turns[len(turns)-1].Content

	scan := ScanMessage(question)
	if scan.Blocked {
		s.logger.Warn("assistant message blocked", "project_id", projectID, "reasons", scan.Reasons, "score", scan.Score)
		return &Reply{Text: blockedReply, Outcome: metrics.ReplyBlocked}, nil
	}
	turns[len(turns)-1].Content = scan.Sanitized

	verdict, err := s.complete(ctx, "classify", []string{classifierPrompt}, turns, 8)
	if err != nil {
		return nil, err
	}
	if isVerdict(verdict, "GREETING") {
		return &Reply{Text: greeting(project), Outcome: metrics.ReplyGreeting}, nil
	}

	if s.moderate {
		blocked, err := s.flagged(ctx, scan.Sanitized)
		if err != nil {
			return nil, err
		}
		if blocked {
			s.logger.Warn("assistant message rejected by moderation", "project_id", projectID)
			return &Reply{Text: blockedReply, Outcome: metrics.ReplyBlocked}, nil
		}
	}

	var passages []string
	if s.knowledge != nil {
		passages, err = s.knowledge.Query(ctx, projectID, scan.Sanitized, s.topK)
		if err != nil {
			s.logger.Warn("knowledge lookup failed; answering without context", "project_id", projectID, "error", err)
			passages = nil
		}
	}

	answer, err := s.complete(ctx, "answer", buildSystemPrompt(project, passages), turns, s.maxTokens)
	if err != nil {
		return nil, err
	}

	out := ScanReply(answer)
	if out.Leaked {
		s.logger.Warn("assistant reply filtered", "project_id", projectID, "reasons", out.Reasons)
		if out.Sanitized == "" {
			return &Reply{Text: filteredReply, Outcome: metrics.ReplyFiltered}, nil
		}
		answer = out.Sanitized
	}
	if s.moderate {
		blocked, err := s.flagged(ctx, answer)
		if err != nil {
			return nil, err
		}
		if blocked {
			return &Reply{Text: filteredReply, Outcome: metrics.ReplyFiltered}, nil
		}
	}

	text, image := extractImage(answer, project.Gallery)
	if text == "" {
		return &Reply{Text: filteredReply, Outcome: metrics.ReplyFiltered}, nil
	}
	return &Reply{Text: text, ImageURL: image, Outcome: metrics.ReplyAnswered}, nil
}

// normalize validates roles, drops blank turns and keeps the trailing window.
func (s *Service) normalize(history []ChatMessage) ([]ChatMessage, error) {
	turns := make([]ChatMessage, 0, len(history))
	for i, msg := range history {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		if role != RoleUser && role != RoleAssistant {
			return nil, fmt.Errorf("%w: message %d has role %q", ErrInvalidConversation, i, msg.Role)
		}
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		turns = append(turns, ChatMessage{Role: role, Content: content})
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != RoleUser {
		return nil, fmt.Errorf("%w: last message must come from the visitor", ErrInvalidConversation)
	}
	if len(turns) > s.maxHistory {
		turns = turns[len(turns)-s.maxHistory:]
	}
	// Bedrock rejects a conversation that opens with an assistant turn.
	for turns[0].Role != RoleUser {
		turns = turns[1:]
	}
	return turns, nil
}

func (s *Service) flagged(ctx context.Context, text string) (bool, error) {
	verdict, err := s.complete(ctx, "moderate", []string{moderationPrompt},
		[]ChatMessage{{Role: RoleUser, Content: text}}, 8)
	if err != nil {
		return false, err
	}
	return isVerdict(verdict, "BLOCK"), nil
}

func (s *Service) complete(ctx context.Context, call string, system []string, turns []ChatMessage, maxTokens int32) (string, error) {
	start := time.Now()
	resp, err := s.llm.Complete(ctx, LLMRequest{
		Model:       s.model,
		System:      system,
		Messages:    turns,
		MaxTokens:   maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("assistant: %s: %w", call, err)
	}
	s.metrics.ObserveLLMCall(call, time.Since(start).Seconds(), resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return resp.Text, nil
}

func greeting(p *catalog.Project) string {
	if p.Assistant.Greeting != "" {
		return p.Assistant.Greeting
	}
	return "Hi! I'm your assistant for " + p.Title + ". Ask me anything!"
}
