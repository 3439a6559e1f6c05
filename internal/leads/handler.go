package leads

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/whrealtors/realty-web/internal/observability/metrics"
	"github.com/whrealtors/realty-web/pkg/logging"
)

// maxBodyBytes bounds the POST /customers body.
const maxBodyBytes = 64 << 10

// Hook runs after a lead is stored. Hooks are best-effort: their errors are
// logged and counted but never change the response.
type Hook interface {
	Name() string
	LeadCreated(ctx context.Context, lead *Lead) error
}

// Handler handles HTTP requests for customer leads
type Handler struct {
	repo        Repository
	logger      *logging.Logger
	metrics     *metrics.LeadsMetrics
	hooks       []Hook
	hookTimeout time.Duration
	pending     sync.WaitGroup
}

// HandlerOption customizes the handler.
type HandlerOption func(*Handler)

// WithHooks registers post-create side effects in order.
func WithHooks(hooks ...Hook) HandlerOption {
	return func(h *Handler) {
		for _, hook := range hooks {
			if hook != nil {
				h.hooks = append(h.hooks, hook)
			}
		}
	}
}

// WithMetrics records create outcomes and hook failures.
func WithMetrics(m *metrics.LeadsMetrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// WithHookTimeout bounds each hook call.
func WithHookTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.hookTimeout = d
		}
	}
}

// NewHandler creates a new leads handler
func NewHandler(repo Repository, logger *logging.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	h := &Handler{
		repo:        repo,
		logger:      logger,
		hookTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CreateCustomer handles POST /customers
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("failed to decode request", "error", err)
		h.metrics.ObserveCreate("invalid")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lead, err := h.repo.Create(r.Context(), &req)
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingNameEmail):
		h.metrics.ObserveCreate("invalid")
		writeError(w, http.StatusBadRequest, "Name and email are required")
		return
	case errors.Is(err, ErrInvalidField):
		h.metrics.ObserveCreate("invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, ErrEmailExists):
		h.metrics.ObserveCreate("duplicate")
		writeError(w, http.StatusBadRequest, "Email already exists")
		return
	default:
		h.logger.Error("failed to create lead", "error", err)
		h.metrics.ObserveCreate("error")
		writeError(w, http.StatusInternalServerError, "Could not save customer")
		return
	}

	h.logger.Info("lead created", "id", lead.ID, "project_id", lead.ProjectID)
	h.metrics.ObserveCreate("created")
	writeJSON(w, http.StatusCreated, lead)

	if len(h.hooks) > 0 {
		h.pending.Add(1)
		go func() {
			defer h.pending.Done()
			h.runHooks(r.Context(), lead)
		}()
	}
}

// Wait blocks until side effects of already answered requests have finished.
func (h *Handler) Wait() {
	h.pending.Wait()
}

// ListCustomersResponse is the response for listing leads
type ListCustomersResponse struct {
	Customers []*Lead `json:"customers"`
	Count     int     `json:"count"`
	Offset    int     `json:"offset"`
	Limit     int     `json:"limit"`
}

// ListCustomers handles GET /admin/customers
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{ProjectID: q.Get("project_id")}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = offset
	}
	filter = filter.Normalize()

	leads, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err, "project_id", filter.ProjectID)
		writeError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	writeJSON(w, http.StatusOK, ListCustomersResponse{
		Customers: leads,
		Count:     len(leads),
		Offset:    filter.Offset,
		Limit:     filter.Limit,
	})
}

// runHooks runs after the response is written. It detaches from the request
// so a client disconnect does not abort the notification for a stored row.
func (h *Handler) runHooks(ctx context.Context, lead *Lead) {
	base := context.WithoutCancel(ctx)
	for _, hook := range h.hooks {
		hctx, cancel := context.WithTimeout(base, h.hookTimeout)
		err := hook.LeadCreated(hctx, lead)
		cancel()
		if err != nil {
			h.logger.Warn("lead side effect failed", "hook", hook.Name(), "lead_id", lead.ID, "error", err)
			h.metrics.ObserveSideEffectError(hook.Name())
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
