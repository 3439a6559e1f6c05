package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/whrealtors/realty-web/pkg/logging"
)

const (
	maxBodyBytes      = 64 << 10
	maxMessageRunes   = 2000
	maxRequestHistory = 50
)

// Replier is satisfied by *Service.
type Replier interface {
	Reply(ctx context.Context, projectID string, history []ChatMessage) (*Reply, error)
}

// MessagesRequest carries the conversation so far. Message, when set, is
// appended as the newest visitor turn.
type MessagesRequest struct {
	Messages []ChatMessage `json:"messages"`
	Message  string        `json:"message,omitempty"`
}

// Handler serves POST /ai/projects/{projectID}/messages.
type Handler struct {
	replier Replier
	logger  *logging.Logger
}

func NewHandler(replier Replier, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{replier: replier, logger: logger}
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req MessagesRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	history := req.Messages
	if req.Message != "" {
		history = append(history, ChatMessage{Role: RoleUser, Content: req.Message})
	}
	if len(history) > maxRequestHistory {
		writeError(w, http.StatusBadRequest, "conversation too long")
		return
	}
	for _, msg := range history {
		if utf8.RuneCountInString(msg.Content) > maxMessageRunes {
			writeError(w, http.StatusBadRequest, "message too long")
			return
		}
	}

	projectID := chi.URLParam(r, "projectID")
	reply, err := h.replier.Reply(r.Context(), projectID, history)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, reply)
	case errors.Is(err, ErrInvalidConversation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnknownProject), errors.Is(err, ErrNotConfigured):
		writeError(w, http.StatusNotFound, "assistant not available for this project")
	default:
		h.logger.Error("assistant reply failed", "project_id", projectID, "error", err)
		writeError(w, http.StatusBadGateway, "the assistant is unavailable, please try again")
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
