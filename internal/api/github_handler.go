package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/slack-github-tracker/internal/events"
	"github.com/phrazzld/slack-github-tracker/internal/github"
	"github.com/phrazzld/slack-github-tracker/internal/metrics"
	"github.com/phrazzld/slack-github-tracker/internal/platform/logger"
)

// Webhook response states.
const (
	StatusAccepted = "accepted"
	StatusDropped  = "dropped"
)

// WebhookRegistrar verifies and registers GitHub deliveries.
// It is satisfied by *github.Hooks.
type WebhookRegistrar interface {
	ValidatePayload(r *http.Request) ([]byte, error)
	Register(headers github.RawHeaders, payload []byte) ([]events.Event, error)
}

// GitHubHandler serves the GitHub webhook endpoint.
type GitHubHandler struct {
	hooks  WebhookRegistrar
	logger *slog.Logger
}

// NewGitHubHandler creates a new GitHubHandler
func NewGitHubHandler(hooks WebhookRegistrar, logger *slog.Logger) *GitHubHandler {
	return &GitHubHandler{
		hooks:  hooks,
		logger: logger.With("component", "github_handler"),
	}
}

// Webhook handles POST /github/webhooks. Verified deliveries are answered
// with 202 whether or not they produced events.
func (h *GitHubHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := h.hooks.ValidatePayload(r)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	headers := github.HeadersFromRequest(r.Header)
	log := logger.FromContextOrDefault(r.Context(), h.logger).With(
		"github_event", headers.Event,
		"delivery", headers.Delivery,
		"hook_id", headers.HookID)
	metrics.WebhooksReceivedTotal.WithLabelValues(headers.Event).Inc()

	produced, err := h.hooks.Register(headers, payload)
	var dropped *github.DroppedError
	switch {
	case errors.As(err, &dropped):
		metrics.WebhooksDroppedTotal.WithLabelValues(dropped.Reason).Inc()
		log.Debug("webhook dropped", "reason", dropped.Reason)
		respondWithStatus(w, r, http.StatusAccepted, StatusDropped)
	case err != nil:
		respondWithMappedError(w, r, err)
	default:
		log.Info("webhook accepted", "events", len(produced))
		respondWithStatus(w, r, http.StatusAccepted, StatusAccepted)
	}
}
