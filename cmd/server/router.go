package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/slack-github-tracker/internal/api"
	apiMiddleware "github.com/phrazzld/slack-github-tracker/internal/api/middleware"
	"github.com/phrazzld/slack-github-tracker/internal/api/shared"
	"github.com/phrazzld/slack-github-tracker/internal/metrics"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	slackHandler := api.NewSlackHandler(app.config.Slack.SigningSecret, app.tracking, app.logger)
	githubHandler := api.NewGitHubHandler(app.hooks, app.logger)

	r.Route("/slack", func(r chi.Router) {
		r.Post("/events", slackHandler.Events)
		r.Post("/commands", slackHandler.Commands)
	})

	r.With(apiMiddleware.RateLimit(app.config.RateLimit.WebhookRequestsPerMinute)).
		Post("/github/webhooks", githubHandler.Webhook)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithText(w, r, http.StatusOK, "OK")
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
