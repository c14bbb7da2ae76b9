package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/slack-github-tracker/internal/background"
	"github.com/phrazzld/slack-github-tracker/internal/config"
	"github.com/phrazzld/slack-github-tracker/internal/events"
	"github.com/phrazzld/slack-github-tracker/internal/github"
	"github.com/phrazzld/slack-github-tracker/internal/platform/slack"
	"github.com/phrazzld/slack-github-tracker/internal/service"
	"github.com/phrazzld/slack-github-tracker/internal/shutdown"
	"github.com/phrazzld/slack-github-tracker/internal/store"
)

// application holds all the shared application dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Background runtime
	tasks  *background.Tasks
	events *events.Handler
	info   *events.ProcessInfo

	// Transport-facing services
	tracking service.TrackingService
	hooks    *github.Hooks

	// HTTP surface served by serve
	handler http.Handler

	// watchShutdown blocks until a stop is requested and triggers orch.
	watchShutdown func(ctx context.Context, orch *shutdown.Orchestrator) error
}

// newApplication wires the background runtime, the event registry and the
// services. The event dispatcher is registered before the runtime starts so
// that events arriving early are buffered, not lost.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	prStore store.PRStore,
	messenger slack.Messenger,
) (*application, error) {
	if prStore == nil || messenger == nil {
		return nil, errors.New("store and messenger are required")
	}

	app := &application{
		config: cfg,
		logger: logger,
		tasks: background.NewTasks(background.Config{
			AbandonTimeout: cfg.Server.AbandonTimeout(),
		}, logger),
		events: events.NewHandler(logger),
	}

	app.info = &events.ProcessInfo{
		Logger:    logger.With("component", "events"),
		Store:     prStore,
		Messenger: messenger,
		Tasks:     app.tasks,
	}
	app.tasks.Append(app.events.Dispatcher(app.info))

	var err error
	app.tracking, err = service.NewTrackingService(prStore, messenger, app.tasks, logger)
	if err != nil {
		return nil, err
	}

	app.hooks = github.NewHooks(cfg.GitHub.WebhookSecret, app.events, nil, logger)
	app.handler = app.setupRouter()
	app.watchShutdown = func(ctx context.Context, orch *shutdown.Orchestrator) error {
		return orch.Watch(ctx)
	}

	return app, nil
}
