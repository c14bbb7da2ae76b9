package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/phrazzld/slack-github-tracker/internal/background"
	"github.com/phrazzld/slack-github-tracker/internal/config"
	"github.com/phrazzld/slack-github-tracker/internal/platform/postgres"
	"github.com/phrazzld/slack-github-tracker/internal/platform/slack"
	"github.com/phrazzld/slack-github-tracker/internal/shutdown"
	"golang.org/x/sync/errgroup"
)

// runServer sets up logging, the database and the application, then serves
// until shutdown completes.
func runServer(ctx context.Context, cfg *config.Config) error {
	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}
	logConfig(logger, cfg)

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database connection", "error", err)
		}
	}()

	app, err := newApplication(
		cfg,
		logger,
		postgres.NewPostgresPRStore(db, logger),
		slack.NewClient(cfg.Slack.BotToken, logger),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", cfg.Server.Port, err)
	}
	return app.serve(ctx, ln)
}

// serve runs the HTTP server on ln inside the background runtime. A stop
// signal first shuts the HTTP server down; the runtime is cancelled once the
// server has drained or the graceful timeout has passed. serve returns after
// every background task has finished or been abandoned.
func (app *application) serve(ctx context.Context, ln net.Listener) error {
	return app.tasks.Run(ctx, func(r *background.Runner) error {
		orch := shutdown.New(app.config.Server.GracefulTimeout(), r.Signal.Cancel, app.logger)
		return app.serveHTTP(ctx, ln, orch)
	})
}

func (app *application) serveHTTP(ctx context.Context, ln net.Listener, orch *shutdown.Orchestrator) error {
	server := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.watchShutdown(gctx, orch)
	})

	g.Go(func() error {
		app.logger.Info("starting server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-orch.StopAccepting():
		case <-gctx.Done():
		}
		app.logger.Info("shutting down server")

		// In-flight requests may finish until the shutdown is forced.
		shutdownCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()
		go func() {
			select {
			case <-orch.Done():
				cancel()
			case <-shutdownCtx.Done():
			}
		}()

		err := server.Shutdown(shutdownCtx)
		orch.Drained()
		if err != nil {
			app.logger.Warn("server did not drain before shutdown was forced", "error", err)
			_ = server.Close()
			return nil
		}
		app.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}
