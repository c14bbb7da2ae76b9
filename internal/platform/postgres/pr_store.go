package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/slack-github-tracker/internal/domain"
	"github.com/phrazzld/slack-github-tracker/internal/platform/logger"
	"github.com/phrazzld/slack-github-tracker/internal/store"
)

// DB is what PostgresPRStore needs from a connection. *sql.DB satisfies it.
type DB interface {
	store.DBTX
	store.TxBeginner
}

// PostgresPRStore implements the store.PRStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPRStore struct {
	db     DB
	logger *slog.Logger
}

// NewPostgresPRStore creates a PRStore backed by db.
// If logger is nil, a default logger will be used.
func NewPostgresPRStore(db DB, logger *slog.Logger) *PostgresPRStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPRStore{
		db:     db,
		logger: logger.With(slog.String("component", "pr_store")),
	}
}

// Ensure PostgresPRStore implements store.PRStore interface
var _ store.PRStore = (*PostgresPRStore)(nil)

// StorePRRequest implements store.PRStore.StorePRRequest.
func (s *PostgresPRStore) StorePRRequest(ctx context.Context, req *domain.PRRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := req.Validate(); err != nil {
		log.Warn("pr request validation failed", "error", err)
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO pr_requests (organisation, repo, pr_number, user_id, channel_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, added
	`
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, query,
			req.PR.Organisation,
			req.PR.Repo,
			req.PR.Number,
			req.UserID,
			req.ChannelID,
		).Scan(&req.ID, &req.Added)
	})
	if err != nil {
		log.Error("failed to store pr request",
			"error", err,
			"pr", req.PR.Display())
		return store.NewStoreError("pr_request", "create", "failed to insert", MapError(err))
	}

	log.Info("pr request stored",
		"id", req.ID,
		"pr", req.PR.Display(),
		"channel_id", req.ChannelID)
	return nil
}

// ListPRRequests implements store.PRStore.ListPRRequests.
func (s *PostgresPRStore) ListPRRequests(ctx context.Context, pr domain.PR) ([]*domain.PRRequest, error) {
	query := `
		SELECT id, user_id, channel_id, added
		FROM pr_requests
		WHERE organisation = $1 AND repo = $2 AND pr_number = $3
		ORDER BY added, id
	`
	rows, err := s.db.QueryContext(ctx, query, pr.Organisation, pr.Repo, pr.Number)
	if err != nil {
		return nil, store.NewStoreError("pr_request", "list", "failed to query", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	requests := []*domain.PRRequest{}
	for rows.Next() {
		req := &domain.PRRequest{PR: pr}
		if err := rows.Scan(&req.ID, &req.UserID, &req.ChannelID, &req.Added); err != nil {
			return nil, store.NewStoreError("pr_request", "list", "failed to scan", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("pr_request", "list", "failed to iterate", MapError(err))
	}

	return requests, nil
}
