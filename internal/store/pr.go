package store

import (
	"context"

	"github.com/phrazzld/slack-github-tracker/internal/domain"
)

// PRStore defines the interface for persisting tracking requests.
type PRStore interface {
	// StorePRRequest saves a new tracking request and fills in its ID and
	// Added time. Returns ErrInvalidEntity if the request fails validation.
	StorePRRequest(ctx context.Context, req *domain.PRRequest) error

	// ListPRRequests returns every request for the given PR, oldest first.
	// Returns an empty slice if nobody tracks it.
	ListPRRequests(ctx context.Context, pr domain.PR) ([]*domain.PRRequest, error)
}
