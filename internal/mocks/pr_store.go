package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/slack-github-tracker/internal/domain"
	"github.com/phrazzld/slack-github-tracker/internal/store"
)

// MockPRStore implements store.PRStore for testing
type MockPRStore struct {
	// Function fields for customizable behavior
	StorePRRequestFn func(ctx context.Context, req *domain.PRRequest) error
	ListPRRequestsFn func(ctx context.Context, pr domain.PR) ([]*domain.PRRequest, error)

	mu       sync.Mutex
	requests []*domain.PRRequest
	listed   []domain.PR
}

// StorePRRequest implements the PRStore interface
func (m *MockPRStore) StorePRRequest(ctx context.Context, req *domain.PRRequest) error {
	if m.StorePRRequestFn != nil {
		if err := m.StorePRRequestFn(ctx, req); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return nil
}

// ListPRRequests implements the PRStore interface. Without ListPRRequestsFn
// it returns the stored requests for pr.
func (m *MockPRStore) ListPRRequests(ctx context.Context, pr domain.PR) ([]*domain.PRRequest, error) {
	m.mu.Lock()
	m.listed = append(m.listed, pr)
	m.mu.Unlock()

	if m.ListPRRequestsFn != nil {
		return m.ListPRRequestsFn(ctx, pr)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.PRRequest
	for _, req := range m.requests {
		if req.PR == pr {
			out = append(out, req)
		}
	}
	return out, nil
}

// Requests returns the requests stored so far.
func (m *MockPRStore) Requests() []*domain.PRRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.PRRequest(nil), m.requests...)
}

// Listed returns the PRs passed to ListPRRequests so far.
func (m *MockPRStore) Listed() []domain.PR {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PR(nil), m.listed...)
}

var _ store.PRStore = (*MockPRStore)(nil)
