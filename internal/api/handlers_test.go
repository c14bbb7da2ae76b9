package api

import (
	"context"
	"io"
	"log/slog"

	"github.com/phrazzld/slack-github-tracker/internal/service"
	"github.com/stretchr/testify/mock"
)

const (
	testSigningSecret = "slack-signing-secret"
	testWebhookSecret = "github-webhook-secret"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockTrackingService mocks the service.TrackingService interface
type MockTrackingService struct {
	mock.Mock
}

func (m *MockTrackingService) HandleCommand(ctx context.Context, cmd service.Command) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

func (m *MockTrackingService) HandleMessage(ctx context.Context, msg service.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
