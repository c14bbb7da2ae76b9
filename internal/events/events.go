package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/slack-github-tracker/internal/background"
	"github.com/phrazzld/slack-github-tracker/internal/platform/slack"
	"github.com/phrazzld/slack-github-tracker/internal/store"
)

// Event is a unit of work dispatched to the background runtime.
type Event interface {
	// Type is a short, stable name used for logging and metrics.
	Type() string

	// Process handles the event. The context is cancelled when the runtime
	// begins shutting down; implementations must return promptly after that.
	Process(ctx context.Context, info *ProcessInfo) error
}

// TaskRegistry accepts task adders. It is satisfied by *background.Tasks.
type TaskRegistry interface {
	Append(adder background.TaskAdder)
}

// ProcessInfo carries the dependencies shared by every event. It is built
// once at startup and passed by reference to each processing task.
type ProcessInfo struct {
	Logger    *slog.Logger
	Store     store.PRStore
	Messenger slack.Messenger
	Tasks     TaskRegistry
}

// Metadata identifies a single event instance.
type Metadata struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// ReceivedAt is the timestamp when the event entered the registry
	ReceivedAt time.Time `json:"received_at"`
}

// NewMetadata creates Metadata with a fresh ID.
func NewMetadata() Metadata {
	return Metadata{
		ID:         uuid.New(),
		ReceivedAt: time.Now(),
	}
}

// EmptyEvent does nothing beyond logging that it was processed.
type EmptyEvent struct {
	Metadata
}

// Type implements Event.
func (e *EmptyEvent) Type() string { return "empty" }

// Process implements Event.
func (e *EmptyEvent) Process(ctx context.Context, info *ProcessInfo) error {
	info.Logger.DebugContext(ctx, "processed empty event", "event_id", e.ID)
	return nil
}
