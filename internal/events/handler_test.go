package events

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/slack-github-tracker/internal/background"
	"github.com/phrazzld/slack-github-tracker/internal/metrics"
	"github.com/phrazzld/slack-github-tracker/internal/mocks"
	"github.com/phrazzld/slack-github-tracker/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// recordingEvent records every ProcessInfo it is processed with.
type recordingEvent struct {
	mu   sync.Mutex
	seen []*ProcessInfo
}

func (e *recordingEvent) Type() string { return "recording" }

func (e *recordingEvent) Process(ctx context.Context, info *ProcessInfo) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen = append(e.seen, info)
	return nil
}

func (e *recordingEvent) calls() []*ProcessInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*ProcessInfo(nil), e.seen...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestHandler_EventAppendedAfterStart(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	logger := testLogger()
	handler := NewHandler(logger)
	tasks := background.NewTasks(background.DefaultConfig(), logger)
	prStore := &mocks.MockPRStore{}
	messenger := &mocks.MockMessenger{}
	info := &ProcessInfo{
		Logger:    logger,
		Store:     prStore,
		Messenger: messenger,
		Tasks:     tasks,
	}
	tasks.Append(handler.Dispatcher(info))

	before := testutil.ToFloat64(metrics.EventsDispatchedTotal.WithLabelValues("recording"))
	event := &recordingEvent{}

	err := tasks.Run(context.Background(), func(r *background.Runner) error {
		assert.Equal(t, 0, handler.Pending())
		handler.Append(event)

		require.Eventually(t, func() bool { return len(event.calls()) == 1 }, time.Second, 5*time.Millisecond)
		return nil
	})
	require.NoError(t, err)

	calls := event.calls()
	require.Len(t, calls, 1, "exactly one processing task should run")
	assert.Same(t, info, calls[0])
	assert.Same(t, prStore, calls[0].Store)
	assert.Same(t, messenger, calls[0].Messenger)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsDispatchedTotal.WithLabelValues("recording"))-before)
}

func TestHandler_EventsAppendedBeforeStart(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	logger := testLogger()
	handler := NewHandler(logger)
	tasks := background.NewTasks(background.DefaultConfig(), logger)
	info := &ProcessInfo{Logger: logger, Tasks: tasks}

	events := make([]*recordingEvent, 5)
	for i := range events {
		events[i] = &recordingEvent{}
		handler.Append(events[i])
	}
	handler.Append(&EmptyEvent{Metadata: NewMetadata()})
	assert.Equal(t, 6, handler.Pending())

	tasks.Append(handler.Dispatcher(info))
	err := tasks.Run(context.Background(), func(r *background.Runner) error {
		require.Eventually(t, func() bool {
			for _, e := range events {
				if len(e.calls()) != 1 {
					return false
				}
			}
			return true
		}, time.Second, 5*time.Millisecond)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, handler.Pending())
}

func TestHandler_FailingEventDoesNotStopDispatch(t *testing.T) {
	logger := testLogger()
	handler := NewHandler(logger)
	tasks := background.NewTasks(background.DefaultConfig(), logger)
	info := &ProcessInfo{Logger: logger, Tasks: tasks}
	tasks.Append(handler.Dispatcher(info))

	after := &recordingEvent{}
	err := tasks.Run(context.Background(), func(r *background.Runner) error {
		handler.Append(failingEvent{})
		handler.Append(after)
		require.Eventually(t, func() bool { return len(after.calls()) == 1 }, time.Second, 5*time.Millisecond)
		return nil
	})
	require.NoError(t, err)
}

type failingEvent struct{}

func (failingEvent) Type() string { return "failing" }

func (failingEvent) Process(ctx context.Context, info *ProcessInfo) error {
	return assert.AnError
}

func TestHandler_EventAfterDispatcherStopsIsDropped(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	log, buf := logger.GetTestLogger(t)
	handler := NewHandler(log)
	tasks := background.NewTasks(background.DefaultConfig(), log)
	tasks.Append(handler.Dispatcher(&ProcessInfo{Logger: log, Tasks: tasks}))

	dropped := metrics.ItemsDroppedTotal.WithLabelValues("events")
	before := testutil.ToFloat64(dropped)
	event := &recordingEvent{}

	err := tasks.Run(context.Background(), func(r *background.Runner) error {
		// Forced shutdown: the runtime is cancelled while the transport may
		// still be accepting requests.
		r.Signal.Cancel()
		require.Eventually(t, func() bool { return r.Holder.Running() == 0 }, time.Second, 5*time.Millisecond)

		handler.Append(event)
		return nil
	})
	require.NoError(t, err)

	assert.Empty(t, event.calls())
	assert.Equal(t, 0, handler.Pending())
	assert.Equal(t, 1.0, testutil.ToFloat64(dropped)-before)
	assert.Contains(t, buf.Messages(), "event dropped after dispatcher stopped")
}

func TestEmitterFunc(t *testing.T) {
	var got []Event
	emitter := EmitterFunc(func(event Event) { got = append(got, event) })

	event := &EmptyEvent{Metadata: NewMetadata()}
	emitter.Emit(event)

	require.Len(t, got, 1)
	assert.Same(t, event, got[0])
}
