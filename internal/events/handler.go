package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/slack-github-tracker/internal/background"
	"github.com/phrazzld/slack-github-tracker/internal/metrics"
)

// Handler is the event registry. Events appended before the runtime starts
// are buffered and dispatched, in order, as soon as the dispatcher runs.
type Handler struct {
	queue  *background.Queue[Event]
	logger *slog.Logger
}

// NewHandler creates an empty registry.
func NewHandler(logger *slog.Logger) *Handler {
	h := &Handler{
		queue:  background.NewQueue[Event](),
		logger: logger.With("component", "event_handler"),
	}
	h.queue.SetDropHandler(h.dropped)
	return h
}

// dropped accounts for an event that arrived after the dispatcher stopped.
func (h *Handler) dropped(event Event) {
	metrics.ItemsDroppedTotal.WithLabelValues("events").Inc()
	h.logger.Warn("event dropped after dispatcher stopped", "event_type", event.Type())
}

// Append registers an event. It never fails. Once the dispatcher has
// stopped for good the event is logged and counted as dropped.
func (h *Handler) Append(event Event) {
	h.logger.Debug("event appended", "event_type", event.Type())
	h.queue.Append(event)
}

// Emit implements Emitter.
func (h *Handler) Emit(event Event) {
	h.Append(event)
}

// Pending reports the number of events waiting to be dispatched.
func (h *Handler) Pending() int {
	return h.queue.Len()
}

// Dispatcher returns the task adder that drains the registry. It adds a
// single long-running task which, for every event, adds one more task that
// calls Process with info. The dispatcher ends when the runtime's signal is
// cancelled, after dispatching every event appended before that.
func (h *Handler) Dispatcher(info *ProcessInfo) background.TaskAdder {
	return func(sig *background.Signal, holder *background.Holder) {
		err := holder.Add("process_events", func(ctx context.Context) error {
			return h.dispatch(sig, holder, info)
		})
		if err != nil {
			h.logger.Error("failed to start event dispatcher", "error", err)
		}
	}
}

func (h *Handler) dispatch(sig *background.Signal, holder *background.Holder, info *ProcessInfo) error {
	h.logger.Info("event dispatcher started")
	for event := range h.queue.Drain(sig) {
		eventType := event.Type()
		metrics.EventsDispatchedTotal.WithLabelValues(eventType).Inc()

		err := holder.Add("event:"+eventType, func(ctx context.Context) error {
			if err := event.Process(ctx, info); err != nil {
				return fmt.Errorf("failed to process %s event: %w", eventType, err)
			}
			return nil
		})
		if err != nil {
			// The holder only rejects work once it is closing.
			h.logger.Warn("event dropped during shutdown",
				"event_type", eventType,
				"error", err)
		}
	}
	h.logger.Info("event dispatcher stopped")
	return nil
}
