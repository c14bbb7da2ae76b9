package background

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/phrazzld/slack-github-tracker/internal/metrics"
)

// Common errors returned by the Holder
var (
	ErrHolderClosed   = errors.New("task holder is closed")
	ErrTasksAbandoned = errors.New("background tasks abandoned")
)

// TaskFunc is a unit of supervised work. The context is the runner's signal
// context; implementations must return soon after it is done.
type TaskFunc func(ctx context.Context) error

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Task  string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %q panicked: %v", e.Task, e.Value)
}

// Holder supervises an open set of goroutines. A failing task never affects
// its siblings. Once Wait has been called the holder is closed and Add
// rejects new work.
type Holder struct {
	ctx    context.Context
	logger *slog.Logger

	mu         sync.Mutex
	closed     bool
	errHandler func(name string, err error)

	wg      sync.WaitGroup
	running atomic.Int64
}

// NewHolder creates a holder whose tasks run with the signal's context.
func NewHolder(sig *Signal, logger *slog.Logger) *Holder {
	h := &Holder{
		ctx:    sig.Context(),
		logger: logger.With("component", "task_holder"),
	}
	h.errHandler = func(name string, err error) {
		// Default error handler just logs the error
		h.logger.Error("background task failed",
			"task", name,
			"error", err)
	}
	return h
}

// SetErrorHandler replaces the handler called when a task returns an error
// or panics. Cancellation errors are not reported.
func (h *Holder) SetErrorHandler(handler func(name string, err error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errHandler = handler
}

// Add starts fn in its own goroutine and returns immediately.
// It returns ErrHolderClosed if the holder has begun closing.
func (h *Holder) Add(name string, fn TaskFunc) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		metrics.TasksRejectedTotal.Inc()
		h.logger.Warn("rejected task added after close", "task", name)
		return fmt.Errorf("%w: %s", ErrHolderClosed, name)
	}
	h.wg.Add(1)
	h.running.Add(1)
	h.mu.Unlock()

	metrics.TasksStartedTotal.Inc()
	metrics.TasksRunning.Inc()

	go h.run(name, fn)
	return nil
}

// Running reports the number of tasks that have not yet returned.
func (h *Holder) Running() int {
	return int(h.running.Load())
}

// Wait closes the holder and blocks until every accepted task has returned
// or ctx is done. In the latter case the error wraps ErrTasksAbandoned.
func (h *Holder) Wait(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		select {
		case <-done:
			return nil
		default:
		}
		return fmt.Errorf("%w: %d still running", ErrTasksAbandoned, h.Running())
	}
}

func (h *Holder) run(name string, fn TaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			metrics.TasksPanickedTotal.Inc()
			h.report(name, &PanicError{Task: name, Value: r, Stack: debug.Stack()})
		}
		h.running.Add(-1)
		metrics.TasksRunning.Dec()
		h.wg.Done()
	}()

	h.logger.Debug("task started", "task", name)

	err := fn(h.ctx)
	switch {
	case err == nil:
		h.logger.Debug("task finished", "task", name)
	case errors.Is(err, context.Canceled) && h.ctx.Err() != nil:
		h.logger.Debug("task cancelled", "task", name)
	default:
		metrics.TasksFailedTotal.Inc()
		h.report(name, err)
	}
}

func (h *Holder) report(name string, err error) {
	h.mu.Lock()
	handler := h.errHandler
	h.mu.Unlock()
	if handler != nil {
		handler(name, err)
	}
}
