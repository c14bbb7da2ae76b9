package background

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/slack-github-tracker/internal/metrics"
)

// ErrAlreadyStarted is returned when Run is called more than once.
var ErrAlreadyStarted = errors.New("background tasks already started")

// TaskAdder registers zero or more tasks with the holder. It is invoked from
// the runner's drain loop, so it should add tasks and return rather than block.
type TaskAdder func(sig *Signal, holder *Holder)

// RunnerState is the lifecycle state of a Tasks registry.
type RunnerState string

// Runner lifecycle states, in order.
const (
	StateNotStarted RunnerState = "not_started"
	StateRunning    RunnerState = "running"
	StateStopping   RunnerState = "stopping"
	StateStopped    RunnerState = "stopped"
)

// Config holds configuration for the task runner
type Config struct {
	// AbandonTimeout bounds how long Run waits for tasks after the signal has
	// been cancelled. Zero or negative waits forever.
	AbandonTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable defaults
func DefaultConfig() Config {
	return Config{
		AbandonTimeout: 30 * time.Second,
	}
}

// Tasks is the registry of task adders. Adders may be appended at any time;
// those appended before Run are spawned first, in order, and those appended
// while running are spawned as soon as the drain loop sees them.
type Tasks struct {
	logger *slog.Logger
	config Config
	adders *Queue[TaskAdder]

	mu    sync.Mutex
	state RunnerState
}

// NewTasks creates an empty registry in the not-started state.
func NewTasks(config Config, logger *slog.Logger) *Tasks {
	t := &Tasks{
		logger: logger.With("component", "background_tasks"),
		config: config,
		adders: NewQueue[TaskAdder](),
		state:  StateNotStarted,
	}
	t.adders.SetDropHandler(func(TaskAdder) {
		metrics.ItemsDroppedTotal.WithLabelValues("task_adders").Inc()
		t.logger.Warn("task adder dropped after runner stopped")
	})
	return t
}

// Append registers a task adder. It never fails. Adders appended after the
// drain loop has stopped for good are logged and counted as dropped.
func (t *Tasks) Append(adder TaskAdder) {
	t.adders.Append(adder)
}

// State returns the current lifecycle state.
func (t *Tasks) State() RunnerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Runner is the handle passed to the body of Run.
type Runner struct {
	Signal *Signal
	Holder *Holder
}

// Go adds a task directly to the runner's holder.
func (r *Runner) Go(name string, fn TaskFunc) error {
	return r.Holder.Add(name, fn)
}

// Run opens the runtime scope and calls fn with its handle.
//
// When fn returns (or panics) the signal is cancelled unconditionally and Run
// waits for every task to finish, bounded by Config.AbandonTimeout. The error
// from fn is returned only after that wait, joined with ErrTasksAbandoned when
// the wait gave up.
func (t *Tasks) Run(ctx context.Context, fn func(r *Runner) error) (err error) {
	t.mu.Lock()
	if t.state != StateNotStarted {
		t.mu.Unlock()
		return fmt.Errorf("%w: state is %s", ErrAlreadyStarted, t.state)
	}
	t.state = StateRunning
	t.mu.Unlock()

	sig := NewSignal(ctx)
	holder := NewHolder(sig, t.logger)
	runner := &Runner{Signal: sig, Holder: holder}

	defer func() {
		t.setState(StateStopping)
		sig.Cancel()

		if waitErr := t.wait(ctx, holder); waitErr != nil {
			err = errors.Join(err, waitErr)
		}
		t.setState(StateStopped)
	}()

	if err := holder.Add("add_tasks", func(context.Context) error {
		t.addTasks(sig, holder)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to start task drain loop: %w", err)
	}

	t.logger.Info("background tasks running")
	return fn(runner)
}

// addTasks spawns every registered adder into the holder until the signal is
// terminal.
func (t *Tasks) addTasks(sig *Signal, holder *Holder) {
	for adder := range t.adders.Drain(sig) {
		adder(sig, holder)
	}
}

func (t *Tasks) wait(ctx context.Context, holder *Holder) error {
	waitCtx := context.WithoutCancel(ctx)
	if t.config.AbandonTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(waitCtx, t.config.AbandonTimeout)
		defer cancel()
	}

	start := time.Now()
	if err := holder.Wait(waitCtx); err != nil {
		abandoned := holder.Running()
		metrics.TasksAbandonedTotal.Add(float64(abandoned))
		t.logger.Warn("gave up waiting for background tasks",
			"abandoned", abandoned,
			"waited", time.Since(start))
		return err
	}

	t.logger.Info("background tasks stopped", "waited", time.Since(start))
	return nil
}

func (t *Tasks) setState(state RunnerState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
}
