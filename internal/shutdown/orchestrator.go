// Package shutdown turns an external stop request into an orderly shutdown:
// the transport stops accepting work first, and the background runtime is
// cancelled once the transport has drained or a grace period has passed,
// whichever comes first.
package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/phrazzld/slack-github-tracker/internal/metrics"
)

// State is the lifecycle state of an Orchestrator.
type State string

// Orchestrator states. Resolved and forced are terminal.
const (
	StateArmed     State = "armed"
	StateTriggered State = "triggered"
	StateResolved  State = "resolved"
	StateForced    State = "forced"
)

// Orchestrator coordinates one shutdown. It is safe for concurrent use.
type Orchestrator struct {
	grace  time.Duration
	cancel func()
	logger *slog.Logger

	mu    sync.Mutex
	state State
	timer *time.Timer

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates an armed orchestrator. cancel is called exactly once, when the
// shutdown resolves or is forced; it is normally the runtime signal's Cancel.
func New(grace time.Duration, cancel func(), logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		grace:  grace,
		cancel: cancel,
		logger: logger.With("component", "shutdown"),
		state:  StateArmed,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// StopAccepting is closed when the transport should stop taking new work.
func (o *Orchestrator) StopAccepting() <-chan struct{} {
	return o.stop
}

// Done is closed once the shutdown has resolved or been forced.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.done
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Trigger starts the shutdown. Only the first call has any effect.
func (o *Orchestrator) Trigger(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateArmed {
		o.logger.Debug("shutdown already in progress", "reason", reason, "state", o.state)
		return
	}

	o.state = StateTriggered
	o.timer = time.AfterFunc(o.grace, o.force)
	o.closeStop()

	o.logger.Info("shutdown triggered",
		"reason", reason,
		"grace_period", o.grace)
}

// Drained reports that the transport has finished its in-flight work. It
// resolves the shutdown, and may be called without a prior Trigger when the
// transport stopped on its own.
func (o *Orchestrator) Drained() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.closeStop()
	if o.state == StateResolved || o.state == StateForced {
		return
	}
	if o.timer != nil {
		o.timer.Stop()
	}

	o.state = StateResolved
	o.cancel()
	close(o.done)

	metrics.ShutdownTotal.WithLabelValues(string(StateResolved)).Inc()
	o.logger.Info("transport drained, stopping background tasks")
}

func (o *Orchestrator) force() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateTriggered {
		return
	}

	o.state = StateForced
	o.cancel()
	close(o.done)

	metrics.ShutdownTotal.WithLabelValues(string(StateForced)).Inc()
	o.logger.Warn("graceful shutdown timed out, cancelling background tasks",
		"grace_period", o.grace)
}

func (o *Orchestrator) closeStop() {
	o.stopOnce.Do(func() { close(o.stop) })
}

// Watch blocks until one of sigs is received, triggers the shutdown and
// returns nil. It returns when ctx is done or the shutdown was triggered
// elsewhere. With no sigs it listens for SIGINT and SIGTERM.
func (o *Orchestrator) Watch(ctx context.Context, sigs ...os.Signal) error {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	defer signal.Stop(ch)

	select {
	case sig := <-ch:
		o.Trigger(sig.String())
	case <-o.stop:
	case <-ctx.Done():
	}
	return nil
}
