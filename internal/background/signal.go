package background

import (
	"context"
	"errors"
)

// SignalState is the observable state of a Signal.
type SignalState string

// Possible signal states. Cancelled and Failed are terminal.
const (
	SignalPending   SignalState = "pending"
	SignalCancelled SignalState = "cancelled"
	SignalFailed    SignalState = "failed"
)

// Signal is a single-fire completion marker shared by everything started
// inside a runner scope. The first call to Cancel or Fail wins; later calls
// are no-ops.
type Signal struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// NewSignal creates a pending signal. Cancelling parent cancels the signal.
func NewSignal(parent context.Context) *Signal {
	ctx, cancel := context.WithCancelCause(parent)
	return &Signal{ctx: ctx, cancel: cancel}
}

// Context returns the context that is done once the signal is terminal.
func (s *Signal) Context() context.Context {
	return s.ctx
}

// Done returns a channel closed when the signal becomes terminal.
func (s *Signal) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Cancel moves the signal to SignalCancelled. Safe to call repeatedly and
// from multiple goroutines.
func (s *Signal) Cancel() {
	s.cancel(context.Canceled)
}

// Fail moves the signal to SignalFailed with the given cause.
// A nil cause is treated as a plain cancellation.
func (s *Signal) Fail(cause error) {
	if cause == nil {
		cause = context.Canceled
	}
	s.cancel(cause)
}

// State reports the current state of the signal.
func (s *Signal) State() SignalState {
	if s.ctx.Err() == nil {
		return SignalPending
	}
	if errors.Is(context.Cause(s.ctx), context.Canceled) {
		return SignalCancelled
	}
	return SignalFailed
}

// Err returns nil while pending and the cause once terminal.
func (s *Signal) Err() error {
	if s.ctx.Err() == nil {
		return nil
	}
	return context.Cause(s.ctx)
}
