package background

import (
	"iter"
	"sync"
)

type queuePhase int

const (
	phaseBuffering queuePhase = iota
	phaseLive
	phaseClosed
)

// Queue collects items before any consumer exists and becomes a live
// hand-off queue on the first call to Drain.
//
// While buffering, Append only records items. The first Drain snapshots the
// buffer, binds the queue to a Signal and re-appends the snapshot in order, so
// every buffered item is delivered before anything appended afterwards.
// Consumers compete: each item is delivered to exactly one of them.
//
// The queue closes once its signal is terminal and the last consumer has
// returned. Items appended after that, or left behind by that consumer, are
// handed to the drop handler instead of being kept.
type Queue[T any] struct {
	mu       sync.Mutex
	phase    queuePhase
	buffered []T

	// live phase
	pending   []T
	signal    *Signal
	wake      chan struct{}
	consumers int
	exited    bool

	onDrop func(item T)
}

// NewQueue creates an empty queue in the buffering phase.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// SetDropHandler registers fn to receive every item the queue discards after
// it has closed. fn is called without the queue's lock held.
func (q *Queue[T]) SetDropHandler(fn func(item T)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onDrop = fn
}

// Append adds item to the queue. It never blocks and never fails; on a
// closed queue the item goes to the drop handler.
func (q *Queue[T]) Append(item T) {
	q.mu.Lock()
	switch {
	case q.phase == phaseBuffering:
		q.buffered = append(q.buffered, item)
		q.mu.Unlock()
		return
	case q.phase == phaseLive && !q.idleAfterStopLocked():
		q.pending = append(q.pending, item)
		close(q.wake)
		q.wake = make(chan struct{})
		q.mu.Unlock()
		return
	}

	dropped := append(q.closeLocked(), item)
	onDrop := q.onDrop
	q.mu.Unlock()

	drop(onDrop, dropped)
}

// Drain returns a sequence of queued items. Only the first call performs the
// buffering to live transition and binds sig; later calls attach another
// consumer to the existing live queue and ignore their sig argument.
//
// Each range over the returned sequence is an independent consumer. It blocks
// waiting for items and ends once the bound signal is terminal and no items
// remain.
func (q *Queue[T]) Drain(sig *Signal) iter.Seq[T] {
	q.mu.Lock()
	if q.phase == phaseBuffering {
		snapshot := q.buffered
		q.buffered = nil

		q.signal = sig
		q.wake = make(chan struct{})
		q.phase = phaseLive

		q.pending = append(q.pending, snapshot...)
	}
	bound := q.signal
	q.mu.Unlock()

	return func(yield func(T) bool) {
		q.enter()
		defer q.exit()

		for {
			item, ok := q.next(bound)
			if !ok {
				return
			}
			if !yield(item) {
				return
			}
		}
	}
}

// Len reports the number of items not yet handed to a consumer.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buffered) + len(q.pending)
}

// Live reports whether the queue has left the buffering phase.
func (q *Queue[T]) Live() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.phase != phaseBuffering
}

// Closed reports whether the queue has stopped accepting items.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.phase == phaseClosed
}

func (q *Queue[T]) enter() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.consumers++
}

// exit closes the queue when the last consumer leaves after the signal is
// terminal. Anything still pending at that point can no longer be consumed.
func (q *Queue[T]) exit() {
	q.mu.Lock()
	q.consumers--
	q.exited = true
	if q.phase != phaseLive || !q.idleAfterStopLocked() {
		q.mu.Unlock()
		return
	}
	dropped := q.closeLocked()
	onDrop := q.onDrop
	q.mu.Unlock()

	drop(onDrop, dropped)
}

// idleAfterStopLocked reports whether no consumer can ever read again: the
// signal is terminal and every consumer that ranged has returned.
func (q *Queue[T]) idleAfterStopLocked() bool {
	return q.exited && q.consumers == 0 && q.signal.State() != SignalPending
}

func (q *Queue[T]) closeLocked() []T {
	q.phase = phaseClosed
	rest := q.pending
	q.pending = nil
	return rest
}

func drop[T any](onDrop func(item T), items []T) {
	if onDrop == nil {
		return
	}
	for _, item := range items {
		onDrop(item)
	}
}

// next pops the oldest pending item, waiting for one if necessary.
// Pending items are preferred over signal termination so nothing enqueued
// before cancellation is lost.
func (q *Queue[T]) next(sig *Signal) (T, bool) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			item := q.pending[0]
			q.pending[0] = zero
			q.pending = q.pending[1:]
			q.mu.Unlock()
			return item, true
		}
		wake := q.wake
		q.mu.Unlock()

		select {
		case <-sig.Done():
			return q.popAfterStop()
		default:
		}

		select {
		case <-wake:
		case <-sig.Done():
			return q.popAfterStop()
		}
	}
}

func (q *Queue[T]) popAfterStop() (T, bool) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return zero, false
	}
	item := q.pending[0]
	q.pending[0] = zero
	q.pending = q.pending[1:]
	return item, true
}
