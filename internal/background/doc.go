// Package background supervises the long-running and deferred work of the
// server.
//
// Work is registered with a Tasks registry as TaskAdder values, either before
// the runtime starts or while it runs. Tasks.Run opens the runtime scope: it
// creates a Signal (the shared "stop now" marker) and a Holder (the supervisor
// of running goroutines), drains every registered adder into the holder, and on
// exit cancels the signal and waits for the holder to empty.
//
// Cancellation is cooperative. A task receives the signal's context and must
// return promptly once ctx.Done() is closed; a task that ignores it keeps the
// runner waiting until the configured abandon timeout elapses.
package background
