// Package github receives GitHub webhook deliveries and turns the ones the
// tracker cares about into events for the background runtime.
//
// Only pull_request and pull_request_review deliveries are accepted. Each
// accepted delivery is offered to every Interpreter; when none of them
// produce an event the delivery is dropped.
package github
