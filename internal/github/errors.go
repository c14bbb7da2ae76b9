package github

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSignature is returned when a delivery's X-Hub-Signature-256
	// does not match the configured webhook secret.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrWebhookDropped is returned for deliveries that are valid but
	// produce no event.
	ErrWebhookDropped = errors.New("github webhook dropped")
)

// DroppedError records which delivery was dropped and why.
type DroppedError struct {
	Event  string
	Reason string
}

func (e *DroppedError) Error() string {
	return fmt.Sprintf("%s: event=%s reason=%s", ErrWebhookDropped, e.Event, e.Reason)
}

// Is makes errors.Is(err, ErrWebhookDropped) true for every DroppedError.
func (e *DroppedError) Is(target error) bool {
	return target == ErrWebhookDropped
}

// Drop reasons, also used as metric labels.
const (
	ReasonUnsupportedEvent = "unsupported_event"
	ReasonNotInterpreted   = "not_interpreted"
	ReasonMalformed        = "malformed_payload"
)
