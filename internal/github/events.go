package github

import (
	"context"
	"fmt"

	"github.com/phrazzld/slack-github-tracker/internal/domain"
	"github.com/phrazzld/slack-github-tracker/internal/events"
)

// PullRequestEvent is produced for pull_request deliveries.
type PullRequestEvent struct {
	events.Metadata
	Delivery string
	Action   string
	PR       domain.PR
	Sender   string
}

// Type implements events.Event.
func (e *PullRequestEvent) Type() string { return "pull_request" }

// Process implements events.Event. It looks up who tracks the PR and logs
// the delivery; no message is sent yet.
func (e *PullRequestEvent) Process(ctx context.Context, info *events.ProcessInfo) error {
	trackers, err := countTrackers(ctx, info, e.PR)
	if err != nil {
		return err
	}
	info.Logger.DebugContext(ctx, "processed pull request event",
		"delivery", e.Delivery,
		"action", e.Action,
		"pr", e.PR.Display(),
		"sender", e.Sender,
		"trackers", trackers)
	return nil
}

// PullRequestReviewEvent is produced for pull_request_review deliveries.
type PullRequestReviewEvent struct {
	events.Metadata
	Delivery string
	Action   string
	State    string
	PR       domain.PR
	Reviewer string
}

// Type implements events.Event.
func (e *PullRequestReviewEvent) Type() string { return "pull_request_review" }

// Process implements events.Event.
func (e *PullRequestReviewEvent) Process(ctx context.Context, info *events.ProcessInfo) error {
	trackers, err := countTrackers(ctx, info, e.PR)
	if err != nil {
		return err
	}
	info.Logger.DebugContext(ctx, "processed pull request review event",
		"delivery", e.Delivery,
		"action", e.Action,
		"state", e.State,
		"pr", e.PR.Display(),
		"reviewer", e.Reviewer,
		"trackers", trackers)
	return nil
}

func countTrackers(ctx context.Context, info *events.ProcessInfo, pr domain.PR) (int, error) {
	if info.Store == nil {
		return 0, nil
	}
	requests, err := info.Store.ListPRRequests(ctx, pr)
	if err != nil {
		return 0, fmt.Errorf("failed to look up trackers for %s: %w", pr.Display(), err)
	}
	return len(requests), nil
}
