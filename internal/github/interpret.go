package github

import (
	gh "github.com/google/go-github/v66/github"
	"github.com/phrazzld/slack-github-tracker/internal/domain"
	"github.com/phrazzld/slack-github-tracker/internal/events"
)

// Incoming is a verified delivery with its payload parsed by go-github.
type Incoming struct {
	Headers RawHeaders
	Payload any
}

// Interpreter turns a delivery into zero or more events.
type Interpreter interface {
	Interpret(incoming Incoming) []events.Event
}

// InterpreterFunc adapts a function to the Interpreter interface.
type InterpreterFunc func(incoming Incoming) []events.Event

// Interpret calls f(incoming).
func (f InterpreterFunc) Interpret(incoming Incoming) []events.Event {
	return f(incoming)
}

// Interpreters offers each delivery to every interpreter in order and
// collects everything they produce.
type Interpreters []Interpreter

// Interpret implements Interpreter.
func (is Interpreters) Interpret(incoming Incoming) []events.Event {
	var out []events.Event
	for _, i := range is {
		out = append(out, i.Interpret(incoming)...)
	}
	return out
}

// DefaultInterpreters returns the interpreters for every accepted event type.
func DefaultInterpreters() Interpreters {
	return Interpreters{
		InterpreterFunc(interpretPullRequest),
		InterpreterFunc(interpretPullRequestReview),
	}
}

func interpretPullRequest(incoming Incoming) []events.Event {
	payload, ok := incoming.Payload.(*gh.PullRequestEvent)
	if !ok || incoming.Headers.Event != "pull_request" {
		return nil
	}

	pr, ok := prFromRepo(payload.GetRepo(), payload.GetNumber())
	if !ok {
		return nil
	}

	return []events.Event{&PullRequestEvent{
		Metadata: events.NewMetadata(),
		Delivery: incoming.Headers.Delivery,
		Action:   payload.GetAction(),
		PR:       pr,
		Sender:   payload.GetSender().GetLogin(),
	}}
}

func interpretPullRequestReview(incoming Incoming) []events.Event {
	payload, ok := incoming.Payload.(*gh.PullRequestReviewEvent)
	if !ok || incoming.Headers.Event != "pull_request_review" {
		return nil
	}

	pr, ok := prFromRepo(payload.GetRepo(), payload.GetPullRequest().GetNumber())
	if !ok {
		return nil
	}

	return []events.Event{&PullRequestReviewEvent{
		Metadata: events.NewMetadata(),
		Delivery: incoming.Headers.Delivery,
		Action:   payload.GetAction(),
		State:    payload.GetReview().GetState(),
		PR:       pr,
		Reviewer: payload.GetReview().GetUser().GetLogin(),
	}}
}

func prFromRepo(repo *gh.Repository, number int) (domain.PR, bool) {
	pr := domain.PR{
		Organisation: repo.GetOwner().GetLogin(),
		Repo:         repo.GetName(),
		Number:       number,
	}
	return pr, pr.Validate() == nil
}
