package github

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/slack-github-tracker/internal/domain"
	"github.com/phrazzld/slack-github-tracker/internal/events"
	"github.com/phrazzld/slack-github-tracker/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "webhook-secret"

const pullRequestPayload = `{
	"action": "opened",
	"number": 7,
	"pull_request": {"number": 7, "title": "Add tracker"},
	"repository": {"name": "tracker", "owner": {"login": "acme"}},
	"sender": {"login": "octocat"}
}`

const reviewPayload = `{
	"action": "submitted",
	"review": {"state": "approved", "user": {"login": "reviewer"}},
	"pull_request": {"number": 12},
	"repository": {"name": "tracker", "owner": {"login": "acme"}}
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func deliveryRequest(event, body, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/github/webhooks", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, event)
	req.Header.Set(HeaderDelivery, "72d3162e-cc78-11e3-81ab-4c9367dc0958")
	req.Header.Set(HeaderHookID, "292430182")
	req.Header.Set(HeaderInstallationTargetID, "79929171")
	req.Header.Set(HeaderInstallationTargetType, "repository")
	if signature != "" {
		req.Header.Set(HeaderSignature256, signature)
	}
	return req
}

type emitted struct {
	events []events.Event
}

func (e *emitted) Emit(event events.Event) {
	e.events = append(e.events, event)
}

func TestHeadersFromRequest(t *testing.T) {
	req := deliveryRequest("pull_request", "{}", "")

	headers := HeadersFromRequest(req.Header)

	assert.Equal(t, RawHeaders{
		Event:                  "pull_request",
		HookID:                 "292430182",
		Delivery:               "72d3162e-cc78-11e3-81ab-4c9367dc0958",
		InstallationTargetID:   "79929171",
		InstallationTargetType: "repository",
	}, headers)
}

func TestHooks_ValidatePayload(t *testing.T) {
	hooks := NewHooks(testSecret, &emitted{}, nil, testLogger())

	t.Run("valid signature", func(t *testing.T) {
		payload, err := hooks.ValidatePayload(deliveryRequest("pull_request", pullRequestPayload, sign(pullRequestPayload)))
		require.NoError(t, err)
		assert.JSONEq(t, pullRequestPayload, string(payload))
	})

	t.Run("wrong signature", func(t *testing.T) {
		_, err := hooks.ValidatePayload(deliveryRequest("pull_request", pullRequestPayload, sign("something else")))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("missing signature", func(t *testing.T) {
		_, err := hooks.ValidatePayload(deliveryRequest("pull_request", pullRequestPayload, ""))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestHooks_ExpectedSignature(t *testing.T) {
	hooks := NewHooks(testSecret, &emitted{}, nil, testLogger())
	assert.Equal(t, sign(pullRequestPayload), hooks.ExpectedSignature([]byte(pullRequestPayload)))
}

func TestHooks_Register(t *testing.T) {
	t.Run("pull request", func(t *testing.T) {
		emitter := &emitted{}
		hooks := NewHooks(testSecret, emitter, nil, testLogger())

		produced, err := hooks.Register(RawHeaders{Event: "pull_request", Delivery: "d-1"}, []byte(pullRequestPayload))
		require.NoError(t, err)
		require.Len(t, produced, 1)
		assert.Equal(t, produced, emitter.events)

		event, ok := produced[0].(*PullRequestEvent)
		require.True(t, ok)
		assert.Equal(t, "opened", event.Action)
		assert.Equal(t, "d-1", event.Delivery)
		assert.Equal(t, "octocat", event.Sender)
		assert.Equal(t, domain.PR{Organisation: "acme", Repo: "tracker", Number: 7}, event.PR)
	})

	t.Run("pull request review", func(t *testing.T) {
		emitter := &emitted{}
		hooks := NewHooks(testSecret, emitter, nil, testLogger())

		produced, err := hooks.Register(RawHeaders{Event: "pull_request_review"}, []byte(reviewPayload))
		require.NoError(t, err)
		require.Len(t, produced, 1)

		event, ok := produced[0].(*PullRequestReviewEvent)
		require.True(t, ok)
		assert.Equal(t, "approved", event.State)
		assert.Equal(t, "reviewer", event.Reviewer)
		assert.Equal(t, 12, event.PR.Number)
	})

	dropped := []struct {
		name    string
		event   string
		payload string
		reason  string
	}{
		{"unsupported event", "push", `{"ref":"refs/heads/main"}`, ReasonUnsupportedEvent},
		{"malformed payload", "pull_request", `{"action":`, ReasonMalformed},
		{"no repository", "pull_request", `{"action":"opened","number":7}`, ReasonNotInterpreted},
	}
	for _, tc := range dropped {
		t.Run(tc.name, func(t *testing.T) {
			emitter := &emitted{}
			hooks := NewHooks(testSecret, emitter, nil, testLogger())

			produced, err := hooks.Register(RawHeaders{Event: tc.event}, []byte(tc.payload))
			require.ErrorIs(t, err, ErrWebhookDropped)
			var dropErr *DroppedError
			require.ErrorAs(t, err, &dropErr)
			assert.Equal(t, tc.reason, dropErr.Reason)
			assert.Equal(t, tc.event, dropErr.Event)
			assert.Empty(t, produced)
			assert.Empty(t, emitter.events)
		})
	}

	t.Run("custom interpreter returning nothing", func(t *testing.T) {
		emitter := &emitted{}
		none := InterpreterFunc(func(Incoming) []events.Event { return nil })
		hooks := NewHooks(testSecret, emitter, Interpreters{none}, testLogger())

		_, err := hooks.Register(RawHeaders{Event: "pull_request"}, []byte(pullRequestPayload))
		assert.ErrorIs(t, err, ErrWebhookDropped)
		assert.Empty(t, emitter.events)
	})
}

func TestPullRequestEvent_Process(t *testing.T) {
	pr := domain.PR{Organisation: "acme", Repo: "tracker", Number: 7}

	t.Run("looks up trackers", func(t *testing.T) {
		store := &mocks.MockPRStore{}
		require.NoError(t, store.StorePRRequest(context.Background(), &domain.PRRequest{PR: pr, UserID: "U1"}))
		info := &events.ProcessInfo{Logger: testLogger(), Store: store}

		err := (&PullRequestEvent{PR: pr}).Process(context.Background(), info)
		require.NoError(t, err)
		assert.Equal(t, []domain.PR{pr}, store.Listed())
	})

	t.Run("store failure", func(t *testing.T) {
		store := &mocks.MockPRStore{
			ListPRRequestsFn: func(ctx context.Context, pr domain.PR) ([]*domain.PRRequest, error) {
				return nil, assert.AnError
			},
		}
		info := &events.ProcessInfo{Logger: testLogger(), Store: store}

		err := (&PullRequestReviewEvent{PR: pr}).Process(context.Background(), info)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("no store", func(t *testing.T) {
		info := &events.ProcessInfo{Logger: testLogger()}
		assert.NoError(t, (&PullRequestEvent{PR: pr}).Process(context.Background(), info))
	})
}
