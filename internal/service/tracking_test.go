package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/slack-github-tracker/internal/background"
	"github.com/phrazzld/slack-github-tracker/internal/domain"
	"github.com/phrazzld/slack-github-tracker/internal/metrics"
	"github.com/phrazzld/slack-github-tracker/internal/mocks"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// collectingTasks records appended adders so tests can run them under a
// real runtime.
type collectingTasks struct {
	adders []background.TaskAdder
}

func (c *collectingTasks) Append(adder background.TaskAdder) {
	c.adders = append(c.adders, adder)
}

// runUntil runs every collected adder under a real runtime and keeps it open
// until cond holds.
func (c *collectingTasks) runUntil(t *testing.T, cond func() bool) {
	t.Helper()
	tasks := background.NewTasks(background.DefaultConfig(), testLogger())
	for _, adder := range c.adders {
		tasks.Append(adder)
	}
	err := tasks.Run(context.Background(), func(r *background.Runner) error {
		assert.Eventually(t, cond, time.Second, 5*time.Millisecond, "timed out waiting for slack work")
		return nil
	})
	require.NoError(t, err)
}

// sentCount returns a condition that holds once n messages have been sent.
func sentCount(m *mocks.MockMessenger, n int) func() bool {
	return func() bool { return len(m.Sent()) >= n }
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (TrackingService, *mocks.MockPRStore, *mocks.MockMessenger, *collectingTasks) {
	t.Helper()
	prStore := &mocks.MockPRStore{}
	messenger := &mocks.MockMessenger{}
	tasks := &collectingTasks{}
	svc, err := NewTrackingService(prStore, messenger, tasks, testLogger())
	require.NoError(t, err)
	return svc, prStore, messenger, tasks
}

func trackCommand(text string) Command {
	return Command{
		Command:     CommandTrackPR,
		Text:        text,
		UserID:      "U123",
		ChannelID:   "C456",
		ResponseURL: "https://hooks.slack.com/commands/T1/1/abc",
	}
}

func commandCount(result string) float64 {
	return testutil.ToFloat64(metrics.SlackCommandsTotal.WithLabelValues(CommandTrackPR, result))
}

func TestNewTrackingService(t *testing.T) {
	prStore := &mocks.MockPRStore{}
	messenger := &mocks.MockMessenger{}
	tasks := &collectingTasks{}

	_, err := NewTrackingService(nil, messenger, tasks, nil)
	assert.Error(t, err)
	_, err = NewTrackingService(prStore, nil, tasks, nil)
	assert.Error(t, err)
	_, err = NewTrackingService(prStore, messenger, nil, nil)
	assert.Error(t, err)

	svc, err := NewTrackingService(prStore, messenger, tasks, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestTrackPR_Success(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc, prStore, messenger, tasks := newTestService(t)
	cmd := trackCommand("https://github.com/acme/tracker/pull/7")

	before := commandCount(resultOK)
	require.NoError(t, svc.HandleCommand(context.Background(), cmd))

	// Nothing happens until the runtime picks up the work.
	require.Len(t, tasks.adders, 1)
	assert.Empty(t, prStore.Requests())

	tasks.runUntil(t, sentCount(messenger, 2))

	requests := prStore.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, domain.PR{Organisation: "acme", Repo: "tracker", Number: 7}, requests[0].PR)
	assert.Equal(t, "U123", requests[0].UserID)
	assert.Equal(t, "C456", requests[0].ChannelID)

	assert.Equal(t, []mocks.SentMessage{
		{Kind: "message", ChannelID: "C456", Text: "Tracking PR#7 in acme/tracker"},
		{Kind: "respond", ResponseURL: cmd.ResponseURL, Text: "Hi <@U123>!"},
	}, messenger.Sent())
	assert.Equal(t, 1.0, commandCount(resultOK)-before)
}

func TestTrackPR_WithoutResponseURLPostsEphemeral(t *testing.T) {
	svc, _, messenger, tasks := newTestService(t)
	cmd := trackCommand("acme/tracker/pull/7")
	cmd.ResponseURL = ""

	require.NoError(t, svc.HandleCommand(context.Background(), cmd))
	tasks.runUntil(t, sentCount(messenger, 2))

	assert.Equal(t, []mocks.SentMessage{
		{Kind: "message", ChannelID: "C456", Text: "Tracking PR#7 in acme/tracker"},
		{Kind: "ephemeral", ChannelID: "C456", UserID: "U123", Text: "Hi <@U123>!"},
	}, messenger.Sent())
	assert.Empty(t, messenger.Texts("respond"))
}

func TestTrackPR_InvalidPR(t *testing.T) {
	inputs := []string{
		"",
		"not a pr",
		"https://gitlab.com/acme/tracker/pull/7",
		"acme/tracker/issues/7",
		"acme/tracker/pull/seven",
	}

	for _, text := range inputs {
		t.Run(text, func(t *testing.T) {
			svc, prStore, messenger, tasks := newTestService(t)
			cmd := trackCommand(text)

			before := commandCount(resultInvalid)
			require.NoError(t, svc.HandleCommand(context.Background(), cmd))
			tasks.runUntil(t, sentCount(messenger, 1))

			assert.Equal(t, []mocks.SentMessage{
				{Kind: "respond", ResponseURL: cmd.ResponseURL, Text: InvalidPRMessage(CommandTrackPR)},
			}, messenger.Sent())
			assert.Empty(t, prStore.Requests())
			assert.Equal(t, 1.0, commandCount(resultInvalid)-before)
		})
	}
}

func TestTrackPR_StoreFailure(t *testing.T) {
	svc, prStore, messenger, tasks := newTestService(t)
	prStore.StorePRRequestFn = func(ctx context.Context, req *domain.PRRequest) error {
		return assert.AnError
	}
	cmd := trackCommand("acme/tracker/pull/7")

	before := commandCount(resultFailed)
	require.NoError(t, svc.HandleCommand(context.Background(), cmd))
	tasks.runUntil(t, sentCount(messenger, 1))

	assert.Equal(t, []mocks.SentMessage{
		{Kind: "respond", ResponseURL: cmd.ResponseURL, Text: FailedCommandMessage},
	}, messenger.Sent())
	assert.Empty(t, messenger.PostedTexts())
	assert.Equal(t, 1.0, commandCount(resultFailed)-before)
}

func TestTrackPR_ReturnsCommandError(t *testing.T) {
	svc, _, messenger, _ := newTestService(t)
	messenger.PostMessageFn = func(ctx context.Context, channelID, text string) error {
		return assert.AnError
	}
	impl := svc.(*trackingServiceImpl)
	cmd := trackCommand("acme/tracker/pull/7")

	err := impl.trackPR(context.Background(), cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, CommandTrackPR, cmdErr.Command)
	assert.Equal(t, FailedCommandMessage, cmdErr.UserMessage())
	assert.Equal(t, []string{FailedCommandMessage}, messenger.Texts("respond"))
}

func TestHandleCommand_Unknown(t *testing.T) {
	svc, _, _, tasks := newTestService(t)

	err := svc.HandleCommand(context.Background(), Command{Command: "/untrack_pr"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Empty(t, tasks.adders)
}

func TestHandleMessage(t *testing.T) {
	t.Run("greets on hello", func(t *testing.T) {
		svc, _, messenger, tasks := newTestService(t)

		require.NoError(t, svc.HandleMessage(context.Background(), Message{
			ChannelID: "C1",
			UserID:    "U9",
			Text:      "well hello everyone",
		}))
		tasks.runUntil(t, sentCount(messenger, 1))

		assert.Equal(t, []mocks.SentMessage{
			{Kind: "message", ChannelID: "C1", Text: "Hey there <@U9>!"},
		}, messenger.Sent())
	})

	t.Run("ignores other messages", func(t *testing.T) {
		svc, _, messenger, tasks := newTestService(t)

		require.NoError(t, svc.HandleMessage(context.Background(), Message{
			ChannelID: "C1",
			UserID:    "U9",
			Text:      "good morning",
		}))

		assert.Empty(t, tasks.adders)
		assert.Empty(t, messenger.Sent())
	})
}

func TestCommandError(t *testing.T) {
	assert.Nil(t, NewCommandError(CommandTrackPR, "noop", nil))

	invalid := NewCommandError(CommandTrackPR, "failed to parse", ErrInvalidPR)
	var cmdErr *CommandError
	require.ErrorAs(t, invalid, &cmdErr)
	assert.Equal(t, InvalidPRMessage(CommandTrackPR), cmdErr.UserMessage())
	assert.Contains(t, invalid.Error(), "command /track_pr failed: failed to parse")

	assert.Equal(t,
		"Please provide one argument to /track_pr as a url that is either "+
			"`github.com/<organisation>/<repo>/pull/<pr_number>` or `<organisation>/<repo>/pull/<pr_number>`",
		InvalidPRMessage(CommandTrackPR))
}
