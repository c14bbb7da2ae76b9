package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/slack-github-tracker/internal/background"
	"github.com/phrazzld/slack-github-tracker/internal/domain"
	"github.com/phrazzld/slack-github-tracker/internal/events"
	"github.com/phrazzld/slack-github-tracker/internal/metrics"
	"github.com/phrazzld/slack-github-tracker/internal/platform/slack"
	"github.com/phrazzld/slack-github-tracker/internal/store"
)

// CommandTrackPR is the slash command that starts tracking a pull request.
const CommandTrackPR = "/track_pr"

// greetingKeyword triggers a greeting when it appears in a channel message.
const greetingKeyword = "hello"

// Command results, used as metric labels.
const (
	resultOK         = "ok"
	resultInvalid    = "invalid"
	resultFailed     = "failed"
	resultDropped    = "dropped"
	resultUnknown    = "unknown"
	unknownCommandID = "unknown"
)

// Command is a slash command invocation.
type Command struct {
	Command     string
	Text        string
	UserID      string
	ChannelID   string
	ResponseURL string
}

// Message is a message posted to a channel the bot is in.
type Message struct {
	ChannelID string
	UserID    string
	Text      string
}

// TrackingService handles Slack commands and messages. Handlers return as
// soon as the work is registered; the work itself runs as background tasks.
type TrackingService interface {
	// HandleCommand registers the work for a slash command.
	HandleCommand(ctx context.Context, cmd Command) error

	// HandleMessage registers a reply to a channel message, if one is due.
	HandleMessage(ctx context.Context, msg Message) error
}

type trackingServiceImpl struct {
	store     store.PRStore
	messenger slack.Messenger
	tasks     events.TaskRegistry
	logger    *slog.Logger
}

// NewTrackingService creates a TrackingService.
// It returns an error if any of the dependencies are nil.
func NewTrackingService(
	prStore store.PRStore,
	messenger slack.Messenger,
	tasks events.TaskRegistry,
	logger *slog.Logger,
) (TrackingService, error) {
	if prStore == nil {
		return nil, fmt.Errorf("prStore cannot be nil")
	}
	if messenger == nil {
		return nil, fmt.Errorf("messenger cannot be nil")
	}
	if tasks == nil {
		return nil, fmt.Errorf("tasks cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &trackingServiceImpl{
		store:     prStore,
		messenger: messenger,
		tasks:     tasks,
		logger:    logger.With("component", "tracking_service"),
	}, nil
}

// HandleCommand implements TrackingService.
func (s *trackingServiceImpl) HandleCommand(ctx context.Context, cmd Command) error {
	if cmd.Command != CommandTrackPR {
		metrics.SlackCommandsTotal.WithLabelValues(unknownCommandID, resultUnknown).Inc()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Command)
	}

	s.tasks.Append(s.spawn(ctx, "track_pr", cmd.Command, func(ctx context.Context) error {
		return s.trackPR(ctx, cmd)
	}))
	return nil
}

// HandleMessage implements TrackingService.
func (s *trackingServiceImpl) HandleMessage(ctx context.Context, msg Message) error {
	if !strings.Contains(msg.Text, greetingKeyword) {
		return nil
	}

	s.tasks.Append(s.spawn(ctx, "greet", "", func(ctx context.Context) error {
		text := fmt.Sprintf("Hey there <@%s>!", msg.UserID)
		if err := s.messenger.PostMessage(ctx, msg.ChannelID, text); err != nil {
			return fmt.Errorf("failed to greet user %s: %w", msg.UserID, err)
		}
		return nil
	}))
	return nil
}

// spawn wraps fn in a task adder. The request context only provides the
// logger; the task runs under the runtime's context.
func (s *trackingServiceImpl) spawn(
	reqCtx context.Context,
	name, command string,
	fn background.TaskFunc,
) background.TaskAdder {
	log := s.logger
	return func(sig *background.Signal, holder *background.Holder) {
		if err := holder.Add(name, fn); err != nil {
			if command != "" {
				metrics.SlackCommandsTotal.WithLabelValues(command, resultDropped).Inc()
			}
			log.WarnContext(reqCtx, "slack work dropped during shutdown", "task", name, "error", err)
		}
	}
}

func (s *trackingServiceImpl) trackPR(ctx context.Context, cmd Command) error {
	log := s.logger.With("command", cmd.Command, "user_id", cmd.UserID, "channel_id", cmd.ChannelID)

	err := s.storeAndAnnounce(ctx, cmd)
	if err == nil {
		metrics.SlackCommandsTotal.WithLabelValues(cmd.Command, resultOK).Inc()
		return nil
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		cmdErr = &CommandError{Command: cmd.Command, Message: "unexpected failure", Err: err}
	}

	if errors.Is(err, ErrInvalidPR) {
		metrics.SlackCommandsTotal.WithLabelValues(cmd.Command, resultInvalid).Inc()
		log.InfoContext(ctx, "rejected invalid pull request reference", "text", cmd.Text, "error", err)
	} else {
		metrics.SlackCommandsTotal.WithLabelValues(cmd.Command, resultFailed).Inc()
		log.ErrorContext(ctx, "failed to process command", "error", err)
	}

	if rerr := s.reply(ctx, cmd, cmdErr.UserMessage()); rerr != nil {
		return errors.Join(cmdErr, fmt.Errorf("failed to report command failure: %w", rerr))
	}

	// Bad input has been reported to the user; it is not a task failure.
	if errors.Is(err, ErrInvalidPR) {
		return nil
	}
	return cmdErr
}

func (s *trackingServiceImpl) storeAndAnnounce(ctx context.Context, cmd Command) error {
	pr, err := domain.ParsePR(cmd.Text)
	if err != nil {
		return NewCommandError(cmd.Command, "failed to parse pull request", fmt.Errorf("%w: %w", ErrInvalidPR, err))
	}

	req, err := domain.NewPRRequest(pr, cmd.UserID, cmd.ChannelID)
	if err != nil {
		return NewCommandError(cmd.Command, "invalid tracking request", err)
	}

	if err := s.store.StorePRRequest(ctx, req); err != nil {
		return NewCommandError(cmd.Command, "failed to store tracking request", err)
	}

	if err := s.messenger.PostMessage(ctx, cmd.ChannelID, "Tracking "+pr.Display()); err != nil {
		return NewCommandError(cmd.Command, "failed to announce tracking", err)
	}

	if err := s.reply(ctx, cmd, fmt.Sprintf("Hi <@%s>!", cmd.UserID)); err != nil {
		return NewCommandError(cmd.Command, "failed to respond", err)
	}

	return nil
}

// reply sends text to the user who ran cmd, visible only to them. Without a
// response_url it falls back to an ephemeral message in the channel.
func (s *trackingServiceImpl) reply(ctx context.Context, cmd Command, text string) error {
	if cmd.ResponseURL == "" {
		return s.messenger.PostEphemeral(ctx, cmd.ChannelID, cmd.UserID, text)
	}
	return s.messenger.Respond(ctx, cmd.ResponseURL, text)
}
