package slack

import (
	"context"
	"fmt"
	"log/slog"

	goslack "github.com/slack-go/slack"
)

// Messenger sends messages to Slack.
type Messenger interface {
	// PostMessage posts text to a channel.
	PostMessage(ctx context.Context, channelID, text string) error

	// PostEphemeral posts text to a channel, visible only to userID.
	PostEphemeral(ctx context.Context, channelID, userID, text string) error

	// Respond replies through a slash command's response_url. The reply is
	// visible only to the user who ran the command.
	Respond(ctx context.Context, responseURL, text string) error
}

// Client implements Messenger with the Slack Web API.
type Client struct {
	api    *goslack.Client
	logger *slog.Logger
}

// NewClient creates a client authenticated with a bot token. Options are
// passed to slack-go, e.g. goslack.OptionAPIURL in tests.
func NewClient(botToken string, logger *slog.Logger, opts ...goslack.Option) *Client {
	return &Client{
		api:    goslack.New(botToken, opts...),
		logger: logger.With("component", "slack_client"),
	}
}

// PostMessage implements Messenger.
func (c *Client) PostMessage(ctx context.Context, channelID, text string) error {
	_, ts, err := c.api.PostMessageContext(ctx, channelID, goslack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("failed to post message to %s: %w", channelID, err)
	}
	c.logger.DebugContext(ctx, "posted message", "channel", channelID, "ts", ts)
	return nil
}

// PostEphemeral implements Messenger.
func (c *Client) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	_, err := c.api.PostEphemeralContext(ctx, channelID, userID, goslack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("failed to post ephemeral message to %s: %w", channelID, err)
	}
	c.logger.DebugContext(ctx, "posted ephemeral message", "channel", channelID, "user", userID)
	return nil
}

// Respond implements Messenger.
func (c *Client) Respond(ctx context.Context, responseURL, text string) error {
	msg := &goslack.WebhookMessage{
		Text:         text,
		ResponseType: "ephemeral",
	}
	if err := goslack.PostWebhookContext(ctx, responseURL, msg); err != nil {
		return fmt.Errorf("failed to respond to command: %w", err)
	}
	return nil
}

// Ensure Client implements Messenger
var _ Messenger = (*Client)(nil)
