package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/slack-github-tracker/internal/platform/slack"
)

// SentMessage is one message sent through a MockMessenger.
type SentMessage struct {
	// Kind is "message", "ephemeral" or "respond".
	Kind        string
	ChannelID   string
	UserID      string
	ResponseURL string
	Text        string
}

// MockMessenger implements slack.Messenger for testing
type MockMessenger struct {
	// Err, when set, is returned by every method after the message is recorded.
	Err error

	// Function fields for customizable behavior; they take precedence over Err
	PostMessageFn   func(ctx context.Context, channelID, text string) error
	PostEphemeralFn func(ctx context.Context, channelID, userID, text string) error
	RespondFn       func(ctx context.Context, responseURL, text string) error

	mu   sync.Mutex
	sent []SentMessage
}

func (m *MockMessenger) record(msg SentMessage, override func() error) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	err := m.Err
	m.mu.Unlock()

	if override != nil {
		return override()
	}
	return err
}

// PostMessage implements the Messenger interface
func (m *MockMessenger) PostMessage(ctx context.Context, channelID, text string) error {
	var override func() error
	if m.PostMessageFn != nil {
		override = func() error { return m.PostMessageFn(ctx, channelID, text) }
	}
	return m.record(SentMessage{Kind: "message", ChannelID: channelID, Text: text}, override)
}

// PostEphemeral implements the Messenger interface
func (m *MockMessenger) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	var override func() error
	if m.PostEphemeralFn != nil {
		override = func() error { return m.PostEphemeralFn(ctx, channelID, userID, text) }
	}
	return m.record(SentMessage{Kind: "ephemeral", ChannelID: channelID, UserID: userID, Text: text}, override)
}

// Respond implements the Messenger interface
func (m *MockMessenger) Respond(ctx context.Context, responseURL, text string) error {
	var override func() error
	if m.RespondFn != nil {
		override = func() error { return m.RespondFn(ctx, responseURL, text) }
	}
	return m.record(SentMessage{Kind: "respond", ResponseURL: responseURL, Text: text}, override)
}

// Texts returns the texts of every recorded message of the given kind.
func (m *MockMessenger) Texts(kind string) []string {
	var out []string
	for _, msg := range m.Sent() {
		if msg.Kind == kind {
			out = append(out, msg.Text)
		}
	}
	return out
}

// Sent returns every message recorded so far.
func (m *MockMessenger) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}

// PostedTexts returns the texts of channel messages recorded so far.
func (m *MockMessenger) PostedTexts() []string {
	return m.Texts("message")
}

var _ slack.Messenger = (*MockMessenger)(nil)
