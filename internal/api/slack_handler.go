package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/slack-github-tracker/internal/api/shared"
	"github.com/phrazzld/slack-github-tracker/internal/platform/logger"
	"github.com/phrazzld/slack-github-tracker/internal/platform/slack"
	"github.com/phrazzld/slack-github-tracker/internal/service"
	goslack "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// SlackHandler serves the Slack Events API and slash command endpoints.
// Every request is verified against the app's signing secret before it is
// parsed.
type SlackHandler struct {
	signingSecret string
	tracking      service.TrackingService
	logger        *slog.Logger
}

// NewSlackHandler creates a new SlackHandler
func NewSlackHandler(signingSecret string, tracking service.TrackingService, logger *slog.Logger) *SlackHandler {
	return &SlackHandler{
		signingSecret: signingSecret,
		tracking:      tracking,
		logger:        logger.With("component", "slack_handler"),
	}
}

// Events handles POST /slack/events.
func (h *SlackHandler) Events(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	body, err := slack.VerifyRequest(r, h.signingSecret)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		respondWithMappedError(w, r, fmt.Errorf("%w: %v", errMalformedRequest, err))
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			respondWithMappedError(w, r, fmt.Errorf("%w: %v", errMalformedRequest, err))
			return
		}
		shared.RespondWithText(w, r, http.StatusOK, challenge.Challenge)
		return

	case slackevents.CallbackEvent:
		if msg, ok := event.InnerEvent.Data.(*slackevents.MessageEvent); ok && isUserMessage(msg) {
			err := h.tracking.HandleMessage(r.Context(), service.Message{
				ChannelID: msg.Channel,
				UserID:    msg.User,
				Text:      msg.Text,
			})
			if err != nil {
				respondWithMappedError(w, r, err)
				return
			}
		} else {
			log.Debug("ignoring slack event", "inner_type", event.InnerEvent.Type)
		}
	}

	w.WriteHeader(http.StatusOK)
}

// isUserMessage excludes bot messages and edits, so the bot never answers
// itself.
func isUserMessage(msg *slackevents.MessageEvent) bool {
	return msg.BotID == "" && msg.SubType == "" && msg.User != ""
}

// Commands handles POST /slack/commands. The command is acknowledged at once
// with an empty 200; replies are sent later through the response URL.
func (h *SlackHandler) Commands(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if _, err := slack.VerifyRequest(r, h.signingSecret); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	cmd, err := goslack.SlashCommandParse(r)
	if err != nil {
		respondWithMappedError(w, r, fmt.Errorf("%w: %v", errMalformedRequest, err))
		return
	}

	log.Info("slash command received",
		"command", cmd.Command,
		"user_id", cmd.UserID,
		"channel_id", cmd.ChannelID)

	err = h.tracking.HandleCommand(r.Context(), service.Command{
		Command:     cmd.Command,
		Text:        cmd.Text,
		UserID:      cmd.UserID,
		ChannelID:   cmd.ChannelID,
		ResponseURL: cmd.ResponseURL,
	})
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
