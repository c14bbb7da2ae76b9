package github

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	gh "github.com/google/go-github/v66/github"
	"github.com/phrazzld/slack-github-tracker/internal/events"
)

// Delivery headers sent by GitHub.
const (
	HeaderEvent                  = "X-GitHub-Event"
	HeaderHookID                 = "X-GitHub-Hook-ID"
	HeaderDelivery               = "X-GitHub-Delivery"
	HeaderInstallationTargetID   = "X-GitHub-Hook-Installation-Target-ID"
	HeaderInstallationTargetType = "X-GitHub-Hook-Installation-Target-Type"
	HeaderSignature256           = "X-Hub-Signature-256"
)

// AcceptedEvents lists the delivery types the tracker handles.
var AcceptedEvents = []string{"pull_request", "pull_request_review"}

// RawHeaders holds the delivery metadata GitHub sends as headers.
type RawHeaders struct {
	// Name of the event that triggered the delivery.
	Event string
	// Unique identifier of the webhook.
	HookID string
	// A globally unique identifier (GUID) to identify the event.
	Delivery string
	// Unique identifier of the resource where the webhook was created.
	InstallationTargetID string
	// Type of resource where the webhook was created.
	InstallationTargetType string
}

// HeadersFromRequest reads RawHeaders from h.
func HeadersFromRequest(h http.Header) RawHeaders {
	return RawHeaders{
		Event:                  h.Get(HeaderEvent),
		HookID:                 h.Get(HeaderHookID),
		Delivery:               h.Get(HeaderDelivery),
		InstallationTargetID:   h.Get(HeaderInstallationTargetID),
		InstallationTargetType: h.Get(HeaderInstallationTargetType),
	}
}

// Hooks verifies, filters and interprets deliveries, and emits the
// resulting events.
type Hooks struct {
	secret      []byte
	emitter     events.Emitter
	interpreter Interpreter
	logger      *slog.Logger
}

// NewHooks creates Hooks. With a nil interpreter DefaultInterpreters is used.
func NewHooks(secret string, emitter events.Emitter, interpreter Interpreter, logger *slog.Logger) *Hooks {
	if interpreter == nil {
		interpreter = DefaultInterpreters()
	}
	return &Hooks{
		secret:      []byte(secret),
		emitter:     emitter,
		interpreter: interpreter,
		logger:      logger.With("component", "github_hooks"),
	}
}

// ValidatePayload checks the request signature and returns the JSON payload.
func (h *Hooks) ValidatePayload(r *http.Request) ([]byte, error) {
	payload, err := gh.ValidatePayload(r, h.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return payload, nil
}

// ExpectedSignature returns the X-Hub-Signature-256 value for body.
func (h *Hooks) ExpectedSignature(body []byte) string {
	mac := hmac.New(sha256.New, h.secret)
	_, _ = mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Register interprets a verified delivery and emits the events it produces.
// It returns a *DroppedError when the delivery is ignored.
func (h *Hooks) Register(headers RawHeaders, payload []byte) ([]events.Event, error) {
	log := h.logger.With("github_event", headers.Event, "delivery", headers.Delivery)

	if !slices.Contains(AcceptedEvents, headers.Event) {
		return nil, &DroppedError{Event: headers.Event, Reason: ReasonUnsupportedEvent}
	}

	parsed, err := gh.ParseWebHook(headers.Event, payload)
	if err != nil {
		log.Warn("failed to parse webhook payload", "error", err)
		return nil, &DroppedError{Event: headers.Event, Reason: ReasonMalformed}
	}

	produced := h.interpreter.Interpret(Incoming{Headers: headers, Payload: parsed})
	if len(produced) == 0 {
		return nil, &DroppedError{Event: headers.Event, Reason: ReasonNotInterpreted}
	}

	for _, event := range produced {
		h.emitter.Emit(event)
	}
	log.Debug("webhook registered", "events", len(produced))
	return produced, nil
}
