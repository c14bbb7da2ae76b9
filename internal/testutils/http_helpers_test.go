package testutils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/slack-github-tracker/internal/api/shared"
	"github.com/stretchr/testify/assert"
)

func TestGitHubSignature(t *testing.T) {
	// Example from GitHub's webhook documentation.
	assert.Equal(t,
		"sha256=757107ea0eb2509fc211221cce984b8a37570b6d7586c22c46f4379c8b043e17",
		GitHubSignature("Hello, World!", "It's a Secret to Everybody"))
}

func TestSlackRequest(t *testing.T) {
	r := SlackRequest(t, "/slack/commands", FormContentType, "text=hi", "secret")

	assert.Equal(t, http.MethodPost, r.Method)
	assert.NotEmpty(t, r.Header.Get("X-Slack-Request-Timestamp"))
	assert.Regexp(t, `^v0=[0-9a-f]{64}$`, r.Header.Get("X-Slack-Signature"))
}

func TestAssertErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	shared.RespondWithError(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusBadRequest, "Unknown command")

	AssertErrorResponse(t, w, http.StatusBadRequest, "Unknown")
}
