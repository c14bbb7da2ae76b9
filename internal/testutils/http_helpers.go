package testutils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/slack-github-tracker/internal/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Content types used by Slack requests.
const (
	FormContentType = "application/x-www-form-urlencoded"
	JSONContentType = "application/json"
)

// SlackRequest builds a POST request signed with a Slack signing secret.
func SlackRequest(t *testing.T, path, contentType, body, secret string) *http.Request {
	t.Helper()

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte("v0:" + ts + ":" + body))

	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("X-Slack-Request-Timestamp", ts)
	r.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return r
}

// GitHubSignature returns the X-Hub-Signature-256 value for body.
func GitHubSignature(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// GitHubRequest builds a webhook delivery of the given event signed with secret.
func GitHubRequest(t *testing.T, event, body, secret string) *http.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/github/webhooks", strings.NewReader(body))
	r.Header.Set("Content-Type", JSONContentType)
	r.Header.Set("X-GitHub-Event", event)
	r.Header.Set("X-GitHub-Delivery", "72d3162e-cc78-11e3-81ab-4c9367dc0958")
	r.Header.Set("X-GitHub-Hook-ID", "292430182")
	r.Header.Set("X-Hub-Signature-256", GitHubSignature(body, secret))
	return r
}

// AssertErrorResponse checks that w holds a JSON error response with the
// given status whose message contains expected.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, status int, expected string) {
	t.Helper()

	assert.Equal(t, status, w.Code, "unexpected status code")
	assert.Equal(t, JSONContentType, w.Header().Get("Content-Type"))

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp), "error response should be JSON")
	assert.Contains(t, resp.Error, expected)
}
