package slack

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	goslack "github.com/slack-go/slack"
)

// ErrInvalidSignature is returned when a request was not signed with the
// configured signing secret.
var ErrInvalidSignature = errors.New("invalid slack request signature")

// maxBodyBytes caps the size of a request body read for verification.
const maxBodyBytes = 1 << 20

// VerifyRequest checks the X-Slack-Signature of r against signingSecret and
// returns the body. The body is also restored on r so it can be parsed again.
func VerifyRequest(r *http.Request, signingSecret string) ([]byte, error) {
	verifier, err := goslack.NewSecretsVerifier(r.Header, signingSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if _, err := verifier.Write(body); err != nil {
		return nil, fmt.Errorf("failed to hash request body: %w", err)
	}
	if err := verifier.Ensure(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return body, nil
}
