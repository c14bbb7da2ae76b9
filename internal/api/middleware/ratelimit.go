package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/phrazzld/slack-github-tracker/internal/api/shared"
)

var errRateLimited = errors.New("rate limit exceeded")

// RateLimit limits each client IP to requestsPerMinute requests using a
// sliding window. A limit of zero or less disables limiting.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	window := time.Minute
	return httprate.Limit(
		requestsPerMinute,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
				"Too many requests. Please try again later.", errRateLimited)
		}),
	)
}
