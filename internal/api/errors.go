package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/slack-github-tracker/internal/domain"
	"github.com/phrazzld/slack-github-tracker/internal/github"
	"github.com/phrazzld/slack-github-tracker/internal/platform/slack"
	"github.com/phrazzld/slack-github-tracker/internal/service"
	"github.com/phrazzld/slack-github-tracker/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, slack.ErrInvalidSignature),
		errors.Is(err, github.ErrInvalidSignature):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrUnknownCommand),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, errMalformedRequest):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, slack.ErrInvalidSignature),
		errors.Is(err, github.ErrInvalidSignature):
		return "Invalid request signature"
	case errors.Is(err, service.ErrUnknownCommand):
		return "Unknown command"
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid request data"
	case errors.Is(err, errMalformedRequest):
		return "Malformed request"
	default:
		return "An unexpected error occurred"
	}
}

// errMalformedRequest marks request bodies that could not be parsed.
var errMalformedRequest = errors.New("malformed request")

// respondWithMappedError writes the status and safe message for err and logs
// the full error.
func respondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	respondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
