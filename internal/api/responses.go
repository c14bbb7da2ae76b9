package api

import (
	"net/http"

	"github.com/phrazzld/slack-github-tracker/internal/api/shared"
)

// Package-level wrappers keep handler code short.

func respondWithError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

func respondWithStatus(w http.ResponseWriter, r *http.Request, status int, state string) {
	shared.RespondWithStatus(w, r, status, state)
}
