// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrNotGitHub is returned when a PR reference points at another host.
	ErrNotGitHub = errors.New("url can only be for github")

	// ErrNotPullRequest is returned when a PR reference is not a pull request path.
	ErrNotPullRequest = errors.New("url is not for a pull request")

	// ErrInvalidPRNumber is returned when the pull request number is not a number.
	ErrInvalidPRNumber = errors.New("pull request number is not a number")
)
