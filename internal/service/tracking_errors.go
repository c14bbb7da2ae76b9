package service

import (
	"errors"
	"fmt"
)

// Slack command errors.
var (
	// ErrInvalidPR indicates the command text was not a pull request reference.
	ErrInvalidPR = errors.New("invalid pull request reference")

	// ErrUnknownCommand indicates a slash command the tracker does not handle.
	ErrUnknownCommand = errors.New("unknown slash command")
)

// FailedCommandMessage is shown to the user when a command fails for any
// reason other than bad input.
const FailedCommandMessage = "Failed to process command"

// InvalidPRMessage returns the usage message shown when the PR reference
// passed to command cannot be parsed.
func InvalidPRMessage(command string) string {
	return fmt.Sprintf(
		"Please provide one argument to %s as a url that is either "+
			"`github.com/<organisation>/<repo>/pull/<pr_number>` or "+
			"`<organisation>/<repo>/pull/<pr_number>`",
		command,
	)
}

// CommandError wraps a failure while handling a slash command.
type CommandError struct {
	// Command is the slash command, e.g. "/track_pr"
	Command string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for CommandError.
func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command %s failed: %s: %v", e.Command, e.Message, e.Err)
	}
	return fmt.Sprintf("command %s failed: %s", e.Command, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the user who ran the command.
func (e *CommandError) UserMessage() string {
	if errors.Is(e.Err, ErrInvalidPR) {
		return InvalidPRMessage(e.Command)
	}
	return FailedCommandMessage
}

// NewCommandError creates a CommandError, or returns nil when err is nil.
func NewCommandError(command, message string, err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{
		Command: command,
		Message: message,
		Err:     err,
	}
}
