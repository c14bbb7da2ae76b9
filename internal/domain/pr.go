package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PR identifies a pull request on GitHub.
type PR struct {
	Organisation string `json:"organisation" validate:"required"`
	Repo         string `json:"repo"         validate:"required"`
	Number       int    `json:"pr_number"    validate:"gt=0"`
}

// Display renders the PR the way it is shown to users, e.g. "PR#2 in org/repo".
func (p PR) Display() string {
	return fmt.Sprintf("PR#%d in %s/%s", p.Number, p.Organisation, p.Repo)
}

// Validate checks if the PR has valid data.
func (p PR) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// ParsePR reads a PR from user supplied text. Accepted forms are
//
//	https://github.com/<organisation>/<repo>/pull/<pr_number>
//	github.com/<organisation>/<repo>/pull/<pr_number>
//	<organisation>/<repo>/pull/<pr_number>
//
// Leading and trailing slashes are ignored.
func ParsePR(text string) (PR, error) {
	text = strings.TrimLeft(strings.TrimSpace(text), "/")

	u, err := url.Parse(text)
	if err != nil {
		return PR{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if u.Host != "" && u.Host != "github.com" {
		return PR{}, ErrNotGitHub
	}

	path := strings.Trim(u.Path, "/")
	if u.Host == "" && u.Scheme == "" {
		path = strings.TrimPrefix(path, "github.com/")
	}

	parts := strings.Split(path, "/")
	if len(parts) != 4 || parts[2] != "pull" || parts[0] == "" || parts[1] == "" {
		return PR{}, ErrNotPullRequest
	}

	number, err := strconv.Atoi(parts[3])
	if err != nil || number <= 0 || strings.TrimLeft(parts[3], "0123456789") != "" {
		return PR{}, ErrInvalidPRNumber
	}

	return PR{Organisation: parts[0], Repo: parts[1], Number: number}, nil
}

// PRRequest records that a user asked for a PR to be tracked in a channel.
type PRRequest struct {
	ID        int64     `json:"id"`
	PR        PR        `json:"pr"`
	UserID    string    `json:"user_id"    validate:"required"`
	ChannelID string    `json:"channel_id" validate:"required"`
	Added     time.Time `json:"added"`
}

// NewPRRequest creates a validated PRRequest.
func NewPRRequest(pr PR, userID, channelID string) (*PRRequest, error) {
	req := &PRRequest{
		PR:        pr,
		UserID:    userID,
		ChannelID: channelID,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks if the PRRequest has valid data, including its PR.
func (r *PRRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
