// Package testutils provides helpers shared by HTTP tests: requests signed
// the way Slack and GitHub sign them, and assertions on error responses.
package testutils
