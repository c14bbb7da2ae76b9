// Package mocks provides centralized mock implementations for testing.
//
// Each mock has function fields for customizable behavior and records the
// calls it receives. With no function set, the mock succeeds and keeps what
// it was given, so most tests need no setup at all:
//
//	messenger := &mocks.MockMessenger{}
//	// ... exercise code that posts to Slack ...
//	assert.Equal(t, []string{"Tracking PR#2 in acme/tracker"}, messenger.PostedTexts())
//
// The mocks are safe for concurrent use, since the code under test usually
// calls them from background tasks.
package mocks
