// Package service holds the Slack-facing use cases: slash commands and
// channel messages. Handlers hand requests to a TrackingService, which
// acknowledges at once and schedules the real work (storing PR requests,
// posting replies) as background tasks through an events.TaskRegistry.
package service
