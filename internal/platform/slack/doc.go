// Package slack adapts the slack-go client to the tracker.
//
// Key components:
//
//  1. Messenger: the narrow interface the rest of the tracker uses to talk
//     back to Slack, implemented by Client.
//  2. VerifyRequest: signing secret verification of incoming requests.
//
// Nothing outside this package imports slack-go for sending messages.
package slack
