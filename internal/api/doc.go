// Package api handles incoming HTTP requests from Slack and GitHub. It
// verifies each request, translates it into a service call or registered
// event, and answers quickly; the real work runs in the background runtime.
package api
