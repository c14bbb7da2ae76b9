// Package main implements the entry point for the tracker server, which
// bridges Slack slash commands and GitHub webhooks into background work.
package main

import (
	"context"
	"os"
)

func main() {
	// Signals are handled by the shutdown orchestrator while serving, so the
	// root context is never cancelled by them.
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
