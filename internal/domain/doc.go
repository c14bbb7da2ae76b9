// Package domain contains the core entities of the tracker: the pull
// requests people ask to follow and the requests themselves. It is
// independent of Slack, GitHub and the database.
package domain
