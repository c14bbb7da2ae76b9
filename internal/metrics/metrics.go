// Package metrics provides Prometheus metrics for the tracker.
//
// Labels are kept to bounded sets (event types, outcomes, reasons); never put
// delivery ids, user ids or channel ids in a label.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Background supervision

	// TasksStartedTotal counts tasks accepted by a task holder.
	TasksStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_background_tasks_started_total",
		Help: "Total number of background tasks started.",
	})

	// TasksFailedTotal counts tasks that returned a non-cancellation error.
	TasksFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_background_tasks_failed_total",
		Help: "Total number of background tasks that returned an error.",
	})

	// TasksPanickedTotal counts tasks that panicked and were recovered.
	TasksPanickedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_background_tasks_panicked_total",
		Help: "Total number of background tasks that panicked.",
	})

	// TasksRejectedTotal counts tasks offered to a holder after it closed.
	TasksRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_background_tasks_rejected_total",
		Help: "Total number of background tasks rejected because the holder was closed.",
	})

	// TasksAbandonedTotal counts tasks still running when the abandon timeout elapsed.
	TasksAbandonedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_background_tasks_abandoned_total",
		Help: "Total number of background tasks still running when the runner gave up waiting.",
	})

	// ItemsDroppedTotal counts events and task adders appended after their
	// queue closed, by queue.
	ItemsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_background_items_dropped_total",
		Help: "Total number of queued items discarded because no consumer remained, by queue.",
	}, []string{"queue"})

	// TasksRunning tracks currently running tasks across all holders.
	TasksRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_background_tasks_running",
		Help: "Current number of running background tasks.",
	})

	// Events

	// EventsDispatchedTotal counts events handed to a processing task, by type.
	EventsDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_events_dispatched_total",
		Help: "Total number of events dispatched for processing, by event type.",
	}, []string{"type"})

	// Transport

	// WebhooksReceivedTotal counts GitHub webhook deliveries by event header.
	WebhooksReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_github_webhooks_received_total",
		Help: "Total number of GitHub webhook deliveries received, by event.",
	}, []string{"event"})

	// WebhooksDroppedTotal counts deliveries that produced no event.
	WebhooksDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_github_webhooks_dropped_total",
		Help: "Total number of GitHub webhook deliveries dropped, by reason.",
	}, []string{"reason"})

	// SlackCommandsTotal counts slash commands by command and result.
	SlackCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_slack_commands_total",
		Help: "Total number of Slack slash commands handled, by command and result.",
	}, []string{"command", "result"})

	// Shutdown

	// ShutdownTotal counts shutdown resolutions by outcome (resolved, forced).
	ShutdownTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_shutdown_total",
		Help: "Total number of shutdowns, by outcome.",
	}, []string{"outcome"})
)

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
