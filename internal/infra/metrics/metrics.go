// Package metrics provides Prometheus metrics for HabitFlow: engagement
// gauges fed from store snapshots, persistence outcomes, HTTP traffic and
// health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "habitflow"

// ─── Engagement ─────────────────────────────────────────────────────────────

// TasksTotal tracks tasks by kind.
var TasksTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "tasks_total",
	Help:      "Number of tracked tasks by kind.",
}, []string{"kind"})

// CompletedToday tracks tasks completed on the current calendar day.
var CompletedToday = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "tasks_completed_today",
	Help:      "Tasks with a completion recorded for today.",
})

// CompletionRate tracks today's completion percentage (0-100).
var CompletionRate = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "completion_rate_percent",
	Help:      "Share of tasks completed today, in percent.",
})

// AtRisk tracks tasks with fewer than five completions.
var AtRisk = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "tasks_at_risk",
	Help:      "Tasks with fewer than five recorded completions.",
})

// PointsTotal tracks the current point total.
var PointsTotal = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "points_total",
	Help:      "Current point total.",
})

// LongestActiveStreak tracks the best current streak across tasks.
var LongestActiveStreak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "streak_longest_active_days",
	Help:      "Largest current streak across all tasks, in days.",
})

// Toggles counts completion toggles by direction.
var Toggles = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "completion_toggles_total",
	Help:      "Completion toggles by direction (on, off).",
}, []string{"direction"})

// RewardsUnlocked counts reward unlocks since start.
var RewardsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "rewards_unlocked_total",
	Help:      "Rewards unlocked since process start.",
}, []string{"reward"})

// SnapshotVersion tracks the latest published snapshot version.
var SnapshotVersion = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "snapshot_version",
	Help:      "Version of the latest published snapshot.",
})

// ─── Persistence ────────────────────────────────────────────────────────────

// SaveLatency tracks snapshot save duration in seconds.
var SaveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "save_latency_seconds",
	Help:      "Snapshot save duration in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1, 5},
})

// Saves counts save attempts by result.
var Saves = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "saves_total",
	Help:      "Snapshot save attempts by result (ok, error).",
}, []string{"result"})

// LastSavedVersion tracks the latest successfully saved version.
var LastSavedVersion = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "saved_version",
	Help:      "Version of the latest successfully saved snapshot.",
})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts API requests by route, method and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "http_requests_total",
	Help:      "HTTP requests by route pattern, method and status.",
}, []string{"route", "method", "status"})

// HTTPLatency tracks API request duration in seconds.
var HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method"})

// StreamClients tracks connected snapshot stream clients.
var StreamClients = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "stream_clients",
	Help:      "Connected snapshot stream clients.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
