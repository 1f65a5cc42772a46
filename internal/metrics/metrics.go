package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "balneario",
			Name:      "api_requests_total",
			Help:      "Backend API requests by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	sessionExpirations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "balneario",
			Name:      "session_expirations_total",
			Help:      "Sessions cleared after a 401 from the backend.",
		},
	)

	botUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "balneario",
			Name:      "bot_updates_total",
			Help:      "Telegram updates by kind.",
		},
		[]string{"kind"},
	)

	syncTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "balneario",
			Name:      "sync_tasks_total",
			Help:      "Offline ticket sync tasks by result.",
		},
		[]string{"result"},
	)

	availabilityFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "balneario",
			Name:      "availability_fallbacks_total",
			Help:      "Occupancy queries answered by the fail-open fallback.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			apiRequests,
			sessionExpirations,
			botUpdates,
			syncTasks,
			availabilityFallbacks,
		)
	})
}

// IncAPIRequest increments the request counter for an endpoint and outcome.
func IncAPIRequest(endpoint, outcome string) {
	apiRequests.WithLabelValues(endpoint, outcome).Inc()
}

// IncSessionExpired counts a session cleared on 401.
func IncSessionExpired() {
	sessionExpirations.Inc()
}

// IncBotUpdate increments the update counter for a kind label.
func IncBotUpdate(kind string) {
	botUpdates.WithLabelValues(kind).Inc()
}

// IncSyncTask counts a sync task result (synced, failed, retried).
func IncSyncTask(result string) {
	syncTasks.WithLabelValues(result).Inc()
}

// IncAvailabilityFallback counts a fail-open availability answer.
func IncAvailabilityFallback() {
	availabilityFallbacks.Inc()
}
