package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the review service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Review metrics
	RatingsTotal      *prometheus.CounterVec
	StaleSubmissions  prometheus.Counter
	ScheduleFailures  prometheus.Counter
	SessionLoads      *prometheus.CounterVec
	QueueLength       prometheus.Gauge
	SessionCompletion prometheus.Counter

	// Reminder metrics
	ReminderPolls *prometheus.CounterVec
}

// New creates a Metrics instance registered on its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RatingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordbot_ratings_total",
				Help: "Ratings applied to the review queue, by grade and outcome",
			},
			[]string{"rating", "outcome"},
		),
		StaleSubmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordbot_stale_submissions_total",
			Help: "Rating submissions for items no longer in the queue",
		}),
		ScheduleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordbot_schedule_failures_total",
			Help: "Rating submissions that failed to reach the scheduler",
		}),
		SessionLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordbot_session_loads_total",
				Help: "Session start attempts, by result",
			},
			[]string{"result"},
		),
		QueueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wordbot_review_queue_length",
			Help: "Items left in the current review queue",
		}),
		SessionCompletion: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordbot_sessions_completed_total",
			Help: "Review sessions that emptied their queue",
		}),
		ReminderPolls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordbot_reminder_polls_total",
				Help: "Reminder poll ticks, by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.RatingsTotal,
		m.StaleSubmissions,
		m.ScheduleFailures,
		m.SessionLoads,
		m.QueueLength,
		m.SessionCompletion,
		m.ReminderPolls,
	)
	return m
}

// Handler serves the registered metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRating counts an applied rating
func (m *Metrics) RecordRating(rating, outcome string) {
	if m == nil {
		return
	}
	m.RatingsTotal.WithLabelValues(rating, outcome).Inc()
}

// RecordStale counts a stale submission
func (m *Metrics) RecordStale() {
	if m == nil {
		return
	}
	m.StaleSubmissions.Inc()
}

// RecordScheduleFailure counts a failed rating submission
func (m *Metrics) RecordScheduleFailure() {
	if m == nil {
		return
	}
	m.ScheduleFailures.Inc()
}

// RecordSessionLoad counts a session start by result
func (m *Metrics) RecordSessionLoad(result string) {
	if m == nil {
		return
	}
	m.SessionLoads.WithLabelValues(result).Inc()
}

// SetQueueLength updates the queue length gauge
func (m *Metrics) SetQueueLength(n int) {
	if m == nil {
		return
	}
	m.QueueLength.Set(float64(n))
}

// RecordSessionCompleted counts a finished session
func (m *Metrics) RecordSessionCompleted() {
	if m == nil {
		return
	}
	m.SessionCompletion.Inc()
}

// RecordReminderPoll counts a reminder tick by result
func (m *Metrics) RecordReminderPoll(result string) {
	if m == nil {
		return
	}
	m.ReminderPolls.WithLabelValues(result).Inc()
}
