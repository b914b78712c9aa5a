package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fire-base/store"
)

// Metrics holds all Prometheus collectors for the idea service.
// It observes the store (store.Observer) and the AI gateway (gateway.CallRecorder).
type Metrics struct {
	AIRequests      *prometheus.CounterVec
	AILatency       *prometheus.HistogramVec
	IdeaMutations   *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	reg prometheus.Registerer
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AIRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "firebase_ai_requests_total",
				Help: "Total number of Gemini requests",
			},
			[]string{"op", "outcome"},
		),
		AILatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "firebase_ai_request_duration_seconds",
				Help:    "Gemini request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to 128s
			},
			[]string{"op"},
		),
		IdeaMutations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "firebase_idea_mutations_total",
				Help: "Committed idea mutations by kind",
			},
			[]string{"kind"},
		),
		PersistFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "firebase_persist_failures_total",
				Help: "Failed writes of the idea snapshot",
			},
			[]string{"op"},
		),
		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "firebase_events_published_total",
				Help: "Idea lifecycle events handed to the event bus",
			},
			[]string{"type", "result"},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "firebase_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "firebase_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		reg: reg,
	}
}

// RegisterIdeaCount exposes the size of the collection as a gauge.
func (m *Metrics) RegisterIdeaCount(count func() int) {
	promauto.With(m.reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "firebase_ideas",
			Help: "Number of ideas currently held by the store",
		},
		func() float64 { return float64(count()) },
	)
}

func (m *Metrics) ObserveAICall(op, outcome string, elapsed time.Duration) {
	m.AIRequests.WithLabelValues(op, outcome).Inc()
	m.AILatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) IdeaChanged(_ context.Context, c store.Change) {
	m.IdeaMutations.WithLabelValues(string(c.Kind)).Inc()
}

func (m *Metrics) PersistFailed(_ context.Context, op string, _ error) {
	m.PersistFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveEvent(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
