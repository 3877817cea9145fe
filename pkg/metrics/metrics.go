package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for EventsSent.
const (
	OutcomeSuccess       = "success"
	OutcomeMissingField  = "missing_field"
	OutcomeTransport     = "transport_error"
	OutcomeResponseParse = "response_parse_error"
	OutcomeInternal      = "internal_error"
)

var (
	EventsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbs2s_events_sent_total",
		Help: "Total number of events submitted, labelled by event name and outcome.",
	}, []string{"event_name", "outcome"})

	UpstreamStatus = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbs2s_upstream_responses_total",
		Help: "Conversions endpoint responses, labelled by HTTP status code.",
	}, []string{"code"})

	SendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fbs2s_send_duration_seconds",
		Help:    "Time spent building and sending one event.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})
)

// ObserveSend records one send attempt.
func ObserveSend(eventName, outcome string, started time.Time) {
	EventsSent.WithLabelValues(eventName, outcome).Inc()
	SendDuration.Observe(time.Since(started).Seconds())
}
