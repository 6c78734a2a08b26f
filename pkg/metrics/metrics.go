package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "speech_relay"

var (
	ConnectedSessions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connected_sessions",
		Help:      "Currently open websocket sessions by role.",
	}, []string{"role"})

	RecognitionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recognition_events_total",
		Help:      "Inbound recognition frames by result.",
	}, []string{"result"})

	EnrichmentTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrichment_tasks_total",
		Help:      "Finished enrichment tasks by kind and outcome.",
	}, []string{"kind", "outcome"})

	InflightTasks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "enrichment_tasks_inflight",
		Help:      "Enrichment tasks currently running.",
	})

	HeartbeatFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "heartbeat_failures_total",
		Help:      "Consumer sessions ended by a failed heartbeat.",
	})
)

// recognition results
const (
	ResultParseError = "parse_error"
	ResultNoTarget   = "no_target"
	ResultForwarded  = "forwarded"
	ResultSendError  = "send_error"
)

// task outcomes
const (
	OutcomeSuccess   = "success"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
	OutcomeSkipped   = "skipped"
)
