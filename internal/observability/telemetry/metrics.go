package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Orchestration
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jarvis_requests_total",
		Help: "Utterances processed, by routing decision and outcome",
	}, []string{"decision", "status"})

	StageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jarvis_stage_latency_seconds",
		Help:    "Latency of each orchestration stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	HandlerInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jarvis_handler_invocations_total",
		Help: "Domain handler invocations",
	}, []string{"handler", "reason"})

	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jarvis_tool_calls_total",
		Help: "Tools executed by domain handler agents",
	}, []string{"handler", "tool", "status"})

	// Channels
	ChannelMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jarvis_channel_messages_total",
		Help: "Inbound messages by channel and kind",
	}, []string{"channel", "kind"})

	TranscriptionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jarvis_transcription_failures_total",
		Help: "Voice messages that could not be transcribed",
	})

	SynthesisFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jarvis_synthesis_failures_total",
		Help: "Replies whose speech synthesis failed",
	})

	// Infra
	ExternalCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jarvis_external_call_latency_seconds",
		Help:    "Latency of calls to model and speech providers",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jarvis_database_latency_seconds",
		Help:    "Latency of queries in the database",
		Buckets: prometheus.DefBuckets,
	})

	EventSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jarvis_event_subscribers",
		Help: "Connected clients of the live event feed",
	})
)

var (
	GRPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grpc_requests_total",
		Help: "Total number of gRPC requests processed, partitioned by method and status code.",
	}, []string{"method", "status"})

	GRPCRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grpc_request_duration_seconds",
		Help:    "Histogram of gRPC request durations in seconds, partitioned by method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)
