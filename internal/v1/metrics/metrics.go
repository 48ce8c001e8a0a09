package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the meeting coordination server.
//
// Naming convention: namespace_subsystem_name
// - namespace: meeting (application-level grouping)
// - subsystem: registry, session, command, broadcast (feature-level grouping)
// - name: specific metric (rooms_active, frames_total, etc.)
//
// Metric Types:
// - Gauge: Current state (connections, rooms)
// - Counter: Cumulative events (commands, evictions, errors)
// - Histogram: Distributions (command latency, snapshot size)

var (
	// RoomsActive tracks the current number of live rooms (Gauge - current state)
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "meeting",
		Subsystem: "registry",
		Name:      "rooms_active",
		Help:      "Current number of live rooms",
	})

	// RoomsCreated counts rooms inserted into the registry (Counter - cumulative)
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "meeting",
		Subsystem: "registry",
		Name:      "rooms_created_total",
		Help:      "Total rooms created",
	})

	// RoomsEvicted counts rooms removed by the capacity policy (Counter - cumulative)
	RoomsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "meeting",
		Subsystem: "registry",
		Name:      "rooms_evicted_total",
		Help:      "Total rooms evicted because the registry was full",
	})

	// RoomsDestroyed counts rooms torn down by their chair (Counter - cumulative)
	RoomsDestroyed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "meeting",
		Subsystem: "registry",
		Name:      "rooms_destroyed_total",
		Help:      "Total rooms destroyed by the chair",
	})

	// ActiveSessions tracks the current number of open WebSocket sessions (Gauge - current state)
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "meeting",
		Subsystem: "session",
		Name:      "connections_active",
		Help:      "Current number of open WebSocket sessions",
	})

	// Commands counts processed commands by type (CounterVec - cumulative)
	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meeting",
		Subsystem: "command",
		Name:      "processed_total",
		Help:      "Total commands processed",
	}, []string{"command"})

	// CommandErrors counts command failures by error kind (CounterVec - cumulative)
	CommandErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meeting",
		Subsystem: "command",
		Name:      "errors_total",
		Help:      "Total command failures by kind",
	}, []string{"kind"})

	// CommandDuration tracks time spent handling a command (HistogramVec - latency distribution)
	CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "meeting",
		Subsystem: "command",
		Name:      "processing_seconds",
		Help:      "Time spent processing commands",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25},
	}, []string{"command"})

	// Broadcasts counts room state fan-outs (Counter - cumulative)
	Broadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "meeting",
		Subsystem: "broadcast",
		Name:      "frames_total",
		Help:      "Total room state broadcasts published",
	})

	// BroadcastBytes tracks the serialized snapshot size (Histogram - distribution)
	BroadcastBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "meeting",
		Subsystem: "broadcast",
		Name:      "frame_bytes",
		Help:      "Serialized snapshot size in bytes",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
	})
)

func IncConnection() {
	ActiveSessions.Inc()
}

func DecConnection() {
	ActiveSessions.Dec()
}
