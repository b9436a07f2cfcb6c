package live

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus instruments for the live server.
type metrics struct {
	diffsTotal       prometheus.Counter
	patchesEmitted   prometheus.Counter
	diffDuration     prometheus.Histogram
	framesSent       prometheus.Counter
	frameBytes       prometheus.Histogram
	connectedClients prometheus.Gauge
	resyncsTotal     prometheus.Counter
}

// newMetrics registers the server metrics on the given registerer.
func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &metrics{
		diffsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vtree",
			Name:      "diffs_total",
			Help:      "Number of document diffs computed.",
		}),
		patchesEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vtree",
			Name:      "patches_emitted_total",
			Help:      "Number of patches emitted across all diffs.",
		}),
		diffDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vtree",
			Name:      "diff_duration_seconds",
			Help:      "Time spent diffing the document.",
			Buckets:   prometheus.DefBuckets,
		}),
		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vtree",
			Name:      "frames_sent_total",
			Help:      "Number of patch frames broadcast to clients.",
		}),
		frameBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vtree",
			Name:      "frame_bytes",
			Help:      "Encoded size of broadcast patch frames.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
		connectedClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "vtree",
			Name:      "connected_clients",
			Help:      "Number of connected WebSocket clients.",
		}),
		resyncsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vtree",
			Name:      "resyncs_total",
			Help:      "Number of client resync requests served from history.",
		}),
	}
}
