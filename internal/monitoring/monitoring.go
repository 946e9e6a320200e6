package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CommandsApplied prometheus.Counter
	MergesTotal     prometheus.Counter
	MovesRejected   prometheus.Counter
	RewindDepth     prometheus.Histogram
	TreeBuilds      prometheus.Counter
	LiveNodes       prometheus.Gauge
	SendBufferSize  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CommandsApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "vexel_commands_applied_total",
			Help: "Total number of user commands applied to the document",
		}),
		MergesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "vexel_merges_total",
			Help: "Total number of remote payloads merged",
		}),
		MovesRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "vexel_moves_rejected_total",
			Help: "Total number of moves dropped to preserve the tree invariant",
		}),
		RewindDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vexel_movelog_rewind_depth",
			Help:    "History entries unwound while splicing in a move",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		TreeBuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "vexel_tree_builds_total",
			Help: "Total number of tree materializations",
		}),
		LiveNodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vexel_live_nodes",
			Help: "Live objects in the node map at last materialization",
		}),
		SendBufferSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vexel_send_buffer_size",
			Help: "Buffered move logs awaiting broadcast",
		}),
	}
}
