package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds application metric instruments.
// Core graph logic never consults these; they are recorded at the
// application-service boundary.
type Metrics struct {
	registry *prometheus.Registry

	ArticlesResolved prometheus.Counter
	ResolveFailures  *prometheus.CounterVec
	NodesCreated     prometheus.Counter
	EdgesCreated     prometheus.Counter
	DuplicateNoops   prometheus.Counter
	NodesRemoved     prometheus.Counter
	SnapshotsShared  prometheus.Counter
	ResolveDuration  prometheus.Histogram
}

// NewMetrics creates and registers all metric instruments
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ArticlesResolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "wikigraph_articles_resolved_total",
			Help: "Number of successful article resolutions against the data source",
		}),
		ResolveFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wikigraph_resolve_failures_total",
			Help: "Number of failed article resolutions by failure kind",
		}, []string{"kind"}),
		NodesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "wikigraph_nodes_created_total",
			Help: "Number of nodes added to the session graph",
		}),
		EdgesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "wikigraph_edges_created_total",
			Help: "Number of edges added to the session graph",
		}),
		DuplicateNoops: factory.NewCounter(prometheus.CounterOpts{
			Name: "wikigraph_duplicate_noops_total",
			Help: "Number of link operations that found node and edge already present",
		}),
		NodesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "wikigraph_nodes_removed_total",
			Help: "Number of nodes removed, including cascade removals",
		}),
		SnapshotsShared: factory.NewCounter(prometheus.CounterOpts{
			Name: "wikigraph_snapshots_shared_total",
			Help: "Number of graph snapshots persisted for sharing",
		}),
		ResolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wikigraph_resolve_duration_seconds",
			Help:    "Latency of article resolution calls",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
