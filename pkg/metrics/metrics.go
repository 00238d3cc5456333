// Package metrics defines the Prometheus collectors of an indexing engine and
// the HTTP server that exposes them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "memindex"

// Lookup and operation outcomes used as label values.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"

	StatusOK    = "ok"
	StatusError = "error"
	StatusSkip  = "skipped"
)

type Metrics struct {
	DocsIndexedTotal     prometheus.Counter
	PostingsUpdatedTotal prometheus.Counter
	Terms                prometheus.Gauge
	LookupsTotal         *prometheus.CounterVec
	DocStoreOpsTotal     *prometheus.CounterVec
	IngestEventsTotal    *prometheus.CounterVec
	IngestLatency        prometheus.Histogram
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which tests and throwaway engines rely on.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "docs_indexed_total",
			Help:      "Total documents indexed.",
		}),
		PostingsUpdatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postings_updated_total",
			Help:      "Total posting insertions or overwrites.",
		}),
		Terms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "terms",
			Help:      "Number of distinct terms in the index.",
		}),
		LookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Term lookups by result (hit, miss).",
		}, []string{"result"}),
		DocStoreOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "docstore_operations_total",
			Help:      "Document store operations by operation and status.",
		}, []string{"op", "status"}),
		IngestEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_events_total",
			Help:      "Ingest events by status (ok, error, skipped).",
		}, []string{"status"}),
		IngestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_latency_seconds",
			Help:      "Time to index one ingest event.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.DocsIndexedTotal,
			m.PostingsUpdatedTotal,
			m.Terms,
			m.LookupsTotal,
			m.DocStoreOpsTotal,
			m.IngestEventsTotal,
			m.IngestLatency,
		)
	}
	return m
}

// Handler returns the scrape handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
