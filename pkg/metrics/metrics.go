// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	IndexLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nascast",
		Name:      "index_loads_total",
		Help:      "Index load attempts by outcome (ok, fetch_error, parse_error).",
	}, []string{"status"})

	IndexLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nascast",
		Name:      "index_load_duration_seconds",
		Help:      "Time spent fetching and indexing the search index.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10},
	})

	IndexEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nascast",
		Name:      "index_entries",
		Help:      "Number of entries in the loaded index.",
	})

	QueriesExecutedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nascast",
		Name:      "queries_executed_total",
		Help:      "Queries that reached the text index after the quiet period.",
	})

	QueriesSupersededTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nascast",
		Name:      "queries_superseded_total",
		Help:      "Pending queries dropped because newer input arrived.",
	})

	QueriesShortTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nascast",
		Name:      "queries_short_total",
		Help:      "Inputs below the minimum query length that hid results immediately.",
	})

	RendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nascast",
		Name:      "renders_total",
		Help:      "Result renders by outcome (results, no_results).",
	}, []string{"outcome"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		IndexLoadsTotal,
		IndexLoadDuration,
		IndexEntries,
		QueriesExecutedTotal,
		QueriesSupersededTotal,
		QueriesShortTotal,
		RendersTotal,
	)
}
