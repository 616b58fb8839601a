package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	InteractionsIngestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codeflow_interactions_ingested_total",
		Help: "Total number of interactions applied to the user model.",
	}, []string{"type"})

	InteractionsIgnoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codeflow_interactions_ignored_total",
		Help: "Total number of interactions ignored because of an unknown type or missing path.",
	})

	ModelFlushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codeflow_model_flush_total",
		Help: "Total number of user-model persistence flushes by result.",
	}, []string{"result"})

	ModelFlushDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codeflow_model_flush_dropped_total",
		Help: "Total number of flush requests dropped because the flush queue was full.",
	})

	ModelFlushQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codeflow_model_flush_queue_depth",
		Help: "Current number of snapshots waiting to be persisted.",
	})

	ImportanceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "codeflow_importance_seconds",
		Help:    "Time spent computing graph importance scores.",
		Buckets: prometheus.DefBuckets,
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codeflow_graph_nodes_total",
		Help: "Total number of nodes in the loaded dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codeflow_graph_edges_total",
		Help: "Total number of edges in the loaded dependency graph.",
	})

	LayoutCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codeflow_layout_cache_total",
		Help: "Layout memoization lookups by result (hit, miss).",
	}, []string{"result"})

	SearchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codeflow_search_seconds",
		Help:    "Time spent ranking search results.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	SuggestionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codeflow_suggestion_seconds",
		Help:    "Time spent generating suggestions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	SuggestionsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codeflow_suggestions_emitted_total",
		Help: "Total number of suggestions returned, by suggestion type.",
	}, []string{"type"})

	LookupFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codeflow_lookup_failures_total",
		Help: "Collaborator lookups that failed and degraded to empty results.",
	}, []string{"lookup"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codeflow_watcher_events_total",
		Help: "Total number of file system events received by the graph watcher.",
	})

	GraphReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codeflow_graph_reloads_total",
		Help: "Graph document reloads by result.",
	}, []string{"result"})
)
