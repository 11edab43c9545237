// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesTotal counts answer_query calls by outcome
	// (answered, insufficient, degraded, invalid, error)
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketrag_queries_total",
			Help: "Total number of queries by outcome",
		},
		[]string{"outcome"},
	)

	RetrievalDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticketrag_retrieval_duration_seconds",
			Help:    "Time to embed a query and search the index",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
	)

	RetrievalCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketrag_retrieval_cache_total",
			Help: "Retrieval cache lookups by result",
		},
		[]string{"result"}, // hit/miss
	)

	GenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketrag_generation_total",
			Help: "Answer generation attempts by provider and status",
		},
		[]string{"provider", "status"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticketrag_generation_duration_seconds",
			Help:    "Answer generation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1min
		},
		[]string{"provider"},
	)

	CorpusTickets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ticketrag_corpus_tickets",
			Help: "Number of tickets in the loaded corpus",
		},
	)

	CorpusReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketrag_corpus_reloads_total",
			Help: "Corpus reloads by status",
		},
		[]string{"status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketrag_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticketrag_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
