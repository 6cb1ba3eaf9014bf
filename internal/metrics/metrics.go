package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

var (
	SourceFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aggregator_source_fetches_total",
		Help: "Feed source fetches by source and outcome",
	}, []string{"source", "outcome"})

	SourceFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aggregator_source_fetch_duration_seconds",
		Help:    "Time spent fetching and parsing a single feed source",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
	}, []string{"outcome"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aggregator_cache_lookups_total",
		Help: "Category cache lookups by result",
	}, []string{"result"})

	CategoryArticles = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aggregator_category_articles",
		Help: "Articles held for a category after the last aggregation",
	}, []string{"category"})
)
