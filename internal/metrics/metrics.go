package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "pmstd"

// Domain Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of searches by kind",
		},
		[]string{"kind"}, // "standard" / "all"
	)

	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 5, 10, 20, 50},
		},
		[]string{"kind"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_total",
			Help:      "Search cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "Generative AI requests by feature and outcome",
		},
		[]string{"feature", "outcome"}, // outcome: "ok" / "fallback"
	)

	SeededSectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seeded_sections_total",
			Help:      "Total number of sections written by corpus seeding",
		},
	)
)

func init() {
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(SeededSectionsTotal)
}

// ObserveSearch records one search of the given kind.
func ObserveSearch(kind string, results int) {
	SearchRequestsTotal.WithLabelValues(kind).Inc()
	SearchResults.WithLabelValues(kind).Observe(float64(results))
}

// ObserveCache records a cache lookup.
func ObserveCache(hit bool) {
	if hit {
		SearchCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	SearchCacheTotal.WithLabelValues("miss").Inc()
}

// ObserveAI records a generative AI call for feature, noting whether the fallback was used.
func ObserveAI(feature string, fallback bool) {
	outcome := "ok"
	if fallback {
		outcome = "fallback"
	}
	AIRequestsTotal.WithLabelValues(feature, outcome).Inc()
}
