package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search outcomes.
const (
	OutcomeEmptyQuery = "empty_query"
	OutcomeNoResults  = "no_results"
	OutcomeResults    = "results"
	OutcomeError      = "error"
)

var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "website",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "website",
			Name:      "search_duration_seconds",
			Help:      "Time spent answering a search, backend call included",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"backend"},
	)

	SearchMatches = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "website",
			Name:      "search_matches",
			Help:      "Number of matches per non-empty search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
	)
)

func init() {
	prometheus.MustRegister(SearchRequestsTotal, SearchDuration, SearchMatches)
}

// Outcome classifies a finished search.
func Outcome(query string, total int, err error) string {
	switch {
	case err != nil:
		return OutcomeError
	case query == "":
		return OutcomeEmptyQuery
	case total == 0:
		return OutcomeNoResults
	default:
		return OutcomeResults
	}
}
