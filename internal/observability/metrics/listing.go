package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ListingOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_operations_total",
			Help: "Total number of listing operations by kind",
		},
		[]string{"operation"},
	)

	ListingSearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "listing_search_results",
			Help:    "Number of listings returned per search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)
)
