package service

import "github.com/AlibekovAA/estate-hub/internal/observability/metrics"

func recordOperation(operation string) {
	metrics.ListingOperationsTotal.WithLabelValues(operation).Inc()
}

func observeSearchResults(n int) {
	metrics.ListingSearchResults.Observe(float64(n))
}
