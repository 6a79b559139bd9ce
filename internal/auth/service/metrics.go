package service

import "github.com/AlibekovAA/estate-hub/internal/observability/metrics"

func incrementUsersRegistered() {
	metrics.UsersRegistered.Inc()
}

func recordLoginAttempt(result string) {
	metrics.LoginAttempts.WithLabelValues(result).Inc()
}

func incrementSessionsIssued() {
	metrics.SessionsIssued.Inc()
}
