// Package metrics exposes Prometheus counters for the claim path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClaimsTotal counts claim attempts by outcome: success, validation,
	// not_found, request_closed, slot_unavailable, quota_exceeded, error.
	ClaimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "slotbook",
		Name:      "claims_total",
		Help:      "Claim attempts by outcome.",
	}, []string{"outcome"})

	// LockContentionTotal counts claim attempts that had to wait on or
	// abandon the per-request advisory lock.
	LockContentionTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "slotbook",
		Name:      "claim_lock_contention_total",
		Help:      "Claim attempts that found the per-request lock held.",
	})

	// EventPublishFailures counts claim events that could not be published
	// after a successful commit.
	EventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "slotbook",
		Name:      "claim_event_publish_failures_total",
		Help:      "Post-commit claim events that failed to publish.",
	})
)

const (
	OutcomeSuccess         = "success"
	OutcomeValidation      = "validation"
	OutcomeNotFound        = "not_found"
	OutcomeRequestClosed   = "request_closed"
	OutcomeSlotUnavailable = "slot_unavailable"
	OutcomeQuotaExceeded   = "quota_exceeded"
	OutcomeError           = "error"
)
