// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for authentication attempt metrics.
const (
	StatusSuccess     = "success"
	StatusRejected    = "rejected"
	StatusStoreError  = "store_error"
	StatusAttachError = "attach_error"
)

// Attempts counts authentication flow outcomes.
// Use RegisterMetrics to register this with a Prometheus registry.
var Attempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authserver_attempts_total",
		Help: "Total number of signup/login/logout attempts by outcome",
	},
	[]string{"operation", "status"},
)

// HashDuration observes password hash and verify latency. The cost factor
// makes these deliberately slow; the histogram is how drift gets noticed.
var HashDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "authserver_hash_duration_seconds",
		Help:    "Password hash/verify duration in seconds",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"operation"},
)

// RegisterMetrics registers the package metrics with a registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Attempts)
	reg.MustRegister(HashDuration)
}

// recordAttempt increments the attempt counter for one flow outcome.
func recordAttempt(operation, status string) {
	Attempts.WithLabelValues(operation, status).Inc()
}

// InstrumentedHasher wraps a PasswordHasher with latency observation.
type InstrumentedHasher struct {
	inner PasswordHasher
}

// NewInstrumentedHasher wraps a hasher with HashDuration observation.
func NewInstrumentedHasher(inner PasswordHasher) *InstrumentedHasher {
	return &InstrumentedHasher{inner: inner}
}

// Hash delegates to the wrapped hasher, observing latency.
func (h *InstrumentedHasher) Hash(password string) (string, error) {
	start := time.Now()
	defer func() {
		HashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	}()
	return h.inner.Hash(password)
}

// Verify delegates to the wrapped hasher, observing latency.
func (h *InstrumentedHasher) Verify(password, hash string) (bool, error) {
	start := time.Now()
	defer func() {
		HashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	}()
	return h.inner.Verify(password, hash)
}
