// SPDX-License-Identifier: MIT

// Package ratelimit holds the pacing policies applied to calls against the
// reservation service.
package ratelimit

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var pacerWaitSeconds = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "seatkeeper",
		Name:      "pacer_wait_seconds",
		Help:      "Time spent waiting on a pacing policy before an upstream call",
		Buckets:   []float64{0, 0.1, 0.5, 1, 1.5, 2, 3, 5},
	},
	[]string{"pacer"},
)

// Default intervals for catalog discovery. The service publishes no rate
// limit; these are conservative and configurable.
const (
	DefaultRoomInterval = 1500 * time.Millisecond
	DefaultSeatInterval = 2 * time.Second
)

// Pacer enforces a minimum interval between consecutive calls. The first call
// passes immediately.
type Pacer struct {
	name     string
	interval time.Duration
	limiter  *rate.Limiter
}

// NewPacer creates a pacer. A non-positive interval disables pacing.
func NewPacer(name string, interval time.Duration) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{
		name:     name,
		interval: interval,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Name returns the policy name used in metrics and logs.
func (p *Pacer) Name() string { return p.name }

// Interval returns the configured minimum interval.
func (p *Pacer) Interval() time.Duration { return p.interval }

// Wait blocks until the next call is allowed or ctx is done. A nil pacer never blocks.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	start := time.Now()
	err := p.limiter.Wait(ctx)
	pacerWaitSeconds.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
	return err
}
