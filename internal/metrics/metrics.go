/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package metrics exports Prometheus instrumentation for draws run by the
// bot and the command line tool.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/mikeb26/knockoutdraw/draw"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DrawAttempts counts draw attempts by policy and outcome ("ok",
	// "dead-end" or "error").
	DrawAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "knockoutdraw_attempts_total",
		Help: "Total number of draw attempts",
	}, []string{"policy", "outcome"})

	// DeadEnds counts failed attempts by the constraint that emptied the
	// anchor's partner set.
	DeadEnds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "knockoutdraw_dead_ends_total",
		Help: "Total number of draw attempts ending without an eligible partner",
	}, []string{"policy", "reason"})

	DrawLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "knockoutdraw_draw_latency_seconds",
		Help:    "Time taken by a single draw attempt",
		Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
	}, []string{"policy"})

	// SampleFailureRate is the dead end rate of the latest sampling run per
	// policy and season.
	SampleFailureRate = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "knockoutdraw_sample_failure_rate",
		Help: "Fraction of sampled draw attempts that reached a dead end",
	}, []string{"policy", "season"})
)

func init() {
	prometheus.MustRegister(
		DrawAttempts,
		DeadEnds,
		DrawLatency,
		SampleFailureRate,
	)
}

// ObserveDraw records the outcome of one draw.Run call.
func ObserveDraw(policy string, elapsed time.Duration, err error) {
	DrawLatency.WithLabelValues(policy).Observe(elapsed.Seconds())

	var ae *draw.AttemptError
	switch {
	case err == nil:
		DrawAttempts.WithLabelValues(policy, "ok").Inc()
	case errors.As(err, &ae):
		DrawAttempts.WithLabelValues(policy, "dead-end").Inc()
		DeadEnds.WithLabelValues(policy, ae.Reason().String()).Inc()
	default:
		DrawAttempts.WithLabelValues(policy, "error").Inc()
	}
}

func ObserveSample(season string, stats *draw.Stats) {
	SampleFailureRate.WithLabelValues(stats.Policy, season).
		Set(stats.FailureRate())
	DrawAttempts.WithLabelValues(stats.Policy, "ok").
		Add(float64(stats.Attempts - stats.Failures))
	DrawAttempts.WithLabelValues(stats.Policy, "dead-end").
		Add(float64(stats.Failures))
	for reason, n := range stats.ByReason {
		DeadEnds.WithLabelValues(stats.Policy, reason.String()).Add(float64(n))
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
