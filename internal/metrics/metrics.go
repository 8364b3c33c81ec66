// Package metrics holds the Prometheus collectors for the save pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "autodocs"

var (
	// Labels: endpoint, outcome (success, timeout, network, rejected, server_fault)
	ClientAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "attempts_total",
		Help:      "Generation service attempts by outcome",
	}, []string{"endpoint", "outcome"})

	// Labels: endpoint, status (success, error)
	ClientLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Generation service call latency including retries",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"endpoint", "status"})

	ClientOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "online",
		Help:      "1 when the last generation service call reached the network",
	})

	// Labels: tier (heuristic, remote, cache, offline, fallback), result (meaningful, rejected)
	Classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "classifier",
		Name:      "decisions_total",
		Help:      "Classification decisions by tier and result",
	}, []string{"tier", "result"})

	// Labels: outcome (accepted, skipped, generic, documented, failed, trivial)
	Suggestions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "synth",
		Name:      "suggestions_total",
		Help:      "Comment synthesis outcomes per chunk",
	}, []string{"outcome"})

	// Labels: result (no_change, rejected, gated, cancelled, no_suggestion, suggested, insert_failed, commented)
	Saves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "agent",
		Name:      "saves_total",
		Help:      "Processed save events by result",
	}, []string{"result"})

	TrackedDocuments = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "tracker",
		Name:      "documents",
		Help:      "Documents with a tracked snapshot",
	})
)
