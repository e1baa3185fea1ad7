package main

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/moffa90/go-nxt/brick"
)

// metrics collects per-run counters for the node exporter textfile collector.
type metrics struct {
	registry     *prometheus.Registry
	transactions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	bytes        *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nxtctl",
				Subsystem: "protocol",
				Name:      "transactions_total",
				Help:      "Request/reply round trips by operation and reply status.",
			},
			[]string{"operation", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "nxtctl",
				Subsystem: "protocol",
				Name:      "transaction_duration_seconds",
				Help:      "Round trip duration in seconds.",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nxtctl",
				Subsystem: "transfer",
				Name:      "bytes_total",
				Help:      "File bytes moved by direction.",
			},
			[]string{"direction"},
		),
	}
	m.registry.MustRegister(m.transactions, m.duration, m.bytes)
	return m
}

// observe is installed as the client's transaction hook.
func (m *metrics) observe(tx brick.Transaction) {
	status := strings.ReplaceAll(tx.Status.String(), " ", "_")
	if tx.Err != nil && tx.Status.OK() {
		status = "error"
	}
	m.transactions.WithLabelValues(tx.Operation, status).Inc()
	m.duration.WithLabelValues(tx.Operation).Observe(tx.Duration.Seconds())
}

func (m *metrics) addBytes(direction string, n int64) {
	if n > 0 {
		m.bytes.WithLabelValues(direction).Add(float64(n))
	}
}

// writeFile atomically replaces path with the text exposition of all metrics.
func (m *metrics) writeFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
