// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package metrics exposes Prometheus collectors for file operations.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

// ResultOK is the result label for a successful operation.
// Failed operations are labelled with their error kind.
const ResultOK = "ok"

var (
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fileex_operation_duration_seconds",
			Help:    "Duration of file operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
		},
		[]string{"op"},
	)

	operationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fileex_operations_total",
			Help: "Total number of file operations by result",
		},
		[]string{"op", "result"},
	)

	operationBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fileex_bytes_total",
			Help: "Bytes read or written by successful file operations",
		},
		[]string{"op"},
	)

	toolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fileex_mcp_tool_calls_total",
			Help: "Total number of MCP tool calls by outcome",
		},
		[]string{"tool", "outcome"},
	)

	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fileex_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)
)

// RecordOperation records one file operation. result is ResultOK or an
// error kind name; n is the number of bytes transferred.
func RecordOperation(op, result string, n int, elapsed time.Duration) {
	operationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	operationTotal.WithLabelValues(op, result).Inc()
	if result == ResultOK && n > 0 {
		operationBytes.WithLabelValues(op).Add(float64(n))
	}
}

// RecordToolCall records the outcome of an MCP tool call
// ("ok", "error", "rate_limited", "circuit_open").
func RecordToolCall(tool, outcome string) {
	toolCallsTotal.WithLabelValues(tool, outcome).Inc()
}

// RecordCircuitBreakerState records the circuit breaker state.
func RecordCircuitBreakerState(name string, state gobreaker.State) {
	var stateValue float64
	switch state {
	case gobreaker.StateClosed:
		stateValue = 0
	case gobreaker.StateHalfOpen:
		stateValue = 1
	case gobreaker.StateOpen:
		stateValue = 2
	}

	circuitBreakerState.WithLabelValues(name).Set(stateValue)
}

// CreateServer creates a configured HTTP server for Prometheus metrics.
func CreateServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
