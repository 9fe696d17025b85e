// Copyright 2026 Pontoon Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes Prometheus instrumentation for the adapter RPC
// runtime.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// rpcRequests tracks dispatched RPC calls by adapter, method and outcome.
	rpcRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pontoon_rpc_requests_total",
			Help: "Total adapter RPC calls by adapter token, method and status",
		},
		[]string{"adapter", "method", "status"},
	)

	// rpcDuration tracks call latency on the host side.
	rpcDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pontoon_rpc_request_duration_seconds",
			Help:    "Adapter RPC dispatch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"adapter", "method"},
	)

	// transportFailures tracks caller-side transport-level failures.
	transportFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pontoon_transport_failures_total",
			Help: "Caller-side transport failures by kind (timeout, connection, circuit_open)",
		},
		[]string{"kind"},
	)

	// breakerState reports circuit breaker state (0 closed, 1 open, 2 half-open).
	breakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pontoon_transport_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 open, 2 half-open",
		},
	)

	// bulkTransfers tracks payloads routed through the bulk side channel.
	bulkTransfers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pontoon_bulk_transfers_total",
			Help: "Payloads routed through the bulk side channel by direction",
		},
		[]string{"direction"},
	)

	// serverConnections tracks open RPC server connections.
	serverConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pontoon_rpc_server_connections",
			Help: "Currently open RPC server connections",
		},
	)
)

// RecordRequest records one dispatched call.
func RecordRequest(adapter, method, status string, duration time.Duration) {
	rpcRequests.WithLabelValues(adapter, method, status).Inc()
	rpcDuration.WithLabelValues(adapter, method).Observe(duration.Seconds())
}

// RecordTransportFailure records a caller-side transport failure.
func RecordTransportFailure(kind string) {
	transportFailures.WithLabelValues(kind).Inc()
}

// SetBreakerState reports the circuit breaker state.
func SetBreakerState(state int) {
	breakerState.Set(float64(state))
}

// RecordBulkTransfer records a payload crossing the bulk side channel.
func RecordBulkTransfer(direction string) {
	bulkTransfers.WithLabelValues(direction).Inc()
}

// ConnectionOpened increments the open-connection gauge.
func ConnectionOpened() {
	serverConnections.Inc()
}

// ConnectionClosed decrements the open-connection gauge.
func ConnectionClosed() {
	serverConnections.Dec()
}
