// Package metrics описывает метрики Prometheus сервиса: операции эскроу,
// события релея чата и HTTP запросы. Метрики регистрируются в реестре по
// умолчанию при импорте пакета и отдаются через /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gig_escrow"

// Результаты операций для метки result.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// EscrowOperationsTotal считает атомарные операции эскроу.
// operation: accept, approve, cancel; result: ok, rejected (ошибка домена), error (сбой БД).
var EscrowOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "escrow_operations_total",
		Help:      "Total number of escrow state transitions by operation and result.",
	},
	[]string{"operation", "result"},
)

// EscrowVolume - суммы, прошедшие через эскроу (заблокировано, выплачено, возвращено).
var EscrowVolume = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "escrow_volume_total",
		Help:      "Total amount of currency units moved through escrow, by operation.",
	},
	[]string{"operation"},
)

// RelayConnections - текущее число WebSocket подключений.
var RelayConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "relay_connections",
		Help:      "Current number of open chat relay connections.",
	},
)

// RelayEventsTotal считает входящие события релея по типу.
var RelayEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relay_events_total",
		Help:      "Total number of inbound relay events by type.",
	},
	[]string{"type"},
)

// RelayErrorsTotal считает ошибки, возвращённые отправителю события.
var RelayErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relay_errors_total",
		Help:      "Total number of relay errors reported back to senders, by reason.",
	},
	[]string{"reason"},
)

// RelayDroppedTotal - сообщения, не доставленные медленным клиентам.
var RelayDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relay_dropped_total",
		Help:      "Total number of relay deliveries dropped because a client send queue was full.",
	},
)

// HTTPRequestDuration измеряет длительность HTTP запросов.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
