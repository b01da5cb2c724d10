// Package metrics mendaftarkan counter Prometheus untuk bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kasir_bot"

// Registry terpisah dari registry global supaya test tidak saling bentrok.
var Registry = prometheus.NewRegistry()

var (
	// EventsHandled dihitung per jenis event (text, callback) setelah lolos gate.
	EventsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_handled_total",
		Help:      "Inbound chat events processed by the dispatcher.",
	}, []string{"kind"})

	// EventsDropped: reason = debounce | access_denied
	EventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Inbound chat events rejected before reaching the state machine.",
	}, []string{"reason"})

	// Transactions: op = create | update, result = ok | duplicate | not_found | error
	Transactions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_total",
		Help:      "Transaction store writes by outcome.",
	}, []string{"op", "result"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served by the router.",
	}, []string{"method", "path", "status"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		EventsHandled,
		EventsDropped,
		Transactions,
		HTTPRequests,
	)
}

// RegisterActiveSessions memasang gauge jumlah sesi aktif. Dipanggil sekali saat start.
func RegisterActiveSessions(count func() int) error {
	return Registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Conversations currently held in memory.",
	}, func() float64 { return float64(count()) }))
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
