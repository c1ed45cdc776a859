package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "scans_total", Help: "Instrument scans completed, by outcome"},
		[]string{"symbol", "outcome"},
	)
	SetupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "setups_total", Help: "Trend-pullback setups detected"},
		[]string{"symbol"},
	)
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "decisions_total", Help: "Arbiter verdicts"},
		[]string{"symbol", "decision"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Order legs submitted"},
		[]string{"symbol", "leg"},
	)
	UnprotectedPositions = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "unprotected_positions_total", Help: "Entries whose protective legs failed"},
	)
)

func init() {
	prometheus.MustRegister(ScansTotal, SetupsTotal, DecisionsTotal, OrdersTotal, UnprotectedPositions)
}

// Serve exposes /metrics on addr in a background goroutine.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
