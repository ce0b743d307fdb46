// Package metrics exposes the router's operational counters and gauges
// over a Prometheus /metrics endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "horizon_signals_total", Help: "Signals processed, by routed intent"},
		[]string{"intent"},
	)
	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "horizon_rejections_total", Help: "Signals rejected, by reason code"},
		[]string{"reason"},
	)
	ExitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "horizon_exits_total", Help: "Trend positions closed, by exit reason"},
		[]string{"reason"},
	)
	DeferralsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "horizon_deferrals_total", Help: "Exit evaluations deferred on stale market data"},
	)
	OpenPositions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "horizon_open_positions", Help: "Open positions per account"},
		[]string{"account"},
	)
	AccountExposure = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "horizon_account_exposure", Help: "Entry-notional exposure per account"},
		[]string{"account"},
	)
)

func init() {
	prometheus.MustRegister(
		SignalsTotal, RejectionsTotal, ExitsTotal,
		DeferralsTotal, OpenPositions, AccountExposure,
	)
}

// Serve starts a /metrics endpoint on addr and returns the server so the
// caller can Close it on shutdown.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
