// Package metrics provides Prometheus instrumentation for the stock game.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TicksTotal counts completed market ticks.
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockgame_ticks_total",
		Help: "Total number of completed market ticks",
	})

	// TickErrors counts ticks that failed and triggered the cooldown.
	TickErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockgame_tick_errors_total",
		Help: "Ticks aborted by an unexpected error",
	})

	// TickDuration tracks how long one tick takes end to end.
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stockgame_tick_duration_seconds",
		Help:    "Market tick duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// TradesTotal counts executed trades, partitioned by side.
	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockgame_trades_total",
		Help: "Total number of trades executed",
	}, []string{"side"})

	// TradeRejections counts rejected trades by reason.
	TradeRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockgame_trade_rejections_total",
		Help: "Trades rejected by validation",
	}, []string{"reason"})

	// ActiveGlobalEvents tracks the size of the active global event set.
	ActiveGlobalEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stockgame_active_global_events",
		Help: "Number of currently active global events",
	})

	// NewsPushesTotal counts successful news deliveries to groups.
	NewsPushesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockgame_news_pushes_total",
		Help: "News digests delivered to groups",
	})

	// NewsPushFailures counts failed news deliveries.
	NewsPushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockgame_news_push_failures_total",
		Help: "News deliveries that failed",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stockgame_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockgame_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockgame_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
