package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sjsage522/reviewworker/logger"
)

var (
	PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewworker", Name: "pages_fetched_total", Help: "Review pages requested through the render service."},
		[]string{"source", "outcome"}, // outcome: ok|error|blocked
	)
	FetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reviewworker", Name: "fetch_duration_seconds",
			Help:    "Render service fetch duration seconds.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 70},
		},
		[]string{"source"},
	)
	ReviewsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewworker", Name: "reviews_extracted_total", Help: "Review records kept after filtering."},
		[]string{"source"},
	)
	ReviewsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewworker", Name: "reviews_dropped_total", Help: "Review containers not turned into records."},
		[]string{"source", "reason"}, // reason: missing_block|outside_window|undated
	)
	ReviewsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewworker", Name: "reviews_published_total", Help: "Review records published to the stream."},
		[]string{"source", "status"},
	)
)

// InitRegistry registers all collectors on a fresh registry
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(PagesFetched, FetchLatency, ReviewsExtracted, ReviewsDropped, ReviewsPublished)
	return reg
}

// Handler exposes reg in the prometheus text format
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr in the background. An empty addr disables it.
// The returned server can be shut down by the caller.
func Serve(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.LogError("metrics", err, "metrics server failed")
		}
	}()
	return srv
}

// ObserveFetch records one page request
func ObserveFetch(source, outcome string, dur time.Duration) {
	PagesFetched.WithLabelValues(source, outcome).Inc()
	if dur > 0 {
		FetchLatency.WithLabelValues(source).Observe(dur.Seconds())
	}
}

// ObserveExtraction records what one page produced
func ObserveExtraction(source string, kept, missingBlock, outsideWindow, undated int) {
	ReviewsExtracted.WithLabelValues(source).Add(float64(kept))
	ReviewsDropped.WithLabelValues(source, "missing_block").Add(float64(missingBlock))
	ReviewsDropped.WithLabelValues(source, "outside_window").Add(float64(outsideWindow))
	ReviewsDropped.WithLabelValues(source, "undated").Add(float64(undated))
}

// ObservePublish records a publish attempt
func ObservePublish(source string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	ReviewsPublished.WithLabelValues(source, status).Inc()
}
