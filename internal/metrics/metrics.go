// Package metrics exposes Prometheus instrumentation for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	playersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blockblast",
		Name:      "players_created_total",
		Help:      "Number of players registered.",
	})

	scoresSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blockblast",
		Name:      "scores_submitted_total",
		Help:      "Number of scores accepted and recorded.",
	})

	scoresRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blockblast",
		Name:      "scores_rejected_total",
		Help:      "Number of score submissions rejected before recording.",
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockblast",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// RecordPlayerCreated increments the player registration counter
func RecordPlayerCreated() { playersCreated.Inc() }

// RecordScoreSubmitted increments the accepted score counter
func RecordScoreSubmitted() { scoresSubmitted.Inc() }

// RecordScoreRejected increments the rejected submission counter
func RecordScoreRejected() { scoresRejected.Inc() }

// Middleware records request duration for every handled request
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		requestDuration.
			WithLabelValues(r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}

// Handler serves the Prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
