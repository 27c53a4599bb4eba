// Package metrics provides Prometheus metrics for the import run:
// records read, translated, skipped, and forwarded, plus translation
// latency. Exposition is optional and enabled through configuration.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecordsRead counts raw records produced by format readers.
	RecordsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recast",
			Name:      "records_read_total",
			Help:      "Raw records read from input files",
		},
		[]string{"format"},
	)

	// RecordsTranslated counts successful translations.
	RecordsTranslated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recast",
			Name:      "records_translated_total",
			Help:      "Records successfully translated",
		},
	)

	// RecordsSkipped counts records dropped by required-field validation.
	RecordsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recast",
			Name:      "records_skipped_total",
			Help:      "Records skipped by validation",
		},
	)

	// RecordsForwarded counts records accepted by the sink.
	RecordsForwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recast",
			Name:      "records_forwarded_total",
			Help:      "Records forwarded to the sink",
		},
		[]string{"sink"},
	)

	// TranslateDuration observes per-record translation latency.
	TranslateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "recast",
			Name:      "translate_duration_seconds",
			Help:      "Per-record translation latency",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
	)
)

// Serve starts a Prometheus exposition endpoint on addr. It returns the
// server so the caller can shut it down.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
