// Package metrics holds the prometheus collectors of the explorer and the
// handler exposing them.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.vocdoni.io/explorer/log"
)

const namespace = "explorer"

// Query cache collectors, labeled by query name (the first part of the key).
var (
	QueryFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "query",
		Name:      "fetches_total",
		Help:      "Number of fetches started by the query cache",
	}, []string{"query"})

	QueryFetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "query",
		Name:      "fetch_errors_total",
		Help:      "Number of fetches that failed after all retries",
	}, []string{"query"})

	QueryCacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "query",
		Name:      "cache_hits_total",
		Help:      "Number of query reads served from fresh cached data",
	}, []string{"query"})

	QueryFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "query",
		Name:      "fetch_duration_seconds",
		Help:      "Time taken by fetches, retries included",
		Buckets:   prometheus.DefBuckets,
	}, []string{"query"})
)

var registerOnce sync.Once

// RegisterQueryMetrics registers the query cache collectors on the default
// registry. It is safe to call more than once.
func RegisterQueryMetrics() {
	registerOnce.Do(func() {
		Register(QueryFetches)
		Register(QueryFetchErrors)
		Register(QueryCacheHits)
		Register(QueryFetchDuration)
	})
}

// Register the provided prometheus collector, ignoring any error returned (simply logs a Warn)
func Register(c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		log.Warnf("cannot register metrics: (%s) (%+v)", err, c)
	}
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.HandlerFunc {
	return promhttp.Handler().ServeHTTP
}

// Info is always 1, labeled with the running version.
var Info = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "info",
	Help:      "Explorer build information",
}, []string{"version"})

var infoOnce sync.Once

// SetInfo registers Info and sets it for version.
func SetInfo(version string) {
	infoOnce.Do(func() { Register(Info) })
	Info.WithLabelValues(version).Set(1)
}
