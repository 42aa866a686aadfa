package metrics

import (
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmarket_errors_total",
			Help: "Logged errors and degraded-mode warnings by error type.",
		},
		[]string{"type"},
	)
	CacheHitsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmarket_cache_hits_total",
			Help: "Total number of analytics results served from cache.",
		},
		[]string{"tier"},
	)
	CacheMissesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobmarket_cache_misses_total",
			Help: "Total number of analytics results computed on cache miss.",
		},
	)
	ComputationDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "jobmarket_computation_duration_seconds",
			Help:       "Duration of each engine operation.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"operation"},
	)
	StoreQueryDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "jobmarket_store_query_duration_seconds",
			Help:       "Duration of each grouped store query.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"query"},
	)
	ImportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobmarket_import_duration_seconds",
			Help:    "Duration of each dataset import in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60},
		},
	)
	ImportedRecordsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobmarket_records_imported_total",
			Help: "Total number of imported job records.",
		},
	)
	DroppedRecordsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobmarket_records_dropped_total",
			Help: "Total number of job records rejected by validation.",
		},
	)
)

func StartMetricsServer(port int) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(CacheHitsCounter)
	prometheus.MustRegister(CacheMissesCounter)
	prometheus.MustRegister(ComputationDuration)
	prometheus.MustRegister(StoreQueryDuration)
	prometheus.MustRegister(ImportDuration)
	prometheus.MustRegister(ImportedRecordsCounter)
	prometheus.MustRegister(DroppedRecordsCounter)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), nil))
	}()
}
