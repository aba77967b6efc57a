package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "rewind_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	calculationTotal   *prometheus.CounterVec
	calculationLatency *prometheus.HistogramVec

	projectOperations *prometheus.CounterVec

	referenceCache *prometheus.CounterVec

	exportTotal *prometheus.CounterVec
)

// Init registers the application metrics with the default registry.
func Init() {
	InitWith(prometheus.DefaultRegisterer)
}

// InitWith registers the application metrics with reg. Only the first call has an effect.
func InitWith(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		calculationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "calculations_total",
				Help: "Total calculations by type and result",
			},
			[]string{"type", "result"},
		)
		calculationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "calculation_latency_seconds",
				Help:    "Calculation latency in seconds, reference lookups included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		)
		projectOperations = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "project_operations_total",
				Help: "Total project repository operations by operation and result",
			},
			[]string{"operation", "result"},
		)
		referenceCache = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reference_cache_total",
				Help: "Reference table cache lookups by table and outcome",
			},
			[]string{"table", "outcome"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Total document exports by format and result",
			},
			[]string{"format", "result"},
		)

		reg.MustRegister(
			calculationTotal,
			calculationLatency,
			projectOperations,
			referenceCache,
			exportTotal,
		)
	})
}

// ObserveCalculation records a calculation outcome and its duration.
func ObserveCalculation(calcType string, err error, duration time.Duration) {
	if calcType == "" {
		calcType = "unknown"
	}
	if calculationTotal != nil {
		calculationTotal.WithLabelValues(calcType, resultOf(err)).Inc()
	}
	if calculationLatency != nil {
		calculationLatency.WithLabelValues(calcType).Observe(duration.Seconds())
	}
}

// IncProjectOperation counts a project repository call.
func IncProjectOperation(operation string, err error) {
	if projectOperations != nil {
		projectOperations.WithLabelValues(operation, resultOf(err)).Inc()
	}
}

// IncReferenceCache counts a cache hit, miss or error for a reference table.
func IncReferenceCache(table, outcome string) {
	if referenceCache != nil {
		referenceCache.WithLabelValues(table, outcome).Inc()
	}
}

// IncExport counts a generated PDF or XLSX document.
func IncExport(format string, err error) {
	if format == "" {
		format = "unknown"
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, resultOf(err)).Inc()
	}
}

func resultOf(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)
