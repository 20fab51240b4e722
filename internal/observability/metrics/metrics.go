package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "profitdesk_"

	resultSuccess = "success"
	resultError   = "error"
)

// ResultSuccess and ResultError label pipeline outcomes.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)

var (
	registerOnce sync.Once

	uploadDecodeTotal   *prometheus.CounterVec
	uploadDecodeLatency *prometheus.HistogramVec

	reportGenerateTotal   *prometheus.CounterVec
	reportGenerateLatency *prometheus.HistogramVec

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec

	ledgerFetchTotal   *prometheus.CounterVec
	ledgerFetchRetries prometheus.Counter

	missingCostUnits prometheus.Counter

	cachedDatasets prometheus.Gauge
)

// Init registers observability metrics and DB connection gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		uploadDecodeTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "upload_decode_total",
				Help: "Total upload decode operations by result",
			},
			[]string{"result"},
		)
		uploadDecodeLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "upload_decode_latency_seconds",
				Help:    "Upload decode latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		reportGenerateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_generate_total",
				Help: "Total profit report generations by result",
			},
			[]string{"result"},
		)
		reportGenerateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_generate_latency_seconds",
				Help:    "Profit report generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report export operations by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		ledgerFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_fetch_total",
				Help: "Total cost-ledger snapshot fetches by result",
			},
			[]string{"result"},
		)
		ledgerFetchRetries = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_fetch_retries_total",
				Help: "Total cost-ledger fetch retries",
			},
		)

		missingCostUnits = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "missing_cost_units_total",
				Help: "Total units reconciled without an inventory cost entry",
			},
		)

		cachedDatasets = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "cached_datasets",
				Help: "Decoded datasets currently held in the session cache",
			},
		)

		prometheus.MustRegister(
			uploadDecodeTotal,
			uploadDecodeLatency,
			reportGenerateTotal,
			reportGenerateLatency,
			reportExportTotal,
			reportExportLatency,
			ledgerFetchTotal,
			ledgerFetchRetries,
			missingCostUnits,
			cachedDatasets,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	openConns := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_open_connections",
			Help: "Open database connections",
		},
		func() float64 { return float64(db.Stats().OpenConnections) },
	)
	inUseConns := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_in_use_connections",
			Help: "In-use database connections",
		},
		func() float64 { return float64(db.Stats().InUse) },
	)
	if err := prometheus.Register(openConns); err != nil && logger != nil {
		logger.Printf("metrics: register db gauge: %v", err)
	}
	if err := prometheus.Register(inUseConns); err != nil && logger != nil {
		logger.Printf("metrics: register db gauge: %v", err)
	}
}

// ObserveUploadDecode records decode duration and result.
func ObserveUploadDecode(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if uploadDecodeTotal != nil {
		uploadDecodeTotal.WithLabelValues(result).Inc()
	}
	if uploadDecodeLatency != nil {
		uploadDecodeLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveReportGenerate records generation latency and result.
func ObserveReportGenerate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reportGenerateTotal != nil {
		reportGenerateTotal.WithLabelValues(result).Inc()
	}
	if reportGenerateLatency != nil {
		reportGenerateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveReportExport records export latency by format and result.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncLedgerFetch increments the ledger fetch counter.
func IncLedgerFetch(result string) {
	if result == "" {
		result = resultSuccess
	}
	if ledgerFetchTotal != nil {
		ledgerFetchTotal.WithLabelValues(result).Inc()
	}
}

// IncLedgerFetchRetry increments the retry counter.
func IncLedgerFetchRetry() {
	if ledgerFetchRetries != nil {
		ledgerFetchRetries.Inc()
	}
}

// AddMissingCostUnits adds reconciled units lacking an inventory cost.
func AddMissingCostUnits(units float64) {
	if units <= 0 {
		return
	}
	if missingCostUnits != nil {
		missingCostUnits.Add(units)
	}
}

// SetCachedDatasets records the current session-cache size.
func SetCachedDatasets(count int) {
	if cachedDatasets != nil {
		cachedDatasets.Set(float64(count))
	}
}
