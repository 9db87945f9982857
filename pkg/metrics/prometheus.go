package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	candlesUpserted *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	lastClose       *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
	queryRetries    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		candlesUpserted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candlepull_candles_upserted_total",
				Help: "Total number of candles written to the store",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candlepull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastClose: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "candlepull_last_close_price",
				Help: "Close price of the most recently ingested candle",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "candlepull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		queryRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "candlepull_query_retries_total",
				Help: "Store operations retried after a transient failure",
			},
			[]string{"operation"},
		),
	}
}

// RecordCandleUpserted records one candle written for a symbol.
func (r *Recorder) RecordCandleUpserted(symbol string) {
	r.candlesUpserted.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence by type.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastClose records the latest ingested close price.
func (r *Recorder) RecordLastClose(symbol string, price float64) {
	r.lastClose.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordQueryRetry records one retried store operation.
func (r *Recorder) RecordQueryRetry(op string) {
	r.queryRetries.WithLabelValues(op).Inc()
}
