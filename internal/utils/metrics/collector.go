// internal/utils/metrics/collector.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "solana_trade"

// Collector владеет набором метрик ядра. Все методы безопасны для nil-получателя,
// поэтому компоненты могут работать без метрик.
type Collector struct {
	quotes          *prometheus.CounterVec
	quoteDuration   *prometheus.HistogramVec
	submissions     *prometheus.CounterVec
	submitDuration  *prometheus.HistogramVec
	confirmDuration *prometheus.HistogramVec
	rpcLatency      *prometheus.HistogramVec
}

// NewCollector создает метрики и регистрирует их в reg.
// Тесты передают prometheus.NewRegistry(), процесс передает prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		quotes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quotes_total",
				Help:      "Quotes computed, by market, path and status",
			},
			[]string{"market", "source", "status"},
		),
		quoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "quote_duration_seconds",
				Help:      "Quote latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"market", "source"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Transaction submissions, by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		submitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "submission_duration_seconds",
				Help:      "Time from signing to an accepted submission",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"provider"},
		),
		confirmDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "confirmation_duration_seconds",
				Help:      "Time until a signature resolves",
				Buckets:   prometheus.LinearBuckets(0.5, 2.5, 20),
			},
			[]string{"outcome"},
		),
		rpcLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_latency_seconds",
				Help:      "RPC request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
			},
			[]string{"method"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			c.quotes,
			c.quoteDuration,
			c.submissions,
			c.submitDuration,
			c.confirmDuration,
			c.rpcLatency,
		)
	}
	return c
}

// RecordQuote записывает результат котировки.
func (c *Collector) RecordQuote(market, source string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.quotes.WithLabelValues(market, source, status(err)).Inc()
	c.quoteDuration.WithLabelValues(market, source).Observe(duration.Seconds())
}

// RecordSubmission записывает исход отправки транзакции.
func (c *Collector) RecordSubmission(provider, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.submissions.WithLabelValues(provider, outcome).Inc()
	c.submitDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordConfirmation записывает время ожидания подтверждения.
func (c *Collector) RecordConfirmation(outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.confirmDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordRPCLatency записывает метрики RPC-запроса
func (c *Collector) RecordRPCLatency(method string, duration time.Duration) {
	if c == nil {
		return
	}
	c.rpcLatency.WithLabelValues(method).Observe(duration.Seconds())
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
