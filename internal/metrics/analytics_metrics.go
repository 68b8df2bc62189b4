package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AnalyticsMetrics содержит метрики агрегирующих запросов и кэша отчётов.
type AnalyticsMetrics struct {
	queryDuration *prometheus.HistogramVec
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
}

// NewAnalyticsMetrics регистрирует метрики аналитики в реестре по умолчанию.
func NewAnalyticsMetrics() *AnalyticsMetrics {
	return NewAnalyticsMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewAnalyticsMetricsWithRegisterer позволяет подменить реестр в тестах.
func NewAnalyticsMetricsWithRegisterer(registerer prometheus.Registerer) *AnalyticsMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &AnalyticsMetrics{
		queryDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "shopcore_analytics_query_duration_seconds",
			Help:    "Latency of analytics aggregation queries by report",
			Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
		cacheHits: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shopcore_analytics_cache_hits_total",
			Help: "Total number of report cache hits",
		}),
		cacheMisses: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shopcore_analytics_cache_misses_total",
			Help: "Total number of report cache misses",
		}),
	}
}

// RecordQueryDuration записывает длительность агрегирующего запроса.
func (m *AnalyticsMetrics) RecordQueryDuration(report string, duration time.Duration) {
	m.queryDuration.WithLabelValues(report).Observe(duration.Seconds())
}

// RecordCacheHit увеличивает счётчик попаданий в кэш отчётов.
func (m *AnalyticsMetrics) RecordCacheHit() {
	m.cacheHits.Inc()
}

// RecordCacheMiss увеличивает счётчик промахов кэша отчётов.
func (m *AnalyticsMetrics) RecordCacheMiss() {
	m.cacheMisses.Inc()
}
