package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/metrics"
)

// ReportTTL — срок жизни кэшированного отчёта. Отчёты допускают небольшое
// отставание от последних заказов, свежесть восстанавливается по истечении TTL.
const ReportTTL = 5 * time.Minute

// CachedAnalytics — сквозной кэш отчётов поверх любого AnalyticsRepository.
// Redis используется по принципу fail-open: недоступность кэша деградирует
// до прямого запроса к хранилищу и никогда не роняет отчёт.
type CachedAnalytics struct {
	next    domain.AnalyticsRepository
	client  *redis.Client
	logger  *log.Entry
	metrics *metrics.AnalyticsMetrics
	ttl     time.Duration
}

// NewCachedAnalytics оборачивает репозиторий аналитики кэшем отчётов.
func NewCachedAnalytics(next domain.AnalyticsRepository, client *redis.Client, logger *log.Entry) *CachedAnalytics {
	if logger == nil {
		logger = log.New().WithField("component", "analytics-cache")
	}
	return &CachedAnalytics{
		next:    next,
		client:  client,
		logger:  logger,
		metrics: metrics.NewAnalyticsMetrics(),
		ttl:     ReportTTL,
	}
}

// NewCachedAnalyticsWithoutMetrics создаёт кэш без метрик (для тестов).
func NewCachedAnalyticsWithoutMetrics(next domain.AnalyticsRepository, client *redis.Client, logger *log.Entry) *CachedAnalytics {
	cache := NewCachedAnalytics(next, client, logger)
	cache.metrics = nil
	return cache
}

// CustomerSpending возвращает сводку из кэша либо из хранилища.
func (c *CachedAnalytics) CustomerSpending(ctx context.Context, customerID string) (domain.CustomerSpending, error) {
	key := fmt.Sprintf("analytics:spending:%s", customerID)

	var cached domain.CustomerSpending
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	spending, err := c.next.CustomerSpending(ctx, customerID)
	if err != nil {
		return domain.CustomerSpending{}, err
	}
	c.save(ctx, key, spending)
	return spending, nil
}

// TopSellingProducts возвращает рейтинг из кэша либо из хранилища.
func (c *CachedAnalytics) TopSellingProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	key := fmt.Sprintf("analytics:top:%d", limit)

	var cached []domain.ProductSales
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	top, err := c.next.TopSellingProducts(ctx, limit)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, top)
	return top, nil
}

// SalesReport возвращает сводку продаж из кэша либо из хранилища.
func (c *CachedAnalytics) SalesReport(ctx context.Context, window domain.DateRange) (domain.SalesReport, error) {
	key := fmt.Sprintf("analytics:sales:%s:%s",
		window.From.UTC().Format(time.RFC3339),
		window.To.UTC().Format(time.RFC3339))

	var cached domain.SalesReport
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	report, err := c.next.SalesReport(ctx, window)
	if err != nil {
		return domain.SalesReport{}, err
	}
	c.save(ctx, key, report)
	return report, nil
}

// lookup читает и декодирует значение из кэша. Любой сбой Redis или
// повреждённая запись трактуются как промах.
func (c *CachedAnalytics) lookup(ctx context.Context, key string, target any) bool {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("key", key).Warn("report cache read failed")
		}
		if c.metrics != nil {
			c.metrics.RecordCacheMiss()
		}
		return false
	}
	if err := json.Unmarshal(payload, target); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("report cache entry corrupted")
		if c.metrics != nil {
			c.metrics.RecordCacheMiss()
		}
		return false
	}
	if c.metrics != nil {
		c.metrics.RecordCacheHit()
	}
	return true
}

func (c *CachedAnalytics) save(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("report cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("report cache write failed")
	}
}

var _ domain.AnalyticsRepository = (*CachedAnalytics)(nil)
