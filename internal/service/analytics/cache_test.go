package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// unreachableRedis возвращает клиент, который гарантированно не подключится.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		ReadTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestCache(t *testing.T, next domain.AnalyticsRepository) *CachedAnalytics {
	t.Helper()
	logger := log.New()
	logger.SetLevel(log.FatalLevel)
	return NewCachedAnalyticsWithoutMetrics(next, unreachableRedis(t), logger.WithField("component", "cache-test"))
}

// Недоступный Redis деградирует до прямых запросов к хранилищу.
func TestCacheFailOpen(t *testing.T) {
	repo := &stubRepo{
		spending: domain.CustomerSpending{CustomerID: "customer-1", TotalSpent: 100},
		top:      []domain.ProductSales{{ProductID: "product-1", Name: "Keyboard", TotalSold: 7}},
		report:   domain.SalesReport{TotalRevenue: 100, CompletedOrders: 1},
	}
	cache := newTestCache(t, repo)
	ctx := context.Background()

	spending, err := cache.CustomerSpending(ctx, "customer-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, spending.TotalSpent)

	top, err := cache.TopSellingProducts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)

	window := domain.DateRange{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	report, err := cache.SalesReport(ctx, window)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.CompletedOrders)

	assert.Equal(t, 3, repo.calls, "every request must fall through to the repository")
}

func TestCachePropagatesRepositoryErrors(t *testing.T) {
	repo := &stubRepo{err: context.DeadlineExceeded}
	cache := newTestCache(t, repo)

	_, err := cache.CustomerSpending(context.Background(), "customer-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
