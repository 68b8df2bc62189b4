package analytics

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/metrics"
)

// Границы нормализации параметра limit рейтинга продаж.
const (
	DefaultTopLimit = 10
	MaxTopLimit     = 100
)

// Имена отчётов для метрики shopcore_analytics_query_duration_seconds.
const (
	reportSpending = "customer_spending"
	reportTop      = "top_products"
	reportSales    = "sales"
)

// Aggregator вычисляет производные отчёты поверх зафиксированных данных.
// Сервис только читает: никакая аналитика не изменяет состояние хранилища.
type Aggregator struct {
	repo    domain.AnalyticsRepository
	logger  *log.Entry
	metrics *metrics.AnalyticsMetrics
}

// NewAggregator создаёт рабочий экземпляр сервиса аналитики.
func NewAggregator(repo domain.AnalyticsRepository, logger *log.Entry) *Aggregator {
	if logger == nil {
		logger = log.New().WithField("component", "analytics")
	}
	return &Aggregator{
		repo:    repo,
		logger:  logger,
		metrics: metrics.NewAnalyticsMetrics(),
	}
}

// NewAggregatorWithoutMetrics создаёт сервис без метрик (для тестов).
func NewAggregatorWithoutMetrics(repo domain.AnalyticsRepository, logger *log.Entry) *Aggregator {
	aggregator := NewAggregator(repo, logger)
	aggregator.metrics = nil
	return aggregator
}

// CustomerSpending возвращает сводку расходов клиента. Клиент без завершённых
// заказов получает нулевую сводку, а не ошибку.
func (a *Aggregator) CustomerSpending(ctx context.Context, customerID string) (domain.CustomerSpending, error) {
	if customerID == "" {
		return domain.CustomerSpending{}, domain.ErrCustomerRequired
	}

	start := time.Now()
	spending, err := a.repo.CustomerSpending(ctx, customerID)
	if err != nil {
		a.logger.WithError(err).WithField("customer_id", customerID).Error("customer spending query failed")
		return domain.CustomerSpending{}, fmt.Errorf("customer spending: %w", err)
	}
	if a.metrics != nil {
		a.metrics.RecordQueryDuration(reportSpending, time.Since(start))
	}
	return spending, nil
}

// TopSellingProducts возвращает рейтинг товаров по проданному количеству.
// limit нормализуется: 0 трактуется как значение по умолчанию, остальные
// значения ограничиваются диапазоном [1, 100].
func (a *Aggregator) TopSellingProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	limit = NormalizeLimit(limit)

	start := time.Now()
	top, err := a.repo.TopSellingProducts(ctx, limit)
	if err != nil {
		a.logger.WithError(err).WithField("limit", limit).Error("top products query failed")
		return nil, fmt.Errorf("top selling products: %w", err)
	}
	if a.metrics != nil {
		a.metrics.RecordQueryDuration(reportTop, time.Since(start))
	}
	return top, nil
}

// SalesReport агрегирует выручку завершённых заказов за окно дат.
// Обе границы обязательны; окно включает весь день endDate целиком.
// Пустое окно — корректный нулевой отчёт, а не ошибка.
func (a *Aggregator) SalesReport(ctx context.Context, startDate, endDate string) (domain.SalesReport, error) {
	window, err := ParseWindow(startDate, endDate)
	if err != nil {
		return domain.SalesReport{}, err
	}

	start := time.Now()
	report, err := a.repo.SalesReport(ctx, window)
	if err != nil {
		a.logger.WithError(err).WithFields(log.Fields{
			"start": startDate,
			"end":   endDate,
		}).Error("sales report query failed")
		return domain.SalesReport{}, fmt.Errorf("sales report: %w", err)
	}
	if a.metrics != nil {
		a.metrics.RecordQueryDuration(reportSales, time.Since(start))
	}
	return report, nil
}

// NormalizeLimit приводит запрошенный размер рейтинга к диапазону [1, 100].
// Нулевое значение означает, что параметр не задан.
func NormalizeLimit(limit int) int {
	if limit == 0 {
		limit = DefaultTopLimit
	}
	if limit < 1 {
		return 1
	}
	if limit > MaxTopLimit {
		return MaxTopLimit
	}
	return limit
}

// ParseWindow разбирает границы отчёта в полуинтервал [start, end+1 день).
// Принимаются календарные даты и метки времени RFC 3339; время трактуется
// в UTC. Нераспознаваемая граница — domain.ErrInvalidDateRange.
func ParseWindow(startDate, endDate string) (domain.DateRange, error) {
	from, err := parseBound(startDate)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("%w: start date %q", domain.ErrInvalidDateRange, startDate)
	}
	end, err := parseBound(endDate)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("%w: end date %q", domain.ErrInvalidDateRange, endDate)
	}
	return domain.DateRange{From: from, To: end.AddDate(0, 0, 1)}, nil
}

func parseBound(value string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", value, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
