package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// uncategorized — категория для товаров без заполненного поля Category.
const uncategorized = "Uncategorized"

// analyticsRepository — in-process конвейер фильтрация → группировка/соединение
// → сортировка/ограничение поверх общих карт. Семантика совпадает с
// SQL-агрегациями postgres-реализации.
type analyticsRepository struct {
	store *Store
}

func (r *analyticsRepository) CustomerSpending(ctx context.Context, customerID string) (domain.CustomerSpending, error) {
	if err := ctx.Err(); err != nil {
		return domain.CustomerSpending{}, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	spending := domain.CustomerSpending{CustomerID: customerID}
	var (
		sum   float64
		count int64
	)
	for _, order := range r.store.orders {
		if order.CustomerID != customerID || order.Status != domain.OrderStatusCompleted {
			continue
		}
		sum += order.TotalAmount
		count++
		if spending.LastOrderDate == nil || order.OrderDate.After(*spending.LastOrderDate) {
			last := order.OrderDate
			spending.LastOrderDate = &last
		}
	}

	if count == 0 {
		return spending, nil
	}
	spending.TotalSpent = domain.Round2(sum)
	spending.AverageOrderValue = domain.Round2(sum / float64(count))
	return spending, nil
}

func (r *analyticsRepository) TopSellingProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sold := make(map[string]int64)
	for _, order := range r.store.orders {
		if order.Status != domain.OrderStatusCompleted {
			continue
		}
		for _, line := range order.Lines {
			sold[line.ProductID] += int64(line.Quantity)
		}
	}

	result := make([]domain.ProductSales, 0, len(sold))
	for productID, total := range sold {
		// Позиции без товара в каталоге в рейтинг не попадают.
		product, ok := r.store.products[productID]
		if !ok {
			continue
		}
		result = append(result, domain.ProductSales{
			ProductID: productID,
			Name:      product.Name,
			TotalSold: total,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalSold != result[j].TotalSold {
			return result[i].TotalSold > result[j].TotalSold
		}
		return result[i].ProductID < result[j].ProductID
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *analyticsRepository) SalesReport(ctx context.Context, window domain.DateRange) (domain.SalesReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.SalesReport{}, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var (
		revenue    float64
		orders     int64
		byCategory = make(map[string]float64)
	)
	for _, order := range r.store.orders {
		if order.Status != domain.OrderStatusCompleted || !window.Contains(order.OrderDate) {
			continue
		}
		revenue += order.TotalAmount
		orders++

		for _, line := range order.Lines {
			product, ok := r.store.products[line.ProductID]
			if !ok {
				continue
			}
			category := product.Category
			if category == "" {
				category = uncategorized
			}
			byCategory[category] += float64(line.Quantity) * line.PriceAtPurchase
		}
	}

	breakdown := make([]domain.CategoryRevenue, 0, len(byCategory))
	for category, catRevenue := range byCategory {
		breakdown = append(breakdown, domain.CategoryRevenue{
			Category: category,
			Revenue:  domain.Round2(catRevenue),
		})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Revenue != breakdown[j].Revenue {
			return breakdown[i].Revenue > breakdown[j].Revenue
		}
		return breakdown[i].Category < breakdown[j].Category
	})

	return domain.SalesReport{
		TotalRevenue:      domain.Round2(revenue),
		CompletedOrders:   orders,
		CategoryBreakdown: breakdown,
	}, nil
}

var _ domain.AnalyticsRepository = (*analyticsRepository)(nil)
