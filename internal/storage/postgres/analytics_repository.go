package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// analyticsRepository — декларативные агрегации поверх зафиксированных данных.
// Каждый отчёт выполняется в read-only транзакции, чтобы его запросы видели
// один снимок: наполовину применённые заказы не наблюдаемы.
type analyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository создаёт PostgreSQL-реализацию AnalyticsRepository.
func NewAnalyticsRepository(store *Store) domain.AnalyticsRepository {
	return &analyticsRepository{db: store.DB()}
}

func (r *analyticsRepository) CustomerSpending(ctx context.Context, customerID string) (domain.CustomerSpending, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		sum   float64
		count int64
		last  sql.NullTime
	)
	err := r.db.QueryRowContext(opCtx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*), MAX(order_date)
		FROM orders
		WHERE customer_id = $1
		  AND status = 'completed'
	`, customerID).Scan(&sum, &count, &last)
	if err != nil {
		return domain.CustomerSpending{}, fmt.Errorf("aggregate customer spending: %w", err)
	}

	spending := domain.CustomerSpending{CustomerID: customerID}
	if count == 0 {
		return spending, nil
	}

	spending.TotalSpent = domain.Round2(sum)
	spending.AverageOrderValue = domain.Round2(sum / float64(count))
	if last.Valid {
		lastAt := last.Time.UTC()
		spending.LastOrderDate = &lastAt
	}

	return spending, nil
}

func (r *analyticsRepository) TopSellingProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// INNER JOIN с каталогом отсеивает позиции удалённых товаров.
	rows, err := r.db.QueryContext(opCtx, `
		SELECT l.product_id, p.name, SUM(l.quantity)::BIGINT AS total_sold
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		JOIN products p ON p.id = l.product_id
		WHERE o.status = 'completed'
		GROUP BY l.product_id, p.name
		ORDER BY total_sold DESC, l.product_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("aggregate top products: %w", err)
	}
	defer rows.Close()

	result := make([]domain.ProductSales, 0, limit)
	for rows.Next() {
		var sales domain.ProductSales
		if err := rows.Scan(&sales.ProductID, &sales.Name, &sales.TotalSold); err != nil {
			return nil, fmt.Errorf("scan product sales: %w", err)
		}
		result = append(result, sales)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product sales: %w", err)
	}

	return result, nil
}

func (r *analyticsRepository) SalesReport(ctx context.Context, window domain.DateRange) (domain.SalesReport, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(opCtx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return domain.SalesReport{}, fmt.Errorf("begin report tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var report domain.SalesReport
	var revenue float64
	err = tx.QueryRowContext(opCtx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM orders
		WHERE status = 'completed'
		  AND order_date >= $1
		  AND order_date < $2
	`, window.From, window.To).Scan(&revenue, &report.CompletedOrders)
	if err != nil {
		return domain.SalesReport{}, fmt.Errorf("aggregate revenue: %w", err)
	}
	report.TotalRevenue = domain.Round2(revenue)

	rows, err := tx.QueryContext(opCtx, `
		SELECT COALESCE(NULLIF(p.category, ''), 'Uncategorized') AS category,
		       SUM(l.quantity * l.price_at_purchase)::FLOAT8 AS revenue
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		JOIN products p ON p.id = l.product_id
		WHERE o.status = 'completed'
		  AND o.order_date >= $1
		  AND o.order_date < $2
		GROUP BY 1
	`, window.From, window.To)
	if err != nil {
		return domain.SalesReport{}, fmt.Errorf("aggregate categories: %w", err)
	}
	defer rows.Close()

	breakdown := make([]domain.CategoryRevenue, 0)
	for rows.Next() {
		var entry domain.CategoryRevenue
		if err := rows.Scan(&entry.Category, &entry.Revenue); err != nil {
			return domain.SalesReport{}, fmt.Errorf("scan category revenue: %w", err)
		}
		entry.Revenue = domain.Round2(entry.Revenue)
		breakdown = append(breakdown, entry)
	}
	if err := rows.Err(); err != nil {
		return domain.SalesReport{}, fmt.Errorf("iterate category revenue: %w", err)
	}

	// Сортировка после округления, чтобы порядок соответствовал отчётным цифрам.
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Revenue != breakdown[j].Revenue {
			return breakdown[i].Revenue > breakdown[j].Revenue
		}
		return breakdown[i].Category < breakdown[j].Category
	})
	report.CategoryBreakdown = breakdown

	return report, nil
}

var _ domain.AnalyticsRepository = (*analyticsRepository)(nil)
