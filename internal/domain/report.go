package domain

import "time"

// CustomerSpending — сводка расходов клиента по завершённым заказам.
type CustomerSpending struct {
	CustomerID        string
	TotalSpent        float64
	AverageOrderValue float64
	// LastOrderDate равен nil, если завершённых заказов нет.
	LastOrderDate *time.Time
}

// ProductSales — элемент рейтинга продаж: товар и суммарное проданное количество.
type ProductSales struct {
	ProductID string
	Name      string
	TotalSold int64
}

// CategoryRevenue — выручка одной категории внутри окна отчёта.
type CategoryRevenue struct {
	Category string
	Revenue  float64
}

// SalesReport — сводка продаж за окно дат.
type SalesReport struct {
	TotalRevenue    float64
	CompletedOrders int64
	// CategoryBreakdown отсортирован по убыванию выручки.
	CategoryBreakdown []CategoryRevenue
}

// DateRange — полуинтервал [From, To) в UTC.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains сообщает, попадает ли момент времени в окно.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}
