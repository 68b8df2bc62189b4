package domain

import "context"

// CheckoutTx — транзакционный контекст оформления заказа. Все операции
// выполняются в одних границах атомарности: Commit фиксирует их целиком,
// Rollback отменяет без следа. Координатор обязан завершить транзакцию
// на каждом пути выхода, включая отмену контекста.
type CheckoutTx interface {
	// CustomerExists проверяет наличие клиента в справочнике.
	CustomerExists(ctx context.Context, id string) (bool, error)
	// DecrementStock выполняет условный декремент: сток уменьшается на qty,
	// только если текущего остатка достаточно. Возвращает снимок товара после
	// декремента, ErrProductNotFound либо *InsufficientStockError с доступным
	// количеством. Декременты одного товара из конкурентных транзакций
	// сериализуются хранилищем.
	DecrementStock(ctx context.Context, productID string, qty int32) (Product, error)
	// InsertOrder добавляет заказ с позициями в реестр.
	InsertOrder(ctx context.Context, order Order) error
	// Commit фиксирует заказ вместе со всеми декрементами как единое целое.
	Commit(ctx context.Context) error
	// Rollback отменяет транзакцию; после Commit безвреден.
	Rollback() error
}

// CheckoutStore открывает транзакции оформления заказа.
type CheckoutStore interface {
	Begin(ctx context.Context) (CheckoutTx, error)
}

// AnalyticsRepository — запросы агрегации поверх зафиксированных данных.
// Реализации не изменяют состояние и не видят незавершённых транзакций.
type AnalyticsRepository interface {
	// CustomerSpending агрегирует завершённые заказы клиента.
	// Отсутствие заказов — нулевая сводка, не ошибка.
	CustomerSpending(ctx context.Context, customerID string) (CustomerSpending, error)
	// TopSellingProducts возвращает не более limit товаров по убыванию
	// проданного количества; limit к этому моменту уже нормализован.
	TopSellingProducts(ctx context.Context, limit int) ([]ProductSales, error)
	// SalesReport агрегирует выручку завершённых заказов в окне window.
	SalesReport(ctx context.Context, window DateRange) (SalesReport, error)
}
