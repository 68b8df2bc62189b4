package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrLinesRequired = errors.New("order must contain at least one line")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("total_amount must be non-negative")
	// Ошибка отсутствующего идентификатора товара в позиции.
	ErrLineProductRequired = errors.New("line product_id is required")
	// Ошибка при некорректном количестве товара (< 1).
	ErrLineQtyInvalid = errors.New("line quantity must be at least 1")
	// Ошибка, если зафиксированная цена позиции отрицательная.
	ErrLinePriceInvalid = errors.New("line price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order total does not match lines sum")
	// Ошибка отсутствующего имени товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отрицательной цены товара.
	ErrPriceNegative = errors.New("product price must be non-negative")
	// Ошибка отрицательного стока.
	ErrStockNegative = errors.New("product stock must be non-negative")

	// ErrCustomerNotFound возвращается, если клиент не найден в справочнике.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в реестре.
	ErrOrderNotFound = errors.New("order not found")
	// ErrAlreadyExists сигнализирует о конфликте идентификаторов при создании записи.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidDateRange возвращается при нераспознаваемых границах окна аналитики.
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrTransactionAborted — инфраструктурный сбой транзакции; ядро не
	// повторяет попытку, решение остаётся за вызывающей стороной.
	ErrTransactionAborted = errors.New("transaction aborted")
)

// StockIssueKind различает причины отказа по позиции заказа.
type StockIssueKind string

const (
	StockIssueNotFound     StockIssueKind = "product_not_found"
	StockIssueInsufficient StockIssueKind = "insufficient_stock"
)

// StockIssue описывает отказ условного декремента для одной позиции заказа.
type StockIssue struct {
	// Line — индекс позиции во входном запросе.
	Line      int
	ProductID string
	// ProductName заполняется только для существующих товаров.
	ProductName string
	Kind        StockIssueKind
	// Available — остаток на момент проверки; имеет смысл для insufficient_stock.
	Available int32
}

func (i StockIssue) String() string {
	if i.Kind == StockIssueNotFound {
		return fmt.Sprintf("product not found: %s", i.ProductID)
	}
	return fmt.Sprintf("%s (insufficient stock: %d available)", i.ProductName, i.Available)
}

// OrderRejectedError агрегирует все отказы по позициям одного заказа.
// Ни один декремент отклонённого заказа не фиксируется.
type OrderRejectedError struct {
	Issues []StockIssue
}

func (e *OrderRejectedError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "order rejected due to inventory issues: " + strings.Join(parts, ", ")
}

// InvalidLineItemError указывает на некорректную позицию во входном запросе.
// Возвращается до каких-либо обращений к хранилищу.
type InvalidLineItemError struct {
	Line   int
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("invalid line item %d: %s", e.Line, e.Reason)
}

// InsufficientStockError возвращается условным декрементом, когда остатка
// не хватает на запрошенное количество.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available", e.ProductID, e.Available)
}

// IsRejected извлекает агрегированный отчёт об отказе, если он есть в цепочке.
func IsRejected(err error) (*OrderRejectedError, bool) {
	var rejected *OrderRejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}
