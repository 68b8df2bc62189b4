package domain

import (
	"math"
	"time"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, декременты стока зафиксированы.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusCompleted — заказ исполнен; только такие заказы учитывает аналитика.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCanceled — заказ отменён внешним процессом.
	OrderStatusCanceled OrderStatus = "canceled"
)

// TotalTolerance — допустимое расхождение между суммой заказа и суммой позиций.
const TotalTolerance = 0.01

// OrderLine представляет одну позицию заказа. PriceAtPurchase — снимок цены
// на момент декремента стока; после создания заказа не меняется.
type OrderLine struct {
	ProductID       string
	Quantity        int32
	PriceAtPurchase float64
}

// Order агрегирует заказ и его позиции. После создания заказ неизменяем,
// кроме поля Status, которым управляет внешний процесс исполнения.
type Order struct {
	ID          string
	CustomerID  string
	Lines       []OrderLine
	TotalAmount float64
	OrderDate   time.Time
	Status      OrderStatus
}

// LinesTotal пересчитывает сумму заказа по позициям с округлением до копеек.
func (o *Order) LinesTotal() float64 {
	var sum float64
	for _, line := range o.Lines {
		sum += float64(line.Quantity) * line.PriceAtPurchase
	}
	return Round2(sum)
}

// ValidateInvariants проверяет инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}
	if o.TotalAmount < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	for _, line := range o.Lines {
		if line.ProductID == "" {
			errs = append(errs, ErrLineProductRequired)
		}
		if line.Quantity < 1 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.PriceAtPurchase < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
	}

	if math.Abs(o.LinesTotal()-o.TotalAmount) > TotalTolerance {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
