package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// EventType определяет тип публикуемого события.
type EventType string

const (
	// EventTypeOrderPlaced — заказ зафиксирован вместе с декрементами стока.
	EventTypeOrderPlaced EventType = "order.placed"
)

// TopicOrderEvents — топик событий заказов.
const TopicOrderEvents = "shopcore.order.events"

// OrderEventLine — позиция заказа в составе события.
type OrderEventLine struct {
	ProductID       string  `json:"product_id"`
	Quantity        int32   `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
}

// OrderEvent представляет событие заказа для внешних потребителей.
type OrderEvent struct {
	EventType   EventType        `json:"event_type"`
	OrderID     string           `json:"order_id"`
	CustomerID  string           `json:"customer_id"`
	Status      string           `json:"status"`
	TotalAmount float64          `json:"total_amount"`
	Lines       []OrderEventLine `json:"lines"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewOrderPlacedEvent собирает событие по зафиксированному заказу.
func NewOrderPlacedEvent(order domain.Order) OrderEvent {
	lines := make([]OrderEventLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderEventLine{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: line.PriceAtPurchase,
		})
	}

	return OrderEvent{
		EventType:   EventTypeOrderPlaced,
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		Lines:       lines,
		Timestamp:   time.Now().UTC(),
	}
}
