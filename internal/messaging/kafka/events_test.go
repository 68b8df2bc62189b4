package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

func TestNewOrderPlacedEvent(t *testing.T) {
	order := domain.Order{
		ID:         "order-1",
		CustomerID: "customer-1",
		Lines: []domain.OrderLine{
			{ProductID: "product-1", Quantity: 2, PriceAtPurchase: 9.99},
		},
		TotalAmount: 19.98,
		OrderDate:   time.Now().UTC(),
		Status:      domain.OrderStatusPending,
	}

	event := NewOrderPlacedEvent(order)

	if event.EventType != EventTypeOrderPlaced {
		t.Fatalf("unexpected event type: %s", event.EventType)
	}
	if event.OrderID != "order-1" || event.CustomerID != "customer-1" {
		t.Fatalf("unexpected identifiers: %+v", event)
	}
	if len(event.Lines) != 1 || event.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines: %+v", event.Lines)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("timestamp must be set")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["event_type"] != "order.placed" {
		t.Fatalf("unexpected wire event type: %v", decoded["event_type"])
	}
}
