package postgres

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// openStoreForIntegrationTest подключается к базе из SHOPCORE_POSTGRES_TEST_DSN;
// без заданного DSN интеграционные тесты пропускаются.
func openStoreForIntegrationTest(t *testing.T) *Store {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("SHOPCORE_POSTGRES_TEST_DSN"))
	if dsn == "" {
		t.Skip("SHOPCORE_POSTGRES_TEST_DSN is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	return store
}

func TestCheckoutTx_Integration_ConditionalDecrement(t *testing.T) {
	store := openStoreForIntegrationTest(t)
	ctx := context.Background()

	customerID := uuid.NewString()
	productID := uuid.NewString()

	customers := NewCustomerRepository(store)
	products := NewProductRepository(store)
	err := customers.Create(ctx, domain.Customer{
		ID: customerID, Name: "Integration", Email: customerID + "@test.local",
		Age: 33, Location: "Nowhere", Gender: "Other",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if err := products.Create(ctx, domain.Product{
		ID: productID, Name: "Widget", Category: "tools", Price: 12.5, Stock: 3,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	checkout := NewCheckoutStore(store)
	tx, err := checkout.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	snapshot, err := tx.DecrementStock(ctx, productID, 2)
	if err != nil {
		_ = tx.Rollback()
		t.Fatalf("decrement: %v", err)
	}
	if snapshot.Stock != 1 {
		_ = tx.Rollback()
		t.Fatalf("expected stock 1 after decrement, got %d", snapshot.Stock)
	}

	// Второй декремент сверх остатка должен отклониться с доступным количеством.
	_, err = tx.DecrementStock(ctx, productID, 5)
	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) || insufficient.Available != 1 {
		_ = tx.Rollback()
		t.Fatalf("expected insufficiency with available=1, got %v", err)
	}

	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	// Откат не должен оставить следов.
	product, err := products.Get(ctx, productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 3 {
		t.Fatalf("rollback must restore stock, got %d", product.Stock)
	}
}

func TestCheckoutTx_Integration_CommitOrder(t *testing.T) {
	store := openStoreForIntegrationTest(t)
	ctx := context.Background()

	customerID := uuid.NewString()
	productID := uuid.NewString()
	orderID := uuid.NewString()

	if err := NewCustomerRepository(store).Create(ctx, domain.Customer{
		ID: customerID, Name: "Integration", Email: customerID + "@test.local",
		Age: 33, Location: "Nowhere", Gender: "Other",
	}); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if err := NewProductRepository(store).Create(ctx, domain.Product{
		ID: productID, Name: "Widget", Category: "tools", Price: 12.5, Stock: 3,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	tx, err := NewCheckoutStore(store).Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := tx.DecrementStock(ctx, productID, 2); err != nil {
		_ = tx.Rollback()
		t.Fatalf("decrement: %v", err)
	}
	order := domain.Order{
		ID:          orderID,
		CustomerID:  customerID,
		Lines:       []domain.OrderLine{{ProductID: productID, Quantity: 2, PriceAtPurchase: 12.5}},
		TotalAmount: 25,
		OrderDate:   time.Now().UTC(),
		Status:      domain.OrderStatusPending,
	}
	if err := tx.InsertOrder(ctx, order); err != nil {
		_ = tx.Rollback()
		t.Fatalf("insert order: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	stored, err := NewOrderRepository(store).Get(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(stored.Lines) != 1 || stored.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected stored order: %+v", stored)
	}
	if errs := stored.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("stored order violates invariants: %v", errs)
	}
}
