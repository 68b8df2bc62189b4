package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/storage/memory"
)

func seedCustomer(t *testing.T, store *memory.Store, id string) domain.Customer {
	t.Helper()
	customer := domain.Customer{
		ID:       id,
		Name:     "Alice",
		Email:    id + "@example.com",
		Age:      30,
		Location: "Berlin",
		Gender:   "Female",
	}
	if err := store.Customers().Create(context.Background(), customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

func seedProduct(t *testing.T, store *memory.Store, id string, price float64, stock int32) domain.Product {
	t.Helper()
	product := domain.Product{
		ID:       id,
		Name:     "Product " + id,
		Category: "tools",
		Price:    price,
		Stock:    stock,
	}
	if err := store.Products().Create(context.Background(), product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

// placeTestOrder прогоняет заказ через транзакцию оформления.
func placeTestOrder(t *testing.T, store *memory.Store, order domain.Order) {
	t.Helper()
	ctx := context.Background()

	tx, err := store.Checkout().Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	for _, line := range order.Lines {
		if _, err := tx.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			_ = tx.Rollback()
			t.Fatalf("decrement: %v", err)
		}
	}
	if err := tx.InsertOrder(ctx, order); err != nil {
		_ = tx.Rollback()
		t.Fatalf("insert order: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestCustomerRepository_GetList(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedCustomer(t, store, "customer-2")
	seedCustomer(t, store, "customer-1")

	got, err := store.Customers().Get(ctx, "customer-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Email != "customer-1@example.com" {
		t.Fatalf("unexpected customer: %+v", got)
	}

	if _, err := store.Customers().Get(ctx, "ghost"); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}

	all, err := store.Customers().List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != "customer-1" {
		t.Fatalf("expected stable order, got %+v", all)
	}
}

func TestCustomerRepository_CreateDuplicate(t *testing.T) {
	store := memory.NewStore()
	customer := seedCustomer(t, store, "customer-1")

	err := store.Customers().Create(context.Background(), customer)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestProductRepository_GetList(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedProduct(t, store, "product-1", 9.99, 5)

	got, err := store.Products().Get(ctx, "product-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Price != 9.99 || got.Stock != 5 {
		t.Fatalf("unexpected product: %+v", got)
	}

	if _, err := store.Products().Get(ctx, "ghost"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	all, err := store.Products().List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 product, got %d", len(all))
	}
}

func TestOrderRepository_GetReturnsCopy(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedCustomer(t, store, "customer-1")
	seedProduct(t, store, "product-1", 10, 100)

	order := domain.Order{
		ID:          "order-1",
		CustomerID:  "customer-1",
		Lines:       []domain.OrderLine{{ProductID: "product-1", Quantity: 1, PriceAtPurchase: 10}},
		TotalAmount: 10,
		OrderDate:   time.Now().UTC(),
		Status:      domain.OrderStatusPending,
	}
	placeTestOrder(t, store, order)

	first, err := store.Orders().Get(ctx, "order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	first.Lines[0].Quantity = 99

	second, err := store.Orders().Get(ctx, "order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if second.Lines[0].Quantity != 1 {
		t.Fatal("stored order must not be mutable through returned slice")
	}
}

func TestOrderRepository_ListByCustomerPagination(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seedCustomer(t, store, "customer-1")
	seedProduct(t, store, "product-1", 1, 1000)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		order := domain.Order{
			ID:          fmt.Sprintf("order-%d", i),
			CustomerID:  "customer-1",
			Lines:       []domain.OrderLine{{ProductID: "product-1", Quantity: 1, PriceAtPurchase: 1}},
			TotalAmount: 1,
			OrderDate:   base.Add(time.Duration(i) * time.Hour),
			Status:      domain.OrderStatusPending,
		}
		placeTestOrder(t, store, order)
	}

	page1, err := store.Orders().ListByCustomer(ctx, "customer-1", 1, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page1) != 2 || page1[0].ID != "order-4" || page1[1].ID != "order-3" {
		t.Fatalf("expected newest first, got %+v", page1)
	}

	page3, err := store.Orders().ListByCustomer(ctx, "customer-1", 3, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page3) != 1 || page3[0].ID != "order-0" {
		t.Fatalf("expected single oldest order, got %+v", page3)
	}

	empty, err := store.Orders().ListByCustomer(ctx, "customer-1", 10, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %+v", empty)
	}
}
