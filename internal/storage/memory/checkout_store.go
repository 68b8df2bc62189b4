package memory

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// checkoutStore сериализует транзакции оформления через write-lock хранилища.
// Блокировка удерживается от Begin до Commit/Rollback: конкурентные
// транзакции линеаризуются, а чтения не видят промежуточного состояния.
type checkoutStore struct {
	store *Store
}

func (s *checkoutStore) Begin(ctx context.Context) (domain.CheckoutTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("begin checkout tx: %w", err)
	}

	s.store.mu.Lock()
	return &checkoutTx{
		store:      s.store,
		decrements: make(map[string]int32),
	}, nil
}

// checkoutTx накапливает изменения и применяет их к картам только в Commit.
type checkoutTx struct {
	store *Store
	// decrements — отложенные списания стока по товарам.
	decrements map[string]int32
	inserted   []domain.Order
	finished   bool
}

func (t *checkoutTx) CustomerExists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, ok := t.store.customers[id]
	return ok, nil
}

func (t *checkoutTx) DecrementStock(ctx context.Context, productID string, qty int32) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}

	product, ok := t.store.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}

	// Остаток с учётом уже отложенных списаний этой же транзакции.
	available := product.Stock - t.decrements[productID]
	if available < qty {
		return domain.Product{}, &domain.InsufficientStockError{
			ProductID: productID,
			Name:      product.Name,
			Available: available,
		}
	}

	t.decrements[productID] += qty
	product.Stock = available - qty
	return product, nil
}

func (t *checkoutTx) InsertOrder(ctx context.Context, order domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, exists := t.store.orders[order.ID]; exists {
		return domain.ErrAlreadyExists
	}

	t.inserted = append(t.inserted, copyOrder(order))
	return nil
}

func (t *checkoutTx) Commit(ctx context.Context) error {
	if t.finished {
		return fmt.Errorf("checkout tx already finished")
	}
	if err := ctx.Err(); err != nil {
		// Отмена на границе фиксации откатывает транзакцию целиком.
		t.release()
		return err
	}

	for productID, qty := range t.decrements {
		product := t.store.products[productID]
		product.Stock -= qty
		t.store.products[productID] = product
	}
	for _, order := range t.inserted {
		t.store.orders[order.ID] = order
	}

	t.release()
	return nil
}

func (t *checkoutTx) Rollback() error {
	if t.finished {
		return nil
	}
	t.release()
	return nil
}

func (t *checkoutTx) release() {
	t.finished = true
	t.decrements = nil
	t.inserted = nil
	t.store.mu.Unlock()
}

var _ domain.CheckoutStore = (*checkoutStore)(nil)
var _ domain.CheckoutTx = (*checkoutTx)(nil)
