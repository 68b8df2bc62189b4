package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// checkoutStore открывает транзакции оформления заказа поверх одного *sql.Tx.
// Условный декремент — одиночный UPDATE с предикатом по остатку: проверка и
// списание атомарны, конкурентные списания одного товара сериализуются
// блокировкой строки.
type checkoutStore struct {
	db *sql.DB
}

// NewCheckoutStore создаёт PostgreSQL-реализацию CheckoutStore.
func NewCheckoutStore(store *Store) domain.CheckoutStore {
	return &checkoutStore{db: store.DB()}
}

func (s *checkoutStore) Begin(ctx context.Context) (domain.CheckoutTx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin checkout tx: %w", err)
	}
	return &checkoutTx{tx: tx}, nil
}

type checkoutTx struct {
	tx *sql.Tx
}

func (t *checkoutTx) CustomerExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check customer exists: %w", err)
	}
	return exists, nil
}

func (t *checkoutTx) DecrementStock(ctx context.Context, productID string, qty int32) (domain.Product, error) {
	var product domain.Product
	err := t.tx.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock - $2,
		    updated_at = NOW()
		WHERE id = $1
		  AND stock >= $2
		RETURNING id, name, category, price, stock
	`, productID, qty).Scan(
		&product.ID, &product.Name, &product.Category, &product.Price, &product.Stock,
	)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("decrement stock: %w", err)
	}

	// UPDATE никого не задел: различаем отсутствие товара и нехватку остатка.
	var (
		name  string
		stock int32
	)
	err = t.tx.QueryRowContext(ctx, `
		SELECT name, stock FROM products WHERE id = $1
	`, productID).Scan(&name, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("inspect product stock: %w", err)
	}

	return domain.Product{}, &domain.InsufficientStockError{
		ProductID: productID,
		Name:      name,
		Available: stock,
	}
}

func (t *checkoutTx) InsertOrder(ctx context.Context, order domain.Order) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, status, total_amount, order_date)
		VALUES ($1, $2, $3, $4, $5)
	`,
		order.ID, order.CustomerID, string(order.Status), order.TotalAmount, order.OrderDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for i, line := range order.Lines {
		if _, err := t.tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, line_no, product_id, quantity, price_at_purchase)
			VALUES ($1, $2, $3, $4, $5)
		`,
			order.ID, i, line.ProductID, line.Quantity, line.PriceAtPurchase,
		); err != nil {
			return fmt.Errorf("insert order line %d: %w", i, err)
		}
	}

	return nil
}

func (t *checkoutTx) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		_ = t.tx.Rollback()
		return err
	}
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit checkout tx: %w", err)
	}
	return nil
}

func (t *checkoutTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback checkout tx: %w", err)
	}
	return nil
}

var _ domain.CheckoutStore = (*checkoutStore)(nil)
var _ domain.CheckoutTx = (*checkoutTx)(nil)
