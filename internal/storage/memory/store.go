package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// Store — общее in-memory состояние трёх коллекций. Используется для
// локальной разработки и тестов; репозитории и транзакция оформления
// работают поверх одного mutex, поэтому чтения никогда не видят
// незафиксированных декрементов.
type Store struct {
	mu        sync.RWMutex
	customers map[string]domain.Customer
	products  map[string]domain.Product
	orders    map[string]domain.Order
}

// NewStore возвращает пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		customers: make(map[string]domain.Customer),
		products:  make(map[string]domain.Product),
		orders:    make(map[string]domain.Order),
	}
}

// Customers возвращает справочник клиентов поверх общего состояния.
func (s *Store) Customers() domain.CustomerRepository {
	return &customerRepository{store: s}
}

// Products возвращает каталог товаров поверх общего состояния.
func (s *Store) Products() domain.ProductRepository {
	return &productRepository{store: s}
}

// Orders возвращает реестр заказов поверх общего состояния.
func (s *Store) Orders() domain.OrderRepository {
	return &orderRepository{store: s}
}

// Checkout возвращает транзакционное хранилище оформления заказов.
func (s *Store) Checkout() domain.CheckoutStore {
	return &checkoutStore{store: s}
}

// Analytics возвращает агрегирующие запросы поверх общего состояния.
func (s *Store) Analytics() domain.AnalyticsRepository {
	return &analyticsRepository{store: s}
}

// copyOrder отдаёт независимую копию заказа, чтобы вызывающая сторона
// не могла мутировать состояние хранилища через срез позиций.
func copyOrder(order domain.Order) domain.Order {
	lines := make([]domain.OrderLine, len(order.Lines))
	copy(lines, order.Lines)
	order.Lines = lines
	return order
}
