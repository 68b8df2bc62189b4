package domain

import "context"

// CustomerRepository описывает требования к справочнику клиентов.
type CustomerRepository interface {
	// Get возвращает клиента по идентификатору или ErrCustomerNotFound.
	Get(ctx context.Context, id string) (Customer, error)
	// List возвращает всех клиентов в стабильном порядке.
	List(ctx context.Context) ([]Customer, error)
	// Create сохраняет нового клиента; используется инструментами наполнения данных.
	Create(ctx context.Context, customer Customer) error
}

// ProductRepository описывает требования к каталогу товаров.
type ProductRepository interface {
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(ctx context.Context, id string) (Product, error)
	// List возвращает все товары в стабильном порядке.
	List(ctx context.Context) ([]Product, error)
	// Create сохраняет новый товар; сток изменяется только транзакцией заказа.
	Create(ctx context.Context, product Product) error
}

// OrderRepository описывает требования к реестру заказов.
// Заказы создаются только транзакцией оформления и никогда не удаляются.
type OrderRepository interface {
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// ListByCustomer возвращает страницу заказов клиента,
	// отсортированных по дате создания по убыванию.
	ListByCustomer(ctx context.Context, customerID string, page, limit int) ([]Order, error)
}
