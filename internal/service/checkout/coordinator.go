package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/shopcore/internal/metrics"
)

// Line — входная позиция запроса оформления. Цена позиции не принимается от
// клиента: она фиксируется из каталога в момент декремента стока.
type Line struct {
	ProductID string
	Quantity  int32
}

// Coordinator проводит оформление заказа как одну атомарную транзакцию:
// проверка клиента, условные декременты стока по каждой позиции и запись
// заказа фиксируются целиком либо не фиксируются вовсе.
type Coordinator struct {
	store    domain.CheckoutStore
	logger   *log.Entry
	metrics  *metrics.CheckoutMetrics
	producer *kafka.Producer // опциональный Kafka producer для событий заказов
}

// NewCoordinator создаёт рабочий экземпляр координатора.
func NewCoordinator(store domain.CheckoutStore, logger *log.Entry) *Coordinator {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Coordinator{
		store:   store,
		logger:  logger,
		metrics: metrics.NewCheckoutMetrics(),
	}
}

// NewCoordinatorWithKafka дополнительно публикует событие о каждом
// зафиксированном заказе в Kafka.
func NewCoordinatorWithKafka(store domain.CheckoutStore, producer *kafka.Producer, logger *log.Entry) *Coordinator {
	coordinator := NewCoordinator(store, logger)
	coordinator.producer = producer
	return coordinator
}

// NewCoordinatorWithoutMetrics создаёт координатор без метрик (для тестов).
func NewCoordinatorWithoutMetrics(store domain.CheckoutStore, logger *log.Entry) *Coordinator {
	coordinator := NewCoordinator(store, logger)
	coordinator.metrics = nil
	return coordinator
}

// PlaceOrder выполняет полный цикл оформления. Ошибки валидации возвращаются
// до открытия транзакции; отказы по стоку собираются по всем позициям и
// возвращаются единым *domain.OrderRejectedError, при этом ни один декремент
// не фиксируется. Инфраструктурные сбои оборачиваются в
// domain.ErrTransactionAborted и не повторяются автоматически.
func (c *Coordinator) PlaceOrder(ctx context.Context, customerID string, lines []Line) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordPlaceDuration(time.Since(start))
		}
	}()

	if err := validateInput(customerID, lines); err != nil {
		if c.metrics != nil {
			c.metrics.RecordOrderRejected(metrics.RejectReasonValidation)
		}
		return domain.Order{}, err
	}

	tx, err := c.store.Begin(ctx)
	if err != nil {
		return domain.Order{}, c.abort("begin checkout", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	exists, err := tx.CustomerExists(ctx, customerID)
	if err != nil {
		return domain.Order{}, c.abort("check customer", err)
	}
	if !exists {
		if c.metrics != nil {
			c.metrics.RecordOrderRejected(metrics.RejectReasonCustomer)
		}
		c.logger.WithField("customer_id", customerID).Warn("place order for unknown customer")
		return domain.Order{}, domain.ErrCustomerNotFound
	}

	// Декременты выполняются в порядке возрастания productID, чтобы
	// конкурентные заказы с пересекающимися товарами не взаимоблокировались.
	// В отчёте об отказах позиции идентифицируются исходным индексом.
	sequence := make([]int, len(lines))
	for i := range sequence {
		sequence[i] = i
	}
	sort.SliceStable(sequence, func(a, b int) bool {
		return lines[sequence[a]].ProductID < lines[sequence[b]].ProductID
	})

	prices := make([]float64, len(lines))
	var issues []domain.StockIssue
	for _, idx := range sequence {
		line := lines[idx]
		product, err := tx.DecrementStock(ctx, line.ProductID, line.Quantity)
		if err == nil {
			prices[idx] = product.Price
			continue
		}

		var insufficient *domain.InsufficientStockError
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			issues = append(issues, domain.StockIssue{
				Line:      idx,
				ProductID: line.ProductID,
				Kind:      domain.StockIssueNotFound,
			})
		case errors.As(err, &insufficient):
			issues = append(issues, domain.StockIssue{
				Line:        idx,
				ProductID:   line.ProductID,
				ProductName: insufficient.Name,
				Kind:        domain.StockIssueInsufficient,
				Available:   insufficient.Available,
			})
		default:
			return domain.Order{}, c.abort("decrement stock", err)
		}
		if c.metrics != nil {
			c.metrics.RecordStockConflict()
		}
	}

	if len(issues) > 0 {
		sort.Slice(issues, func(a, b int) bool { return issues[a].Line < issues[b].Line })
		if c.metrics != nil {
			c.metrics.RecordOrderRejected(metrics.RejectReasonStock)
		}
		c.logger.WithFields(log.Fields{
			"customer_id": customerID,
			"issues":      len(issues),
		}).Warn("order rejected due to inventory issues")
		return domain.Order{}, &domain.OrderRejectedError{Issues: issues}
	}

	orderLines := make([]domain.OrderLine, len(lines))
	for i, line := range lines {
		orderLines[i] = domain.OrderLine{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: prices[i],
		}
	}

	placed := domain.Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Lines:      orderLines,
		OrderDate:  time.Now().UTC(),
		Status:     domain.OrderStatusPending,
	}
	placed.TotalAmount = placed.LinesTotal()

	if err := tx.InsertOrder(ctx, placed); err != nil {
		return domain.Order{}, c.abort("insert order", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, c.abort("commit checkout", err)
	}

	if c.metrics != nil {
		c.metrics.RecordOrderPlaced()
	}
	c.logger.WithFields(log.Fields{
		"order_id":     placed.ID,
		"customer_id":  placed.CustomerID,
		"total_amount": placed.TotalAmount,
		"lines":        len(placed.Lines),
	}).Info("order placed")

	c.publishOrderPlaced(placed)

	return placed, nil
}

func validateInput(customerID string, lines []Line) error {
	if customerID == "" {
		return domain.ErrCustomerRequired
	}
	if len(lines) == 0 {
		return domain.ErrLinesRequired
	}
	for i, line := range lines {
		if line.ProductID == "" {
			return &domain.InvalidLineItemError{Line: i, Reason: "product_id is required"}
		}
		if line.Quantity < 1 {
			return &domain.InvalidLineItemError{Line: i, Reason: "quantity must be at least 1"}
		}
	}
	return nil
}

// abort оборачивает инфраструктурный сбой в domain.ErrTransactionAborted.
// Отложенный Rollback гарантирует, что частичные декременты не будут видны.
func (c *Coordinator) abort(stage string, err error) error {
	if c.metrics != nil {
		c.metrics.RecordOrderRejected(metrics.RejectReasonTransaction)
	}
	c.logger.WithError(err).WithField("stage", stage).Error("checkout transaction aborted")
	return fmt.Errorf("%w: %s: %v", domain.ErrTransactionAborted, stage, err)
}

// publishOrderPlaced публикует событие о заказе в Kafka (если producer настроен).
// Публикация выполняется после фиксации и не влияет на результат оформления.
func (c *Coordinator) publishOrderPlaced(order domain.Order) {
	if c.producer == nil {
		return
	}
	event := kafka.NewOrderPlacedEvent(order)
	if err := c.producer.PublishOrderEvent(event); err != nil {
		c.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order event to kafka")
	}
}
