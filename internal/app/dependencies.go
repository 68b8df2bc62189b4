package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/health"
	"github.com/vladislavdragonenkov/shopcore/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/shopcore/internal/service/analytics"
	"github.com/vladislavdragonenkov/shopcore/internal/storage/memory"
	"github.com/vladislavdragonenkov/shopcore/internal/storage/postgres"
)

// Dependencies содержит инфраструктурные зависимости приложения, собранные
// из конфигурации. Close освобождает их в обратном порядке инициализации.
type Dependencies struct {
	Customers domain.CustomerRepository
	Products  domain.ProductRepository
	Orders    domain.OrderRepository
	Checkout  domain.CheckoutStore
	Analytics domain.AnalyticsRepository

	KafkaProducer *kafka.Producer
	Logger        *log.Entry

	closers []func() error
	health  []namedChecker
}

type namedChecker struct {
	name    string
	checker health.Checker
}

// NewDependencies инициализирует хранилище, кэш отчётов и Kafka producer.
// Postgres обязателен только при заданном DSN: без него сервис работает на
// хранилище в памяти. Недоступный Kafka не считается фатальной ошибкой.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	deps := &Dependencies{Logger: logger}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		deps.closers = append(deps.closers, store.Close)

		if err := store.MigrateUp(ctx, 0); err != nil {
			deps.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}

		deps.Customers = postgres.NewCustomerRepository(store)
		deps.Products = postgres.NewProductRepository(store)
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Checkout = postgres.NewCheckoutStore(store)
		deps.Analytics = postgres.NewAnalyticsRepository(store)
		deps.health = append(deps.health, namedChecker{"postgres", health.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(pingCtx)
		})})
		logger.Info("postgres storage initialized")
	} else {
		store := memory.NewStore()
		deps.Customers = store.Customers()
		deps.Products = store.Products()
		deps.Orders = store.Orders()
		deps.Checkout = store.Checkout()
		deps.Analytics = store.Analytics()
		logger.Warn("no postgres dsn configured, using in-memory storage")
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		deps.closers = append(deps.closers, client.Close)
		deps.Analytics = analytics.NewCachedAnalytics(deps.Analytics, client, logger.WithField("component", "analytics-cache"))
		deps.health = append(deps.health, namedChecker{"redis", health.NewSimpleChecker("redis", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx).Err()
		})})
		logger.WithField("addr", cfg.RedisAddr).Info("report cache initialized")
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			deps.KafkaProducer = producer
			deps.closers = append(deps.closers, producer.Close)
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}

	return deps, nil
}

// RegisterHealthCheckers навешивает проверки инициализированных компонентов.
func (d *Dependencies) RegisterHealthCheckers(handler *health.Handler) {
	for _, entry := range d.health {
		handler.RegisterChecker(entry.name, entry.checker)
	}
}

// Close освобождает зависимости в обратном порядке инициализации.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Logger.WithError(err).Warn("failed to close dependency")
		}
	}
	d.closers = nil
}
