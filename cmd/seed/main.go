package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/storage/postgres"
)

const defaultTimeout = 30 * time.Second

// Демо-набор для локальной разработки и нагрузочных прогонов.
var customers = []domain.Customer{
	{ID: "customer-alice", Name: "Alice Schmidt", Email: "alice@example.com", Age: 34, Location: "Berlin", Gender: "female"},
	{ID: "customer-bob", Name: "Bob Keller", Email: "bob@example.com", Age: 41, Location: "Hamburg", Gender: "male"},
	{ID: "customer-carol", Name: "Carol Weiss", Email: "carol@example.com", Age: 28, Location: "Munich", Gender: "female"},
}

var products = []domain.Product{
	{ID: "product-keyboard", Name: "Mechanical Keyboard", Category: "Peripherals", Price: 89.99, Stock: 120},
	{ID: "product-mouse", Name: "Wireless Mouse", Category: "Peripherals", Price: 29.50, Stock: 200},
	{ID: "product-monitor", Name: "27in Monitor", Category: "Displays", Price: 249.00, Stock: 40},
	{ID: "product-dock", Name: "USB-C Dock", Category: "Accessories", Price: 119.90, Stock: 60},
	{ID: "product-cable", Name: "HDMI Cable", Category: "", Price: 7.49, Stock: 500},
}

func main() {
	var dsn string
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: SHOPCORE_POSTGRES_DSN)")
	flag.Parse()

	_ = godotenv.Load()

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("SHOPCORE_POSTGRES_DSN"))
	}
	if dsn == "" {
		fail("SHOPCORE_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	if err := store.MigrateUp(ctx, 0); err != nil {
		fail("apply migrations: %v", err)
	}

	customerRepo := postgres.NewCustomerRepository(store)
	var created, skipped int
	for _, customer := range customers {
		switch err := customerRepo.Create(ctx, customer); {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrAlreadyExists):
			skipped++
		default:
			fail("seed customer %s: %v", customer.ID, err)
		}
	}

	productRepo := postgres.NewProductRepository(store)
	for _, product := range products {
		switch err := productRepo.Create(ctx, product); {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrAlreadyExists):
			skipped++
		default:
			fail("seed product %s: %v", product.ID, err)
		}
	}

	fmt.Printf("seed ok: created=%d skipped=%d\n", created, skipped)
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
