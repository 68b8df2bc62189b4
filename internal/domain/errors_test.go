package domain_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

func TestStockIssueString(t *testing.T) {
	notFound := domain.StockIssue{
		Line:      0,
		ProductID: "p-missing",
		Kind:      domain.StockIssueNotFound,
	}
	if got := notFound.String(); got != "product not found: p-missing" {
		t.Fatalf("unexpected message: %q", got)
	}

	insufficient := domain.StockIssue{
		Line:        1,
		ProductID:   "p-1",
		ProductName: "Lamp",
		Kind:        domain.StockIssueInsufficient,
		Available:   2,
	}
	if got := insufficient.String(); got != "Lamp (insufficient stock: 2 available)" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestOrderRejectedError(t *testing.T) {
	rejected := &domain.OrderRejectedError{
		Issues: []domain.StockIssue{
			{Line: 0, ProductID: "p-1", ProductName: "Lamp", Kind: domain.StockIssueInsufficient, Available: 1},
			{Line: 1, ProductID: "p-2", Kind: domain.StockIssueNotFound},
		},
	}

	msg := rejected.Error()
	if !strings.Contains(msg, "Lamp (insufficient stock: 1 available)") {
		t.Fatalf("message misses insufficiency detail: %q", msg)
	}
	if !strings.Contains(msg, "product not found: p-2") {
		t.Fatalf("message misses not-found detail: %q", msg)
	}

	wrapped := fmt.Errorf("place order: %w", rejected)
	got, ok := domain.IsRejected(wrapped)
	if !ok {
		t.Fatal("IsRejected must unwrap the report")
	}
	if len(got.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(got.Issues))
	}
}

func TestInvalidLineItemError(t *testing.T) {
	err := &domain.InvalidLineItemError{Line: 3, Reason: "quantity must be at least 1"}
	if got := err.Error(); got != "invalid line item 3: quantity must be at least 1" {
		t.Fatalf("unexpected message: %q", got)
	}

	var target *domain.InvalidLineItemError
	if !errors.As(fmt.Errorf("validate: %w", err), &target) {
		t.Fatal("errors.As must find InvalidLineItemError")
	}
	if target.Line != 3 {
		t.Fatalf("expected line 3, got %d", target.Line)
	}
}

func TestInsufficientStockError(t *testing.T) {
	err := &domain.InsufficientStockError{ProductID: "p-1", Name: "Lamp", Available: 4}
	if got := err.Error(); got != "insufficient stock for p-1: 4 available" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestIsRejected_NotRejected(t *testing.T) {
	if _, ok := domain.IsRejected(domain.ErrCustomerNotFound); ok {
		t.Fatal("plain sentinel must not be reported as rejection")
	}
}
