package domain

import "time"

// Product — позиция каталога. Поле Stock изменяется только условным
// декрементом внутри транзакции оформления заказа.
type Product struct {
	ID        string
	Name      string
	Category  string
	Price     float64
	Stock     int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты позиции каталога.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.Price < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}
