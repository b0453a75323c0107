package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places stored for prices.
const MoneyScale = 2

// SaleStatus is the lifecycle tag of a sale override.
type SaleStatus string

const (
	SaleStatusScheduled SaleStatus = "scheduled"
	SaleStatusActive    SaleStatus = "active"
	SaleStatusExpired   SaleStatus = "expired"
)

// Valid reports whether s is a known sale status.
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusScheduled, SaleStatusActive, SaleStatusExpired:
		return true
	}
	return false
}

// ProductSale is a time-bounded promotional price for one product.
// The window is half-open: [StartDate, EndDate).
type ProductSale struct {
	ID            int64               `json:"id" db:"id"`
	ProductID     int64               `json:"product_id" db:"product_id"`
	SalePrice     decimal.Decimal     `json:"sale_price" db:"sale_price"`
	OriginalPrice decimal.NullDecimal `json:"original_price" db:"original_price"`
	DiscountPct   *int                `json:"discount_pct" db:"discount_pct"`
	StartDate     time.Time           `json:"start_date" db:"start_date"`
	EndDate       time.Time           `json:"end_date" db:"end_date"`
	Status        SaleStatus          `json:"status" db:"status"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

// Covers reports whether the sale window contains t.
func (s *ProductSale) Covers(t time.Time) bool {
	return !t.Before(s.StartDate) && t.Before(s.EndDate)
}

// CreateSaleRequest represents the request payload for creating a sale override.
// SalePrice is required. When Status is nil it is derived from the window at
// write time.
type CreateSaleRequest struct {
	ProductID     int64               `json:"product_id"`
	SalePrice     decimal.NullDecimal `json:"sale_price"`
	OriginalPrice decimal.NullDecimal `json:"original_price"`
	DiscountPct   *int                `json:"discount_pct,omitempty"`
	StartDate     time.Time           `json:"start_date"`
	EndDate       time.Time           `json:"end_date"`
	Status        *SaleStatus         `json:"status,omitempty"`
}

// UpdateSaleRequest represents a partial update of a sale override.
type UpdateSaleRequest struct {
	ProductID     *int64           `json:"product_id,omitempty"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	DiscountPct   *int             `json:"discount_pct,omitempty"`
	StartDate     *time.Time       `json:"start_date,omitempty"`
	EndDate       *time.Time       `json:"end_date,omitempty"`
	Status        *SaleStatus      `json:"status,omitempty"`
}

// SweepResult summarises one periodic sale sweep.
type SweepResult struct {
	Transitioned int `json:"transitioned"`
	Repriced     int `json:"repriced"`
}
