package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalogue product.
// Price is the effective price; BasePrice is the list price before sales.
type Product struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"product_name" db:"product_name"`
	BasePrice decimal.Decimal `json:"base_price" db:"base_price"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	Rating    decimal.Decimal `json:"rating" db:"rating"`
	Active    bool            `json:"status" db:"status"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
