package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PaymentMethod is a way of paying for an order, e.g. cash on delivery.
type PaymentMethod struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	MethodKey string `json:"method_key" db:"method_key"`
	Active    bool   `json:"active" db:"active"`
}

// Payment records money received (or expected) for an order.
type Payment struct {
	ID              int64           `json:"id" db:"id"`
	OrderID         int64           `json:"order_id" db:"order_id"`
	PaymentMethodID int64           `json:"payment_method_id" db:"payment_method_id"`
	TransactionID   *string         `json:"transaction_id" db:"transaction_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Status          PaymentStatus   `json:"status" db:"status"`
	PaidAt          *time.Time      `json:"paid_at" db:"paid_at"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}
