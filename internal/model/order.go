package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed out of s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo reports whether an order in status s may move to next.
// Staying in the same status is always allowed and has no effect.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return !s.Terminal()
}

// Order represents a customer order.
type Order struct {
	ID              int64           `json:"id" db:"id"`
	UserID          *int64          `json:"user_id" db:"user_id"`
	CustomerName    string          `json:"customer_name" db:"customer_name"`
	CustomerPhone   string          `json:"customer_phone" db:"customer_phone"`
	CustomerAddress string          `json:"customer_address" db:"customer_address"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status          OrderStatus     `json:"status" db:"status"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	Details         []OrderDetail   `json:"order_details,omitempty"`
	Payments        []Payment       `json:"payments,omitempty"`
}

// OrderDetail is an immutable order line. Price is the product's effective
// price captured when the order was created.
type OrderDetail struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"order_id" db:"order_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// Subtotal returns price × quantity.
func (d OrderDetail) Subtotal() decimal.Decimal {
	return d.Price.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// Limits imposed by order_details.quantity (INTEGER) and
// orders.total_amount (NUMERIC(14,2)).
const MaxLineQuantity = math.MaxInt32

var MaxOrderTotal = decimal.RequireFromString("999999999999.99")

// CreateOrderRequest represents the request payload for creating an order.
type CreateOrderRequest struct {
	UserID          *int64               `json:"user_id,omitempty"`
	CustomerName    string               `json:"customer_name"`
	CustomerPhone   string               `json:"customer_phone"`
	CustomerAddress string               `json:"customer_address"`
	OrderDetails    []OrderDetailRequest `json:"order_details"`
}

// OrderDetailRequest represents a single item in an order request.
type OrderDetailRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// UpdateOrderRequest represents the mutable header fields and status of an order.
type UpdateOrderRequest struct {
	UserID          *int64       `json:"user_id,omitempty"`
	CustomerName    *string      `json:"customer_name,omitempty"`
	CustomerPhone   *string      `json:"customer_phone,omitempty"`
	CustomerAddress *string      `json:"customer_address,omitempty"`
	Status          *OrderStatus `json:"status,omitempty"`
}
