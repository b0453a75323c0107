package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Read methods return (nil, nil) when the row does not exist.

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves products ordered by ID with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDTx reads a product inside tx without locking it.
	GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Product, error)

	// GetForUpdate reads a product inside tx and locks its row until tx ends.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Product, error)

	// UpdateEffectivePrice overwrites the derived price column.
	UpdateEffectivePrice(ctx context.Context, tx pgx.Tx, id int64, price decimal.Decimal) error
}

// SaleRepository defines the interface for sale override data access operations.
type SaleRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	Create(ctx context.Context, tx pgx.Tx, sale *model.ProductSale) error
	Update(ctx context.Context, tx pgx.Tx, sale *model.ProductSale) error
	Delete(ctx context.Context, tx pgx.Tx, id int64) error

	GetByID(ctx context.Context, id int64) (*model.ProductSale, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.ProductSale, error)

	List(ctx context.Context) ([]model.ProductSale, error)

	// ListActive returns sales that are active and whose window covers now.
	ListActive(ctx context.Context, now time.Time) ([]model.ProductSale, error)

	ListByProduct(ctx context.Context, productID int64) ([]model.ProductSale, error)
	ListByProductTx(ctx context.Context, tx pgx.Tx, productID int64) ([]model.ProductSale, error)

	// TransitionStatuses activates scheduled sales whose window has opened and
	// expires sales whose window has closed. It returns the product ID of every
	// transitioned sale, one entry per sale.
	TransitionStatuses(ctx context.Context, tx pgx.Tx, now time.Time) ([]int64, error)

	// ListRepricingCandidates returns IDs of products that have an active sale
	// or whose effective price differs from the base price.
	ListRepricingCandidates(ctx context.Context, tx pgx.Tx) ([]int64, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts an order header and fills in its generated fields.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderDetail inserts a single order line and fills in its ID.
	CreateOrderDetail(ctx context.Context, tx pgx.Tx, detail *model.OrderDetail) error

	UpdateTotal(ctx context.Context, tx pgx.Tx, orderID int64, total decimal.Decimal) error

	// GetByID retrieves an order by its ID along with its lines.
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	// GetForUpdate reads an order header inside tx and locks its row.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error)

	// UpdateOrder persists header fields and status.
	UpdateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// List returns order headers newest first.
	List(ctx context.Context, limit, offset int) ([]model.Order, error)

	// ListByUser returns the user's order headers newest first.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Order, error)

	// Delete removes an order with its lines and payments.
	// It reports whether a row was deleted.
	Delete(ctx context.Context, id int64) (bool, error)
}

// PaymentRepository defines the interface for payment data access operations.
type PaymentRepository interface {
	// HasPaid reports whether the order already has a settled payment.
	HasPaid(ctx context.Context, tx pgx.Tx, orderID int64) (bool, error)

	// Create inserts a payment and fills in its generated fields.
	Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) error

	// DefaultMethod returns the active method with the given key, falling back
	// to the active method with the lowest ID.
	DefaultMethod(ctx context.Context, tx pgx.Tx, key string) (*model.PaymentMethod, error)

	ListByOrder(ctx context.Context, orderID int64) ([]model.Payment, error)
}
