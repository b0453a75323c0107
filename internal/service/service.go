package service

import (
	"context"
	"errors"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ProductService defines read operations for the product catalogue.
type ProductService interface {
	// GetAll retrieves products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder persists an order, its lines and its total atomically,
	// snapshotting each product's effective price.
	CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.Order, error)

	// UpdateOrder changes header fields and status. Entering completed records
	// a single paid payment for the order total.
	UpdateOrder(ctx context.Context, id int64, req *model.UpdateOrderRequest) (*model.Order, error)

	// GetByID retrieves an order with its lines and payments.
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	List(ctx context.Context, limit, offset int) ([]model.Order, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Order, error)
	Delete(ctx context.Context, id int64) error
}

// SaleService defines operations on the sale override ledger. Every write
// re-projects the affected product prices in the same transaction.
type SaleService interface {
	Create(ctx context.Context, req *model.CreateSaleRequest) (*model.ProductSale, error)
	Update(ctx context.Context, id int64, req *model.UpdateSaleRequest) (*model.ProductSale, error)
	Delete(ctx context.Context, id int64) error

	GetByID(ctx context.Context, id int64) (*model.ProductSale, error)
	List(ctx context.Context) ([]model.ProductSale, error)
	ListActive(ctx context.Context) ([]model.ProductSale, error)
	ListByProduct(ctx context.Context, productID int64) ([]model.ProductSale, error)

	// Sweep moves sale statuses along with the clock and re-projects every
	// product whose price may have drifted.
	Sweep(ctx context.Context) (*model.SweepResult, error)
}

// normalizePage clamps pagination parameters to sane bounds.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// rollback aborts tx, ignoring transactions that already ended.
func rollback(ctx context.Context, tx pgx.Tx, logger zerolog.Logger) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.Error().Err(err).Msg("failed to rollback transaction")
	}
}
