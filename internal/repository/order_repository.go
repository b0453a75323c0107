package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, customer_name, customer_phone, customer_address, total_amount, status, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.CustomerName,
		&o.CustomerPhone,
		&o.CustomerAddress,
		&o.TotalAmount,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

func scanOrderDetail(row pgx.Row) (model.OrderDetail, error) {
	var d model.OrderDetail
	err := row.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.Price)
	return d, err
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

// CreateOrder inserts an order header and fills in its generated fields.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (user_id, customer_name, customer_phone, customer_address, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		order.UserID,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerAddress,
		order.TotalAmount,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Int64("order_id", order.ID).
		Msg("order created successfully")

	return nil
}

// CreateOrderDetail inserts a single order line and fills in its ID.
func (r *orderRepository) CreateOrderDetail(ctx context.Context, tx pgx.Tx, detail *model.OrderDetail) error {
	query := `
		INSERT INTO order_details (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := tx.QueryRow(ctx, query, detail.OrderID, detail.ProductID, detail.Quantity, detail.Price).Scan(&detail.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("order_id", detail.OrderID).
			Int64("product_id", detail.ProductID).
			Msg("failed to create order detail")
		return fmt.Errorf("failed to create order detail: %w", err)
	}

	return nil
}

// UpdateTotal sets the order's total amount.
func (r *orderRepository) UpdateTotal(ctx context.Context, tx pgx.Tx, orderID int64, total decimal.Decimal) error {
	query := `UPDATE orders SET total_amount = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, orderID, total)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to update order total")
		return fmt.Errorf("failed to update order total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %d", model.ErrOrderNotFound, orderID)
	}

	return nil
}

// GetByID retrieves an order by its ID along with its lines.
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Int64("order_id", id).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	detailsQuery := `
		SELECT id, order_id, product_id, quantity, price
		FROM order_details
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, detailsQuery, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("order_id", id).
			Msg("failed to query order details")
		return nil, fmt.Errorf("failed to query order details: %w", err)
	}

	order.Details, err = collect(rows, scanOrderDetail)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to scan order detail rows")
		return nil, fmt.Errorf("failed to scan order details: %w", err)
	}

	return &order, nil
}

// GetForUpdate reads an order header inside tx and locks its row.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error) {
	order, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	return &order, nil
}

// UpdateOrder persists header fields and status.
func (r *orderRepository) UpdateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET user_id = $2, customer_name = $3, customer_phone = $4, customer_address = $5,
			status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := tx.QueryRow(ctx, query,
		order.ID,
		order.UserID,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerAddress,
		order.Status,
	).Scan(&order.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("%w: order %d", model.ErrOrderNotFound, order.ID)
		}
		r.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}

	return nil
}

// List returns order headers newest first.
func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	return r.list(ctx, query, limit, offset)
}

// ListByUser returns the user's order headers newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $3
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	return r.list(ctx, query, limit, offset, userID)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders, err := collect(rows, scanOrder)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan order rows")
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}

	return orders, nil
}

// Delete removes an order with its lines and payments.
func (r *orderRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to delete order")
		return false, fmt.Errorf("failed to delete order: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
