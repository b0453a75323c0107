package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// paymentRepository implements the PaymentRepository interface using PostgreSQL.
type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

// HasPaid reports whether the order already has a settled payment.
func (r *paymentRepository) HasPaid(ctx context.Context, tx pgx.Tx, orderID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE order_id = $1 AND status = 'paid')`

	var exists bool
	if err := tx.QueryRow(ctx, query, orderID).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to check payments")
		return false, fmt.Errorf("failed to check payments: %w", err)
	}

	return exists, nil
}

// Create inserts a payment and fills in its generated fields.
func (r *paymentRepository) Create(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	query := `
		INSERT INTO payments (order_id, payment_method_id, transaction_id, amount, status, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		payment.OrderID,
		payment.PaymentMethodID,
		payment.TransactionID,
		payment.Amount,
		payment.Status,
		payment.PaidAt,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("order_id", payment.OrderID).
			Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}

	r.logger.Debug().
		Int64("payment_id", payment.ID).
		Int64("order_id", payment.OrderID).
		Msg("payment created successfully")

	return nil
}

// DefaultMethod returns the active method with the given key, falling back
// to the active method with the lowest ID.
func (r *paymentRepository) DefaultMethod(ctx context.Context, tx pgx.Tx, key string) (*model.PaymentMethod, error) {
	query := `
		SELECT id, name, method_key, active
		FROM payment_methods
		WHERE active
		ORDER BY (method_key = $1) DESC, id
		LIMIT 1
	`

	var m model.PaymentMethod
	err := tx.QueryRow(ctx, query, key).Scan(&m.ID, &m.Name, &m.MethodKey, &m.Active)
	if err != nil {
		if isNoRows(err) {
			r.logger.Warn().Str("method_key", key).Msg("no active payment method")
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query payment method")
		return nil, fmt.Errorf("failed to query payment method: %w", err)
	}

	return &m, nil
}

// ListByOrder returns an order's payments ordered by ID.
func (r *paymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.Payment, error) {
	query := `
		SELECT id, order_id, payment_method_id, transaction_id, amount, status, paid_at, created_at, updated_at
		FROM payments
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to query payments")
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}

	payments, err := collect(rows, func(row pgx.Row) (model.Payment, error) {
		var p model.Payment
		err := row.Scan(
			&p.ID,
			&p.OrderID,
			&p.PaymentMethodID,
			&p.TransactionID,
			&p.Amount,
			&p.Status,
			&p.PaidAt,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		return p, err
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan payment rows")
		return nil, fmt.Errorf("failed to scan payments: %w", err)
	}

	return payments, nil
}
