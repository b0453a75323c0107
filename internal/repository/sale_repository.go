package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const saleColumns = `id, product_id, sale_price, original_price, discount_pct, start_date, end_date, status, created_at, updated_at`

// saleRepository implements the SaleRepository interface using PostgreSQL.
type saleRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSaleRepository creates a new PostgreSQL-backed sale override repository.
func NewSaleRepository(pool *pgxpool.Pool, logger zerolog.Logger) SaleRepository {
	return &saleRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "sale").Logger(),
	}
}

func scanSale(row pgx.Row) (model.ProductSale, error) {
	var s model.ProductSale
	err := row.Scan(
		&s.ID,
		&s.ProductID,
		&s.SalePrice,
		&s.OriginalPrice,
		&s.DiscountPct,
		&s.StartDate,
		&s.EndDate,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// BeginTx starts a new database transaction.
func (r *saleRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

// Create inserts a sale override and fills in its generated fields.
func (r *saleRepository) Create(ctx context.Context, tx pgx.Tx, sale *model.ProductSale) error {
	query := `
		INSERT INTO product_sales (product_id, sale_price, original_price, discount_pct, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		sale.ProductID,
		sale.SalePrice,
		sale.OriginalPrice,
		sale.DiscountPct,
		sale.StartDate,
		sale.EndDate,
		sale.Status,
	).Scan(&sale.ID, &sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("product_id", sale.ProductID).
			Msg("failed to create sale")
		return fmt.Errorf("failed to create sale: %w", err)
	}

	r.logger.Debug().
		Int64("sale_id", sale.ID).
		Int64("product_id", sale.ProductID).
		Msg("sale created successfully")

	return nil
}

// Update persists every mutable column of sale.
func (r *saleRepository) Update(ctx context.Context, tx pgx.Tx, sale *model.ProductSale) error {
	query := `
		UPDATE product_sales
		SET product_id = $2, sale_price = $3, original_price = $4, discount_pct = $5,
			start_date = $6, end_date = $7, status = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := tx.QueryRow(ctx, query,
		sale.ID,
		sale.ProductID,
		sale.SalePrice,
		sale.OriginalPrice,
		sale.DiscountPct,
		sale.StartDate,
		sale.EndDate,
		sale.Status,
	).Scan(&sale.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("%w: sale %d", model.ErrSaleNotFound, sale.ID)
		}
		r.logger.Error().Err(err).Int64("sale_id", sale.ID).Msg("failed to update sale")
		return fmt.Errorf("failed to update sale: %w", err)
	}

	return nil
}

// Delete removes a sale override.
func (r *saleRepository) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM product_sales WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("sale_id", id).Msg("failed to delete sale")
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: sale %d", model.ErrSaleNotFound, id)
	}

	return nil
}

// GetByID retrieves a single sale override by its ID.
func (r *saleRepository) GetByID(ctx context.Context, id int64) (*model.ProductSale, error) {
	return r.get(ctx, r.pool, id, false)
}

// GetForUpdate reads a sale override inside tx and locks its row.
func (r *saleRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.ProductSale, error) {
	return r.get(ctx, tx, id, true)
}

func (r *saleRepository) get(ctx context.Context, q querier, id int64, lock bool) (*model.ProductSale, error) {
	query := `SELECT ` + saleColumns + ` FROM product_sales WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	s, err := scanSale(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Int64("sale_id", id).Msg("sale not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("sale_id", id).Msg("failed to query sale")
		return nil, fmt.Errorf("failed to query sale: %w", err)
	}

	return &s, nil
}

// List returns every sale override ordered by ID.
func (r *saleRepository) List(ctx context.Context) ([]model.ProductSale, error) {
	return r.list(ctx, r.pool, `SELECT `+saleColumns+` FROM product_sales ORDER BY id`)
}

// ListActive returns sales that are active and whose window covers now.
func (r *saleRepository) ListActive(ctx context.Context, now time.Time) ([]model.ProductSale, error) {
	query := `SELECT ` + saleColumns + `
		FROM product_sales
		WHERE status = 'active' AND start_date <= $1 AND end_date > $1
		ORDER BY product_id, sale_price, id`

	return r.list(ctx, r.pool, query, now)
}

// ListByProduct returns all sale overrides of a product ordered by ID.
func (r *saleRepository) ListByProduct(ctx context.Context, productID int64) ([]model.ProductSale, error) {
	return r.listByProduct(ctx, r.pool, productID)
}

// ListByProductTx is ListByProduct inside tx.
func (r *saleRepository) ListByProductTx(ctx context.Context, tx pgx.Tx, productID int64) ([]model.ProductSale, error) {
	return r.listByProduct(ctx, tx, productID)
}

func (r *saleRepository) listByProduct(ctx context.Context, q querier, productID int64) ([]model.ProductSale, error) {
	query := `SELECT ` + saleColumns + ` FROM product_sales WHERE product_id = $1 ORDER BY id`
	return r.list(ctx, q, query, productID)
}

func (r *saleRepository) list(ctx context.Context, q querier, query string, args ...any) ([]model.ProductSale, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query sales")
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}

	sales, err := collect(rows, scanSale)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan sale rows")
		return nil, fmt.Errorf("failed to scan sales: %w", err)
	}

	return sales, nil
}

// TransitionStatuses activates scheduled sales whose window has opened and
// expires sales whose window has closed.
func (r *saleRepository) TransitionStatuses(ctx context.Context, tx pgx.Tx, now time.Time) ([]int64, error) {
	statements := []struct {
		name  string
		query string
	}{
		{
			name: "expire",
			query: `
				UPDATE product_sales SET status = 'expired', updated_at = NOW()
				WHERE status IN ('scheduled', 'active') AND end_date <= $1
				RETURNING product_id`,
		},
		{
			name: "activate",
			query: `
				UPDATE product_sales SET status = 'active', updated_at = NOW()
				WHERE status = 'scheduled' AND start_date <= $1 AND end_date > $1
				RETURNING product_id`,
		},
	}

	var productIDs []int64
	for _, stmt := range statements {
		rows, err := tx.Query(ctx, stmt.query, now)
		if err != nil {
			r.logger.Error().Err(err).Str("transition", stmt.name).Msg("failed to transition sales")
			return nil, fmt.Errorf("failed to %s sales: %w", stmt.name, err)
		}

		ids, err := collect(rows, scanID)
		if err != nil {
			r.logger.Error().Err(err).Str("transition", stmt.name).Msg("failed to scan transitioned sales")
			return nil, fmt.Errorf("failed to %s sales: %w", stmt.name, err)
		}

		productIDs = append(productIDs, ids...)
	}

	return productIDs, nil
}

// ListRepricingCandidates returns IDs of products that have an active sale
// or whose effective price differs from the base price.
func (r *saleRepository) ListRepricingCandidates(ctx context.Context, tx pgx.Tx) ([]int64, error) {
	query := `
		SELECT DISTINCT product_id FROM product_sales WHERE status = 'active'
		UNION
		SELECT id FROM products WHERE price <> base_price
		ORDER BY 1
	`

	rows, err := tx.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query repricing candidates")
		return nil, fmt.Errorf("failed to query repricing candidates: %w", err)
	}

	ids, err := collect(rows, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to scan repricing candidates: %w", err)
	}

	return ids, nil
}

func scanID(row pgx.Row) (int64, error) {
	var id int64
	err := row.Scan(&id)
	return id, err
}
