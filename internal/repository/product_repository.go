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

const productColumns = `id, product_name, base_price, price, stock, rating, status, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.BasePrice,
		&p.Price,
		&p.Stock,
		&p.Rating,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// GetAll retrieves products ordered by ID with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := collect(rows, scanProduct)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan product rows")
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return r.get(ctx, r.pool, id, false)
}

// GetByIDTx reads a product inside tx without locking it.
func (r *productRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Product, error) {
	return r.get(ctx, tx, id, false)
}

// GetForUpdate reads a product inside tx and locks its row until tx ends.
func (r *productRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Product, error) {
	return r.get(ctx, tx, id, true)
}

func (r *productRepository) get(ctx context.Context, q querier, id int64, lock bool) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if lock {
		// NO KEY UPDATE leaves the KEY SHARE locks of referencing inserts compatible.
		query += ` FOR NO KEY UPDATE`
	}

	p, err := scanProduct(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// UpdateEffectivePrice overwrites the derived price column.
func (r *productRepository) UpdateEffectivePrice(ctx context.Context, tx pgx.Tx, id int64, price decimal.Decimal) error {
	query := `UPDATE products SET price = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, price)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update effective price")
		return fmt.Errorf("failed to update effective price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", model.ErrProductNotFound, id)
	}

	r.logger.Debug().
		Int64("product_id", id).
		Str("price", price.StringFixed(2)).
		Msg("effective price updated")

	return nil
}
