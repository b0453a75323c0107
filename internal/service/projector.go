package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// PriceProjector keeps products.price equal to the effective price derived
// from the product's base price and its sale overrides. It is the only
// writer of that column.
type PriceProjector struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	logger      zerolog.Logger
}

// NewPriceProjector creates a new price projector.
func NewPriceProjector(productRepo repository.ProductRepository, saleRepo repository.SaleRepository, logger zerolog.Logger) *PriceProjector {
	return &PriceProjector{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		logger:      logger.With().Str("component", "projector").Logger(),
	}
}

// Project recomputes the effective price of a product inside tx and writes
// it when it changed. The product row stays locked until tx ends, so
// concurrent projections of the same product serialise.
func (p *PriceProjector) Project(ctx context.Context, tx pgx.Tx, productID int64, now time.Time) (bool, error) {
	product, err := p.productRepo.GetForUpdate(ctx, tx, productID)
	if err != nil {
		return false, fmt.Errorf("failed to lock product: %w", err)
	}
	if product == nil {
		return false, fmt.Errorf("%w: product %d", model.ErrProductNotFound, productID)
	}

	sales, err := p.saleRepo.ListByProductTx(ctx, tx, productID)
	if err != nil {
		return false, fmt.Errorf("failed to load sales: %w", err)
	}

	price := pricing.EffectivePrice(product.BasePrice, sales, now)
	if price.Equal(product.Price) {
		return false, nil
	}

	if err := p.productRepo.UpdateEffectivePrice(ctx, tx, productID, price); err != nil {
		return false, err
	}

	p.logger.Info().
		Int64("product_id", productID).
		Str("old_price", product.Price.StringFixed(2)).
		Str("new_price", price.StringFixed(2)).
		Msg("effective price changed")

	return true, nil
}
