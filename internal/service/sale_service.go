package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// saleService implements SaleService.
type saleService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	projector   *PriceProjector
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSaleService creates a new sale override service.
func NewSaleService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	projector *PriceProjector,
	logger zerolog.Logger,
) SaleService {
	return &saleService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		projector:   projector,
		logger:      logger.With().Str("service", "sale").Logger(),
		now:         time.Now,
	}
}

// Create inserts a sale override and re-projects its product.
func (s *saleService) Create(ctx context.Context, req *model.CreateSaleRequest) (sale *model.ProductSale, err error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request body is required", model.ErrInvalidSale)
	}
	if !req.SalePrice.Valid {
		s.logger.Warn().Int64("product_id", req.ProductID).Msg("sale without sale_price")
		return nil, fmt.Errorf("%w: sale_price is required", model.ErrInvalidSale)
	}

	now := s.now()
	sale = &model.ProductSale{
		ProductID:     req.ProductID,
		SalePrice:     roundMoney(req.SalePrice.Decimal),
		OriginalPrice: roundNullMoney(req.OriginalPrice),
		DiscountPct:   req.DiscountPct,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}
	if req.Status != nil {
		sale.Status = *req.Status
	} else {
		sale.Status = pricing.DeriveStatus(sale.StartDate, sale.EndDate, now)
	}

	if err = validateSale(sale); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", req.ProductID).Msg("invalid sale")
		return nil, err
	}

	tx, err := s.saleRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(ctx, tx, s.logger)
		}
	}()

	if err = s.requireProduct(ctx, tx, sale.ProductID); err != nil {
		return nil, err
	}

	if err = s.saleRepo.Create(ctx, tx, sale); err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	if _, err = s.projector.Project(ctx, tx, sale.ProductID, now); err != nil {
		return nil, fmt.Errorf("failed to project price: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("sale_id", sale.ID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	s.logger.Info().
		Int64("sale_id", sale.ID).
		Int64("product_id", sale.ProductID).
		Str("sale_price", sale.SalePrice.StringFixed(2)).
		Str("status", string(sale.Status)).
		Msg("sale created successfully")

	return sale, nil
}

// Update applies a partial update to a sale override and re-projects the
// products it belonged to before and after the change.
func (s *saleService) Update(ctx context.Context, id int64, req *model.UpdateSaleRequest) (sale *model.ProductSale, err error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request body is required", model.ErrInvalidSale)
	}

	now := s.now()

	tx, err := s.saleRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(ctx, tx, s.logger)
		}
	}()

	sale, err = s.saleRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: sale %d", model.ErrSaleNotFound, id)
	}

	previousProduct := sale.ProductID
	applySaleUpdate(sale, req, now)

	if err = validateSale(sale); err != nil {
		s.logger.Warn().Err(err).Int64("sale_id", id).Msg("invalid sale update")
		return nil, err
	}

	if sale.ProductID != previousProduct {
		if err = s.requireProduct(ctx, tx, sale.ProductID); err != nil {
			return nil, err
		}
	}

	if err = s.saleRepo.Update(ctx, tx, sale); err != nil {
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}

	for _, productID := range lockOrder(previousProduct, sale.ProductID) {
		if _, err = s.projector.Project(ctx, tx, productID, now); err != nil {
			return nil, fmt.Errorf("failed to project price: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("sale_id", id).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}

	s.logger.Info().
		Int64("sale_id", id).
		Int64("product_id", sale.ProductID).
		Msg("sale updated successfully")

	return sale, nil
}

// Delete removes a sale override and re-projects its product.
func (s *saleService) Delete(ctx context.Context, id int64) (err error) {
	now := s.now()

	tx, err := s.saleRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(ctx, tx, s.logger)
		}
	}()

	sale, err := s.saleRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	if sale == nil {
		return fmt.Errorf("%w: sale %d", model.ErrSaleNotFound, id)
	}

	if err = s.saleRepo.Delete(ctx, tx, id); err != nil {
		return err
	}

	if _, err = s.projector.Project(ctx, tx, sale.ProductID, now); err != nil {
		return fmt.Errorf("failed to project price: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("sale_id", id).Msg("failed to commit transaction")
		return fmt.Errorf("failed to delete sale: %w", err)
	}

	s.logger.Info().
		Int64("sale_id", id).
		Int64("product_id", sale.ProductID).
		Msg("sale deleted successfully")

	return nil
}

// GetByID retrieves a single sale override.
func (s *saleService) GetByID(ctx context.Context, id int64) (*model.ProductSale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: sale %d", model.ErrSaleNotFound, id)
	}
	return sale, nil
}

// List returns every sale override.
func (s *saleService) List(ctx context.Context) ([]model.ProductSale, error) {
	sales, err := s.saleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// ListActive returns sales that currently qualify to set a price.
func (s *saleService) ListActive(ctx context.Context) ([]model.ProductSale, error) {
	sales, err := s.saleRepo.ListActive(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list active sales: %w", err)
	}
	return sales, nil
}

// ListByProduct returns every sale override of a product.
func (s *saleService) ListByProduct(ctx context.Context, productID int64) ([]model.ProductSale, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %d", model.ErrProductNotFound, productID)
	}

	sales, err := s.saleRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product sales: %w", err)
	}
	return sales, nil
}

// Sweep moves sale statuses along with the clock and re-projects every
// product that had a transition, has an active sale, or carries a derived
// price different from its base price.
func (s *saleService) Sweep(ctx context.Context) (result *model.SweepResult, err error) {
	now := s.now()

	tx, err := s.saleRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep sales: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(ctx, tx, s.logger)
		}
	}()

	transitioned, err := s.saleRepo.TransitionStatuses(ctx, tx, now)
	if err != nil {
		return nil, err
	}

	candidates, err := s.saleRepo.ListRepricingCandidates(ctx, tx)
	if err != nil {
		return nil, err
	}

	result = &model.SweepResult{Transitioned: len(transitioned)}
	for _, productID := range lockOrder(append(transitioned, candidates...)...) {
		var changed bool
		changed, err = s.projector.Project(ctx, tx, productID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to project price: %w", err)
		}
		if changed {
			result.Repriced++
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to commit sweep")
		return nil, fmt.Errorf("failed to sweep sales: %w", err)
	}

	event := s.logger.Debug()
	if result.Transitioned > 0 || result.Repriced > 0 {
		event = s.logger.Info()
	}
	event.
		Int("transitioned", result.Transitioned).
		Int("repriced", result.Repriced).
		Msg("sale sweep finished")

	return result, nil
}

func (s *saleService) requireProduct(ctx context.Context, tx pgx.Tx, productID int64) error {
	product, err := s.productRepo.GetByIDTx(ctx, tx, productID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		s.logger.Warn().Int64("product_id", productID).Msg("product not found")
		return fmt.Errorf("%w: product %d", model.ErrProductNotFound, productID)
	}
	return nil
}

// applySaleUpdate merges the provided fields into sale. When the window
// changes without an explicit status, the status is derived again.
func applySaleUpdate(sale *model.ProductSale, req *model.UpdateSaleRequest, now time.Time) {
	if req.ProductID != nil {
		sale.ProductID = *req.ProductID
	}
	if req.SalePrice != nil {
		sale.SalePrice = roundMoney(*req.SalePrice)
	}
	if req.OriginalPrice != nil {
		sale.OriginalPrice = decimal.NewNullDecimal(roundMoney(*req.OriginalPrice))
	}
	if req.DiscountPct != nil {
		pct := *req.DiscountPct
		sale.DiscountPct = &pct
	}
	if req.StartDate != nil {
		sale.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		sale.EndDate = *req.EndDate
	}

	switch {
	case req.Status != nil:
		sale.Status = *req.Status
	case req.StartDate != nil || req.EndDate != nil:
		sale.Status = pricing.DeriveStatus(sale.StartDate, sale.EndDate, now)
	}
}

// roundMoney rounds to the stored scale so responses match what is persisted.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(model.MoneyScale)
}

func roundNullMoney(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NewNullDecimal(roundMoney(d.Decimal))
}

func validateSale(sale *model.ProductSale) error {
	switch {
	case sale.ProductID < 1:
		return fmt.Errorf("%w: product_id must be a positive integer", model.ErrInvalidSale)
	case sale.SalePrice.IsNegative():
		return fmt.Errorf("%w: sale_price must not be negative", model.ErrInvalidSale)
	case sale.OriginalPrice.Valid && sale.OriginalPrice.Decimal.IsNegative():
		return fmt.Errorf("%w: original_price must not be negative", model.ErrInvalidSale)
	case sale.DiscountPct != nil && (*sale.DiscountPct < 0 || *sale.DiscountPct > 100):
		return fmt.Errorf("%w: discount_pct must be between 0 and 100", model.ErrInvalidSale)
	case sale.StartDate.IsZero() || sale.EndDate.IsZero():
		return fmt.Errorf("%w: start_date and end_date are required", model.ErrInvalidSale)
	case !sale.EndDate.After(sale.StartDate):
		return fmt.Errorf("%w: end_date must be after start_date", model.ErrInvalidSale)
	case !sale.Status.Valid():
		return fmt.Errorf("%w: sale status %q", model.ErrInvalidStatus, sale.Status)
	}
	return nil
}

// lockOrder returns the distinct product IDs in ascending order so that
// transactions locking several products always acquire rows in the same order.
func lockOrder(ids ...int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
