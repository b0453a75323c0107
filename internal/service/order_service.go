package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	paymentRepo   repository.PaymentRepository
	defaultMethod string
	logger        zerolog.Logger
	now           func() time.Time
}

// NewOrderService creates a new order service. defaultMethod is the payment
// method key used for payments recorded on completion.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	paymentRepo repository.PaymentRepository,
	defaultMethod string,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		paymentRepo:   paymentRepo,
		defaultMethod: defaultMethod,
		logger:        logger.With().Str("service", "order").Logger(),
		now:           time.Now,
	}
}

// CreateOrder persists an order, its lines and its total atomically.
func (s *orderService) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (order *model.Order, err error) {
	if err = s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			rollback(ctx, tx, s.logger)
		}
	}()

	order = &model.Order{
		UserID:          req.UserID,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		TotalAmount:     decimal.Zero,
		Status:          model.OrderStatusPending,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	total := decimal.Zero
	for _, item := range req.OrderDetails {
		var product *model.Product
		product, err = s.productRepo.GetByIDTx(ctx, tx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to read product price: %w", err)
		}
		if product == nil {
			s.logger.Warn().
				Int64("product_id", item.ProductID).
				Msg("order references missing product")
			return nil, fmt.Errorf("%w: product %d", model.ErrProductNotFound, item.ProductID)
		}

		detail := model.OrderDetail{
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		}

		total = total.Add(detail.Subtotal())
		if total.GreaterThan(model.MaxOrderTotal) {
			s.logger.Warn().
				Int64("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("order total out of range")
			return nil, fmt.Errorf("%w: order total exceeds %s", model.ErrInvalidQuantity, model.MaxOrderTotal.StringFixed(2))
		}

		if err = s.orderRepo.CreateOrderDetail(ctx, tx, &detail); err != nil {
			return nil, fmt.Errorf("failed to create order detail: %w", err)
		}

		order.Details = append(order.Details, detail)
	}

	if err = s.orderRepo.UpdateTotal(ctx, tx, order.ID, total); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	order.TotalAmount = total

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Int("item_count", len(order.Details)).
		Str("total_amount", total.StringFixed(2)).
		Msg("order created successfully")

	return order, nil
}

// UpdateOrder changes header fields and status of an order.
func (s *orderService) UpdateOrder(ctx context.Context, id int64, req *model.UpdateOrderRequest) (order *model.Order, err error) {
	if err = validateUpdateRequest(req); err != nil {
		s.logger.Warn().Err(err).Int64("order_id", id).Msg("invalid order update")
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(ctx, tx, s.logger)
		}
	}()

	order, err = s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", model.ErrOrderNotFound, id)
	}

	previous := order.Status
	if req.Status != nil {
		if !previous.CanTransitionTo(*req.Status) {
			s.logger.Warn().
				Int64("order_id", id).
				Str("from", string(previous)).
				Str("to", string(*req.Status)).
				Msg("rejected status transition")
			return nil, fmt.Errorf("%w: %s to %s", model.ErrInvalidStatusTransition, previous, *req.Status)
		}
		order.Status = *req.Status
	}

	if req.UserID != nil {
		order.UserID = req.UserID
	}
	if req.CustomerName != nil {
		order.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	if req.CustomerPhone != nil {
		order.CustomerPhone = strings.TrimSpace(*req.CustomerPhone)
	}
	if req.CustomerAddress != nil {
		order.CustomerAddress = strings.TrimSpace(*req.CustomerAddress)
	}

	if err = s.orderRepo.UpdateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if order.Status == model.OrderStatusCompleted && previous != model.OrderStatusCompleted {
		if err = s.recordPayment(ctx, tx, order); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if previous != order.Status {
		s.logger.Info().
			Int64("order_id", id).
			Str("from", string(previous)).
			Str("to", string(order.Status)).
			Msg("order status changed")
	}

	return s.GetByID(ctx, id)
}

// recordPayment settles a completed order once. An existing paid payment
// makes this a no-op.
func (s *orderService) recordPayment(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	paid, err := s.paymentRepo.HasPaid(ctx, tx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to check payments: %w", err)
	}
	if paid {
		s.logger.Debug().Int64("order_id", order.ID).Msg("order already has a paid payment")
		return nil
	}

	method, err := s.paymentRepo.DefaultMethod(ctx, tx, s.defaultMethod)
	if err != nil {
		return fmt.Errorf("failed to resolve payment method: %w", err)
	}
	if method == nil {
		s.logger.Error().Str("method_key", s.defaultMethod).Msg("no active payment method configured")
		return model.ErrPaymentMethodNotFound
	}

	paidAt := s.now()
	transactionID := uuid.NewString()
	payment := &model.Payment{
		OrderID:         order.ID,
		PaymentMethodID: method.ID,
		TransactionID:   &transactionID,
		Amount:          order.TotalAmount,
		Status:          model.PaymentStatusPaid,
		PaidAt:          &paidAt,
	}

	if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Int64("payment_id", payment.ID).
		Str("method", method.MethodKey).
		Str("amount", payment.Amount.StringFixed(2)).
		Msg("payment recorded")

	return nil
}

// GetByID retrieves an order with its lines and payments.
func (s *orderService) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Int64("order_id", id).Msg("order not found")
		return nil, fmt.Errorf("%w: order %d", model.ErrOrderNotFound, id)
	}

	payments, err := s.paymentRepo.ListByOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order payments: %w", err)
	}
	order.Payments = payments

	return order, nil
}

// List returns orders newest first.
func (s *orderService) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	limit, offset = normalizePage(limit, offset)

	orders, err := s.orderRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListByUser returns a user's orders newest first.
func (s *orderService) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Order, error) {
	if userID < 1 {
		return nil, fmt.Errorf("%w: user_id", model.ErrInvalidID)
	}

	limit, offset = normalizePage(limit, offset)

	orders, err := s.orderRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return orders, nil
}

// Delete removes an order together with its lines and payments.
func (s *orderService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: order %d", model.ErrOrderNotFound, id)
	}

	s.logger.Info().Int64("order_id", id).Msg("order deleted")
	return nil
}

// validateCreateRequest checks the request before anything is persisted.
func (s *orderService) validateCreateRequest(req *model.CreateOrderRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request body is required", model.ErrMissingField)
	}

	if len(req.OrderDetails) == 0 {
		return model.ErrEmptyOrder
	}

	for i, item := range req.OrderDetails {
		if item.ProductID < 1 {
			return fmt.Errorf("%w: order_details[%d].product_id", model.ErrInvalidID, i)
		}

		if item.Quantity < 1 || item.Quantity > model.MaxLineQuantity {
			s.logger.Warn().
				Int("item_index", i).
				Int64("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return fmt.Errorf("%w: order_details[%d]", model.ErrInvalidQuantity, i)
		}
	}

	if req.UserID != nil && *req.UserID < 1 {
		return fmt.Errorf("%w: user_id", model.ErrInvalidID)
	}

	return requireFields(
		field{"customer_name", &req.CustomerName},
		field{"customer_phone", &req.CustomerPhone},
		field{"customer_address", &req.CustomerAddress},
	)
}

func validateUpdateRequest(req *model.UpdateOrderRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request body is required", model.ErrMissingField)
	}
	if req.Status != nil && !req.Status.Valid() {
		return fmt.Errorf("%w: order status %q", model.ErrInvalidStatus, *req.Status)
	}
	if req.UserID != nil && *req.UserID < 1 {
		return fmt.Errorf("%w: user_id", model.ErrInvalidID)
	}

	return requireFields(
		field{"customer_name", req.CustomerName},
		field{"customer_phone", req.CustomerPhone},
		field{"customer_address", req.CustomerAddress},
	)
}

type field struct {
	name  string
	value *string
}

// requireFields rejects blank values. Nil values are treated as absent.
func requireFields(fields ...field) error {
	for _, f := range fields {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			return fmt.Errorf("%w: %s", model.ErrMissingField, f.name)
		}
	}
	return nil
}
