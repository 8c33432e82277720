package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/receipt"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// OrderSettings are the store-wide values stamped on new orders.
type OrderSettings struct {
	Pricing         pricing.Rule
	Currency        string
	PaymentAlias    string
	MaxReceiptBytes int64
}

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	receipts    receipt.Store
	recorder    OrderRecorder
	settings    OrderSettings
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOrderService creates a new order service. A nil recorder disables
// order metrics.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	receipts receipt.Store,
	recorder OrderRecorder,
	settings OrderSettings,
	logger zerolog.Logger,
) OrderService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		receipts:    receipts,
		recorder:    recorder,
		settings:    settings,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder validates the request, prices it from the live catalog and
// stores it under a fresh order number in one transaction.
func (s *orderService) CreateOrder(ctx context.Context, actor model.Actor, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	productIDs := lo.Uniq(lo.Map(req.Items, func(item model.OrderItemRequest, _ int) string {
		return item.ProductID
	}))

	// A failed existence check falls through to the lookup, which names the
	// missing products.
	if err := s.productRepo.ValidateProductsExist(ctx, productIDs); err != nil && !errors.Is(err, model.ErrProductNotFound) {
		s.logger.Warn().
			Int("product_count", len(productIDs)).
			Err(err).
			Msg("product validation failed")
		return nil, err
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve product details")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}
	catalog := lo.KeyBy(products, func(p model.Product) string { return p.ID })

	if missing := lo.Reject(productIDs, func(id string, _ int) bool { return lo.HasKey(catalog, id) }); len(missing) > 0 {
		s.logger.Warn().Strs("product_ids", missing).Msg("products not found")
		return nil, model.NewProductsNotFoundError(missing)
	}

	items := make([]model.OrderItem, len(req.Items))
	for i, line := range req.Items {
		product := catalog[line.ProductID]
		if line.Price != nil && !line.Price.Equal(product.Price) {
			s.logger.Warn().
				Str("product_id", product.ID).
				Str("client_price", line.Price.String()).
				Str("price", product.Price.String()).
				Msg("stale line item price")
			return nil, model.ErrTotalsMismatch
		}
		items[i] = model.OrderItem{
			ID:        uuid.New(),
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.Quantity,
			Image:     product.Image,
		}
	}

	totals := s.settings.Pricing.Calculate(lo.Map(items, func(item model.OrderItem, _ int) pricing.Line {
		return pricing.Line{Price: item.Price, Quantity: item.Quantity}
	}))
	if !matches(req.Subtotal, totals.Subtotal) || !matches(req.ShippingCost, totals.ShippingCost) || !matches(req.Total, totals.Total) {
		s.logger.Warn().
			Str("subtotal", totals.Subtotal.String()).
			Str("total", totals.Total.String()).
			Msg("client totals do not match")
		return nil, model.ErrTotalsMismatch
	}

	now := s.now()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          actor.UserID,
		Customer:        req.Customer,
		ShippingAddress: req.ShippingAddress,
		Status:          model.StatusCreated,
		Payment:         s.newPayment(req.Payment),
		Currency:        s.settings.Currency,
		Subtotal:        totals.Subtotal,
		ShippingCost:    totals.ShippingCost,
		Total:           totals.Total,
		Note:            req.Note,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	order.Items = items

	if err := s.persist(ctx, order); err != nil {
		return nil, err
	}

	s.recorder.OrderCreated(string(order.Payment.Method), order.Currency, order.Total)
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int64("order_number", order.OrderNumber).
		Int("item_count", len(order.Items)).
		Str("total", order.Total.String()).
		Msg("order created successfully")

	return order, nil
}

// persist reserves a number and writes the order with its items atomically.
func (s *orderService) persist(ctx context.Context, order *model.Order) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order.OrderNumber, err = s.orderRepo.NextOrderNumber(ctx, tx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to reserve order number")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(order.Items)).
			Msg("failed to create order items")
		return fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (s *orderService) newPayment(req model.PaymentRequest) model.Payment {
	payment := model.Payment{
		Method:    req.Method,
		Status:    model.PaymentPending,
		CardBrand: req.CardBrand,
		CardLast4: req.CardLast4,
	}
	if req.Method == model.PaymentTransfer {
		payment.Alias = s.settings.PaymentAlias
	}
	return payment
}

// ListOrdersForUser pages through the caller's orders, newest first.
func (s *orderService) ListOrdersForUser(ctx context.Context, actor model.Actor, page, pageSize int) (*model.OrderPage, error) {
	return s.listOrders(ctx, model.OrderFilter{UserID: &actor.UserID}, page, pageSize)
}

// ListAllOrders pages through every order, optionally by status.
func (s *orderService) ListAllOrders(ctx context.Context, actor model.Actor, status string, page, pageSize int) (*model.OrderPage, error) {
	if !actor.IsAdmin() {
		return nil, model.ErrForbidden
	}

	var filter model.OrderFilter
	if status != "" {
		parsed, err := model.ParseOrderStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = &parsed
	}
	return s.listOrders(ctx, filter, page, pageSize)
}

func (s *orderService) listOrders(ctx context.Context, filter model.OrderFilter, page, pageSize int) (*model.OrderPage, error) {
	page, pageSize, filter.Offset = normalizePage(page, pageSize)
	filter.Limit = pageSize

	var (
		orders []model.Order
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orderRepo.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.orderRepo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Int("page", page).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if orders == nil {
		orders = []model.Order{}
	}
	return &model.OrderPage{
		Orders:     orders,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// GetOrderByID returns one of the caller's orders.
func (s *orderService) GetOrderByID(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderResponse, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID {
		s.logger.Debug().
			Str("order_id", id.String()).
			Str("user_id", actor.UserID.String()).
			Msg("order belongs to another user")
		return nil, model.ErrOrderNotFound
	}
	return respond(actor, order), nil
}

// UpdateOrderStatus applies a status and/or payment status change. Customers
// may only touch their own orders and only cancel them; payment status is
// admin only.
func (s *orderService) UpdateOrderStatus(ctx context.Context, actor model.Actor, id uuid.UUID, update *model.StatusUpdate) (*model.OrderResponse, error) {
	if update == nil || (update.Status == nil && update.Payment == nil) {
		return nil, model.NewValidationError("status or payment is required")
	}
	if update.Payment != nil && !actor.IsAdmin() {
		return nil, model.ErrForbidden
	}

	var target *model.OrderStatus
	if update.Status != nil {
		status, err := model.ParseOrderStatus(*update.Status)
		if err != nil {
			return nil, err
		}
		target = &status
	}

	var payment *model.PaymentStatus
	if update.Payment != nil {
		status, err := model.ParsePaymentStatus(update.Payment.Status)
		if err != nil {
			return nil, err
		}
		payment = &status
	}

	order, err := s.ownedOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	next := order.Status
	if target != nil {
		if err := model.CanTransition(actor.Role, order.Status, *target); err != nil {
			s.logger.Warn().
				Str("order_id", id.String()).
				Str("from", string(order.Status)).
				Str("to", string(*target)).
				Str("role", string(actor.Role)).
				Msg("status change rejected")
			return nil, err
		}
		next = *target
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, id, order.Status, next, payment)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !updated {
		// The order moved on since it was read.
		return nil, model.ErrInvalidTransition
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(order.Status)).
		Str("to", string(next)).
		Str("actor", actor.UserID.String()).
		Msg("order status updated")

	order, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return respond(actor, order), nil
}

// CancelOrder moves the order to cancelled.
func (s *orderService) CancelOrder(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderResponse, error) {
	status := string(model.StatusCancelled)
	return s.UpdateOrderStatus(ctx, actor, id, &model.StatusUpdate{Status: &status})
}

// AttachReceipt stores a transfer receipt and links it to the order.
func (s *orderService) AttachReceipt(ctx context.Context, actor model.Actor, id uuid.UUID, contentType string, body io.Reader) (*model.OrderResponse, error) {
	ext, ok := receipt.Extension(contentType)
	if !ok {
		return nil, model.NewValidationError("receipt must be a PDF, JPEG, PNG or WebP file")
	}

	order, err := s.ownedOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if order.Payment.Method != model.PaymentTransfer {
		return nil, model.NewValidationError("receipts are only accepted for transfer payments")
	}

	data, err := io.ReadAll(io.LimitReader(body, s.settings.MaxReceiptBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}
	if int64(len(data)) > s.settings.MaxReceiptBytes {
		return nil, model.ErrReceiptTooLarge
	}
	if len(data) == 0 {
		return nil, model.NewValidationError("receipt is empty")
	}

	key := fmt.Sprintf("%d-%s%s", order.OrderNumber, uuid.NewString(), ext)
	if err := s.receipts.Put(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to store receipt")
		return nil, fmt.Errorf("failed to store receipt: %w", err)
	}

	if err := s.orderRepo.SetProofRef(ctx, id, key); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to link receipt")
		return nil, fmt.Errorf("failed to link receipt: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("key", key).
		Int("size", len(data)).
		Msg("receipt attached")

	order.Payment.ProofRef = key
	return respond(actor, order), nil
}

// OpenReceipt returns the receipt linked to one of the caller's orders.
func (s *orderService) OpenReceipt(ctx context.Context, actor model.Actor, id uuid.UUID) (io.ReadCloser, string, error) {
	order, err := s.ownedOrder(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	key := order.Payment.ProofRef
	if key == "" {
		return nil, "", model.ErrReceiptNotFound
	}

	rc, err := s.receipts.Open(ctx, key)
	if errors.Is(err, receipt.ErrNotFound) {
		s.logger.Warn().Str("order_id", id.String()).Str("key", key).Msg("linked receipt is missing from store")
		return nil, "", model.ErrReceiptNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to open receipt")
		return nil, "", fmt.Errorf("failed to open receipt: %w", err)
	}
	return rc, receipt.ContentType(key), nil
}

// ownedOrder loads an order the actor may modify.
func (s *orderService) ownedOrder(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.UserID != actor.UserID {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) load(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func respond(actor model.Actor, order *model.Order) *model.OrderResponse {
	return &model.OrderResponse{
		Order:        *order,
		NextStatuses: model.NextStatuses(actor.Role, order.Status),
	}
}

// matches reports whether an optional client amount agrees with the server.
func matches(client *decimal.Decimal, server decimal.Decimal) bool {
	return client == nil || client.Equal(server)
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.NewValidationError("order request is required")
	}

	if len(req.Items) == 0 {
		return model.ErrEmptyCart
	}

	for i, item := range req.Items {
		if item.ProductID == "" {
			return model.NewValidationError(fmt.Sprintf("item %d: product ID is required", i))
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}

		if item.Price != nil && !item.Price.IsPositive() {
			return model.NewValidationError(fmt.Sprintf("item %d: price must be positive", i))
		}
	}

	return validateCheckout(req.Customer, req.ShippingAddress, req.Payment)
}
