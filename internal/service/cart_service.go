package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	orders      OrderService
	rule        pricing.Rule
	currency    string
	logger      zerolog.Logger
}

// NewCartService creates a new cart service that checks out through orders.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orders OrderService,
	rule pricing.Rule,
	currency string,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orders:      orders,
		rule:        rule,
		currency:    currency,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) Get(ctx context.Context, ownerKey string) (*cart.View, error) {
	c, err := s.load(ctx, ownerKey)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// AddItem captures the product's current name, price and image into the cart.
func (s *cartService) AddItem(ctx context.Context, ownerKey, productID string, quantity int) (*cart.View, error) {
	if productID == "" {
		return nil, model.NewValidationError("productId is required")
	}
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	return s.mutate(ctx, ownerKey, func(c *cart.Cart) error {
		return c.Add(cart.Item{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
			Image:     product.Image,
		})
	})
}

func (s *cartService) RemoveItem(ctx context.Context, ownerKey, productID string) (*cart.View, error) {
	return s.mutate(ctx, ownerKey, func(c *cart.Cart) error { return c.Remove(productID) })
}

func (s *cartService) IncrementItem(ctx context.Context, ownerKey, productID string) (*cart.View, error) {
	return s.mutate(ctx, ownerKey, func(c *cart.Cart) error { return c.Increment(productID) })
}

func (s *cartService) DecrementItem(ctx context.Context, ownerKey, productID string) (*cart.View, error) {
	return s.mutate(ctx, ownerKey, func(c *cart.Cart) error { return c.Decrement(productID) })
}

func (s *cartService) Clear(ctx context.Context, ownerKey string) (*cart.View, error) {
	if err := s.cartRepo.Delete(ctx, ownerKey); err != nil {
		s.logger.Error().Err(err).Str("owner", ownerKey).Msg("failed to clear cart")
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}
	return s.view(cart.New(ownerKey)), nil
}

// Checkout places an order with the cart's lines and captured prices. When
// catalog prices moved or products were removed since the items were added,
// the cart is refreshed and the order error is returned so the caller can
// review the new totals.
func (s *cartService) Checkout(ctx context.Context, actor model.Actor, req *model.CheckoutRequest) (*model.Order, error) {
	if req == nil {
		return nil, model.NewValidationError("checkout request is required")
	}

	ownerKey := cart.UserKey(actor.UserID)
	c, err := s.load(ctx, ownerKey)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, model.ErrEmptyCart
	}

	totals := c.Totals(s.rule)
	order, err := s.orders.CreateOrder(ctx, actor, &model.OrderRequest{
		Customer:        req.Customer,
		ShippingAddress: req.ShippingAddress,
		Payment:         req.Payment,
		Items: lo.Map(c.Items, func(item cart.Item, _ int) model.OrderItemRequest {
			return model.OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity, Price: &item.Price}
		}),
		Subtotal:     &totals.Subtotal,
		ShippingCost: &totals.ShippingCost,
		Total:        &totals.Total,
		Note:         req.Note,
	})
	if errors.Is(err, model.ErrTotalsMismatch) || errors.Is(err, model.ErrProductNotFound) {
		s.reprice(ctx, c)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.Delete(ctx, ownerKey); err != nil {
		s.logger.Warn().
			Err(err).
			Str("owner", ownerKey).
			Str("order_id", order.ID.String()).
			Msg("order placed but cart could not be cleared")
	}

	s.logger.Info().
		Str("owner", ownerKey).
		Int64("order_number", order.OrderNumber).
		Msg("cart checked out")
	return order, nil
}

// reprice refreshes captured prices from the catalog and drops lines whose
// product no longer exists. Failures are only logged since the caller already
// has an error to report.
func (s *cartService) reprice(ctx context.Context, c *cart.Cart) {
	ids := lo.Map(c.Items, func(item cart.Item, _ int) string { return item.ProductID })
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).Str("owner", c.OwnerKey).Msg("failed to load prices for repricing")
		return
	}
	catalog := lo.KeyBy(products, func(p model.Product) string { return p.ID })

	changed := 0
	var removed []string
	for _, id := range ids {
		p, ok := catalog[id]
		if !ok {
			if c.Remove(id) == nil {
				removed = append(removed, id)
			}
			continue
		}
		if c.Reprice(p.ID, p.Price) {
			changed++
		}
	}
	if changed == 0 && len(removed) == 0 {
		return
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		s.logger.Warn().Err(err).Str("owner", c.OwnerKey).Msg("failed to save repriced cart")
		return
	}
	s.logger.Info().
		Str("owner", c.OwnerKey).
		Int("changed", changed).
		Strs("removed", removed).
		Msg("cart repriced")
}

func (s *cartService) mutate(ctx context.Context, ownerKey string, fn func(*cart.Cart) error) (*cart.View, error) {
	c, err := s.load(ctx, ownerKey)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("owner", ownerKey).Msg("failed to save cart")
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return s.view(c), nil
}

func (s *cartService) load(ctx context.Context, ownerKey string) (*cart.Cart, error) {
	c, err := s.cartRepo.Get(ctx, ownerKey)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", ownerKey).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return c, nil
}

func (s *cartService) view(c *cart.Cart) *cart.View {
	v := c.View(s.rule, s.currency)
	return &v
}
