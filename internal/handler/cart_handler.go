package handler

import (
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CartSessionHeader carries the anonymous cart id of guests.
const CartSessionHeader = "X-Cart-Session"

// CartHandler handles shopping cart HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withOwner(w, r, func(owner string) (*cart.View, error) {
		return h.service.Get(r.Context(), owner)
	})
}

// AddItem handles POST /api/cart/items requests. Quantity defaults to one.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	req := addItemRequest{Quantity: 1}
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	h.withOwner(w, r, func(owner string) (*cart.View, error) {
		return h.service.AddItem(r.Context(), owner, req.ProductID, req.Quantity)
	})
}

// RemoveItem handles DELETE /api/cart/items/{productId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.withOwner(w, r, func(owner string) (*cart.View, error) {
		return h.service.RemoveItem(r.Context(), owner, r.PathValue("productId"))
	})
}

// Increment handles POST /api/cart/items/{productId}/increment requests.
func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.withOwner(w, r, func(owner string) (*cart.View, error) {
		return h.service.IncrementItem(r.Context(), owner, r.PathValue("productId"))
	})
}

// Decrement handles POST /api/cart/items/{productId}/decrement requests.
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.withOwner(w, r, func(owner string) (*cart.View, error) {
		return h.service.DecrementItem(r.Context(), owner, r.PathValue("productId"))
	})
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.withOwner(w, r, func(owner string) (*cart.View, error) {
		return h.service.Clear(r.Context(), owner)
	})
}

// Checkout handles POST /api/cart/checkout requests.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	order, err := h.service.Checkout(r.Context(), actor, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// withOwner resolves the cart owner and renders the resulting cart.
// Signed-in users own their cart by account; guests by session header.
func (h *CartHandler) withOwner(w http.ResponseWriter, r *http.Request, fn func(owner string) (*cart.View, error)) {
	owner, err := ownerKey(r)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	view, err := fn(owner)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func ownerKey(r *http.Request) (string, error) {
	if actor, ok := middleware.ActorFromContext(r.Context()); ok {
		return cart.UserKey(actor.UserID), nil
	}

	session := r.Header.Get(CartSessionHeader)
	if session == "" {
		return "", model.NewValidationError(CartSessionHeader + " header is required for guest carts")
	}
	key, err := cart.SessionKey(session)
	if err != nil {
		return "", model.NewValidationError(CartSessionHeader + " must be a UUID")
	}
	return key, nil
}
