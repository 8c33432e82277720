package router

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Users      *handler.UserHandler
	Cart       *handler.CartHandler
	Orders     *handler.OrderHandler
}

// Options configures cross-cutting behaviour of the router.
type Options struct {
	Tokens         middleware.TokenParser
	Metrics        *metrics.Metrics
	DB             Pinger
	AllowedOrigins []string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	route := func(pattern string, next http.Handler) {
		mux.Handle(pattern, middleware.Instrument(opts.Metrics, pattern, next))
	}
	public := func(pattern string, fn http.HandlerFunc) { route(pattern, fn) }
	authed := func(pattern string, fn http.HandlerFunc) { route(pattern, middleware.RequireAuth(fn)) }
	admin := func(pattern string, fn http.HandlerFunc) { route(pattern, middleware.RequireAdmin(fn)) }

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", health(opts.DB, logger))
	mux.Handle("GET /metrics", opts.Metrics.Handler())

	public("POST /api/auth/register", h.Users.Register)
	public("POST /api/auth/login", h.Users.Login)
	authed("GET /api/users/me", h.Users.Me)
	admin("GET /api/users", h.Users.List)

	public("GET /api/categories", h.Categories.List)
	admin("POST /api/categories", h.Categories.Create)

	public("GET /api/products", h.Products.List)
	public("GET /api/products/{id}", h.Products.GetByID)
	admin("POST /api/products", h.Products.Create)
	admin("PUT /api/products/{id}", h.Products.Update)
	admin("DELETE /api/products/{id}", h.Products.Delete)

	// Cart routes accept both signed-in users and guests with a session header.
	public("GET /api/cart", h.Cart.Get)
	public("DELETE /api/cart", h.Cart.Clear)
	public("POST /api/cart/items", h.Cart.AddItem)
	public("DELETE /api/cart/items/{productId}", h.Cart.RemoveItem)
	public("POST /api/cart/items/{productId}/increment", h.Cart.Increment)
	public("POST /api/cart/items/{productId}/decrement", h.Cart.Decrement)
	authed("POST /api/cart/checkout", h.Cart.Checkout)

	authed("POST /api/orders", h.Orders.Create)
	authed("GET /api/orders/mine", h.Orders.ListMine)
	authed("GET /api/orders/mine/{id}", h.Orders.GetMine)
	authed("PUT /api/orders/{id}/status", h.Orders.UpdateStatus)
	authed("PUT /api/orders/{id}/cancel", h.Orders.Cancel)
	authed("PUT /api/orders/{id}/receipt", h.Orders.AttachReceipt)
	authed("GET /api/orders/{id}/receipt", h.Orders.Receipt)
	admin("GET /api/orders", h.Orders.ListAll)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> Authenticate
	var handler http.Handler = mux
	handler = middleware.Authenticate(opts.Tokens, logger)(handler)
	handler = middleware.CORS(opts.AllowedOrigins)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}

func health(db Pinger, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				logger.Error().Err(err).Msg("health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unavailable"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	}
}
