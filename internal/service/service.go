package service

import (
	"context"
	"io"
	"math"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// maxPage keeps the derived offset within a 32-bit range.
	maxPage = math.MaxInt32 / maxPageSize
)

// ProductService defines operations for catalog management.
type ProductService interface {
	// List retrieves products matching filter with bounded paging.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product. Returns model.ErrProductNotFound when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)
	Update(ctx context.Context, id string, req *model.ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id string) error
}

// CategoryService defines operations for product categories.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error)
}

// UserService defines account registration, login and lookup.
type UserService interface {
	// Register creates a customer account and signs it in.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login verifies credentials and issues a token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)

	// Me returns the caller's account.
	Me(ctx context.Context, actor model.Actor) (*model.User, error)

	// List pages through all accounts. Admin only.
	List(ctx context.Context, actor model.Actor, page, pageSize int) (*model.UserPage, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder places an order for the caller, numbering it and copying
	// product data into the line items.
	CreateOrder(ctx context.Context, actor model.Actor, req *model.OrderRequest) (*model.Order, error)

	// ListOrdersForUser pages through the caller's orders, newest first.
	ListOrdersForUser(ctx context.Context, actor model.Actor, page, pageSize int) (*model.OrderPage, error)

	// GetOrderByID returns one of the caller's orders. Orders of other users
	// are reported as not found.
	GetOrderByID(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderResponse, error)

	// UpdateOrderStatus applies a status and/or payment status change.
	UpdateOrderStatus(ctx context.Context, actor model.Actor, id uuid.UUID, update *model.StatusUpdate) (*model.OrderResponse, error)

	// CancelOrder moves the order to cancelled.
	CancelOrder(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderResponse, error)

	// ListAllOrders pages through every order, optionally by status. Admin only.
	ListAllOrders(ctx context.Context, actor model.Actor, status string, page, pageSize int) (*model.OrderPage, error)

	// AttachReceipt stores a transfer receipt and links it to the order.
	AttachReceipt(ctx context.Context, actor model.Actor, id uuid.UUID, contentType string, body io.Reader) (*model.OrderResponse, error)

	// OpenReceipt returns the order's stored receipt and its content type.
	// The caller closes the reader.
	OpenReceipt(ctx context.Context, actor model.Actor, id uuid.UUID) (io.ReadCloser, string, error)
}

// CartService defines operations on a stored cart identified by owner key.
type CartService interface {
	Get(ctx context.Context, ownerKey string) (*cart.View, error)
	AddItem(ctx context.Context, ownerKey, productID string, quantity int) (*cart.View, error)
	RemoveItem(ctx context.Context, ownerKey, productID string) (*cart.View, error)
	IncrementItem(ctx context.Context, ownerKey, productID string) (*cart.View, error)
	DecrementItem(ctx context.Context, ownerKey, productID string) (*cart.View, error)
	Clear(ctx context.Context, ownerKey string) (*cart.View, error)

	// Checkout places an order from the caller's cart and empties it.
	Checkout(ctx context.Context, actor model.Actor, req *model.CheckoutRequest) (*model.Order, error)
}

// OrderRecorder observes created orders.
type OrderRecorder interface {
	OrderCreated(paymentMethod, currency string, total decimal.Decimal)
}

type nopRecorder struct{}

func (nopRecorder) OrderCreated(string, string, decimal.Decimal) {}

// normalizePage clamps 1-based paging input and derives the row offset.
func normalizePage(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

func totalPages(total int64, pageSize int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
