package repository

import (
	"context"
	"errors"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves products matching filter, ordered by name.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// ValidateProductsExist checks if all provided product IDs exist in the database.
	// Returns model.ErrProductNotFound if any product ID does not exist.
	ValidateProductsExist(ctx context.Context, ids []string) error

	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error
}

// UserRepository defines the interface for user account data access operations.
type UserRepository interface {
	// Create inserts a user. Returns model.ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail returns nil when no user has the email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID returns nil when the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	List(ctx context.Context, limit, offset int) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// NextOrderNumber atomically reserves the next order number within tx.
	NextOrderNumber(ctx context.Context, tx pgx.Tx) (int64, error)

	// CreateOrder inserts a new order within the provided transaction.
	// Returns model.ErrDuplicateOrderNumber when the number is already taken.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List retrieves orders matching filter, newest first, with their items.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// Count returns the number of orders matching filter, ignoring paging.
	Count(ctx context.Context, filter model.OrderFilter) (int64, error)

	// UpdateStatus writes status and optionally payment status, but only while
	// the order is still in expected. Reports whether a row was updated.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, status model.OrderStatus, payment *model.PaymentStatus) (bool, error)

	// SetProofRef stores the payment receipt reference of an order.
	SetProofRef(ctx context.Context, id uuid.UUID, ref string) error
}

// CartRepository persists carts keyed by owner.
type CartRepository interface {
	// Get returns the owner's cart, or an empty one when none was saved.
	Get(ctx context.Context, ownerKey string) (*cart.Cart, error)
	Save(ctx context.Context, c *cart.Cart) error
	Delete(ctx context.Context, ownerKey string) error
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// constraintError returns the violated constraint name when err is a
// PostgreSQL error with the given SQLSTATE.
func constraintError(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}
