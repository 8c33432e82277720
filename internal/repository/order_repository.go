package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const orderColumns = `
	id, order_number, user_id,
	customer_full_name, customer_national_id, customer_email, customer_phone,
	ship_street, ship_locality, ship_province, ship_country, ship_postal_code,
	status, payment_method, payment_status, payment_card_brand, payment_card_last4,
	payment_proof_ref, payment_alias,
	currency, subtotal, shipping_cost, total, note, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// NextOrderNumber increments the order counter and returns the new value.
// The first call seeds the counter from the highest existing order number,
// so a fresh store starts at 1. The counter row stays locked until tx ends,
// which serialises concurrent checkouts on number assignment only.
func (r *orderRepository) NextOrderNumber(ctx context.Context, tx pgx.Tx) (int64, error) {
	query := `
		INSERT INTO order_counters (name, value)
		VALUES ('orders', (SELECT COALESCE(MAX(order_number), 0) + 1 FROM orders))
		ON CONFLICT (name) DO UPDATE SET value = order_counters.value + 1
		RETURNING value
	`

	var number int64
	if err := tx.QueryRow(ctx, query).Scan(&number); err != nil {
		r.logger.Error().Err(err).Msg("failed to reserve order number")
		return 0, fmt.Errorf("failed to reserve order number: %w", err)
	}

	return number, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.Customer.FullName,
		order.Customer.NationalID,
		order.Customer.Email,
		order.Customer.Phone,
		order.ShippingAddress.Street,
		order.ShippingAddress.Locality,
		order.ShippingAddress.Province,
		order.ShippingAddress.Country,
		order.ShippingAddress.PostalCode,
		order.Status,
		order.Payment.Method,
		order.Payment.Status,
		order.Payment.CardBrand,
		order.Payment.CardLast4,
		order.Payment.ProofRef,
		order.Payment.Alias,
		order.Currency,
		order.Subtotal,
		order.ShippingCost,
		order.Total,
		order.Note,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := constraintError(err, pgUniqueViolation); ok && constraint == "orders_order_number_key" {
			r.logger.Warn().
				Int64("order_number", order.OrderNumber).
				Msg("duplicate order number")
			return model.ErrDuplicateOrderNumber
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Int64("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, position, product_id, name, price, quantity, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(query, item.ID, item.OrderID, i, item.ProductID, item.Name, item.Price, item.Quantity, item.Image)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range items {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.itemsFor(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]

	return order, nil
}

// List retrieves orders matching filter, newest first.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	where, args := orderWhere(filter)
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM orders %s
		ORDER BY created_at DESC, order_number DESC
		LIMIT $%d OFFSET $%d`, orderColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.itemsFor(ctx, lo.Map(orders, func(o model.Order, _ int) uuid.UUID { return o.ID }))
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

// Count returns the number of orders matching filter.
func (r *orderRepository) Count(ctx context.Context, filter model.OrderFilter) (int64, error) {
	where, args := orderWhere(filter)

	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&count); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

// UpdateStatus changes the status of an order that is still in expected.
func (r *orderRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	expected, status model.OrderStatus,
	payment *model.PaymentStatus,
) (bool, error) {
	query := `
		UPDATE orders
		SET status = $3,
			payment_status = COALESCE($4, payment_status),
			updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, expected, status, payment)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// SetProofRef stores the payment receipt reference of an order.
func (r *orderRepository) SetProofRef(ctx context.Context, id uuid.UUID, ref string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET payment_proof_ref = $2, updated_at = NOW() WHERE id = $1`, id, ref)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to set payment receipt")
		return fmt.Errorf("failed to set payment receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// itemsFor loads the items of the given orders, keyed by order ID.
func (r *orderRepository) itemsFor(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, price, quantity, image
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("order_count", len(orderIDs)).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Price, &item.Quantity, &item.Image); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return lo.GroupBy(items, func(i model.OrderItem) uuid.UUID { return i.OrderID }), nil
}

func orderWhere(filter model.OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.Customer.FullName,
		&o.Customer.NationalID,
		&o.Customer.Email,
		&o.Customer.Phone,
		&o.ShippingAddress.Street,
		&o.ShippingAddress.Locality,
		&o.ShippingAddress.Province,
		&o.ShippingAddress.Country,
		&o.ShippingAddress.PostalCode,
		&o.Status,
		&o.Payment.Method,
		&o.Payment.Status,
		&o.Payment.CardBrand,
		&o.Payment.CardLast4,
		&o.Payment.ProofRef,
		&o.Payment.Alias,
		&o.Currency,
		&o.Subtotal,
		&o.ShippingCost,
		&o.Total,
		&o.Note,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
