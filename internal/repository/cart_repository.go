package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/cart"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository stores each cart as a JSONB document.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func (r *cartRepository) Get(ctx context.Context, ownerKey string) (*cart.Cart, error) {
	c := cart.New(ownerKey)

	err := r.pool.QueryRow(ctx,
		`SELECT items, updated_at FROM carts WHERE owner_key = $1`, ownerKey,
	).Scan(&c.Items, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, nil
		}
		r.logger.Error().Err(err).Str("owner", ownerKey).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if c.Items == nil {
		c.Items = []cart.Item{}
	}
	return c, nil
}

func (r *cartRepository) Save(ctx context.Context, c *cart.Cart) error {
	query := `
		INSERT INTO carts (owner_key, items, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_key) DO UPDATE SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query, c.OwnerKey, c.Items).Scan(&c.UpdatedAt); err != nil {
		r.logger.Error().Err(err).Str("owner", c.OwnerKey).Msg("failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}

	r.logger.Debug().Str("owner", c.OwnerKey).Int("items", len(c.Items)).Msg("cart saved")
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, ownerKey string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE owner_key = $1`, ownerKey); err != nil {
		r.logger.Error().Err(err).Str("owner", ownerKey).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
