// Package cart holds the shopping cart of a single caller.
//
// A Cart is a plain value: every mutation changes the receiver only and the
// caller decides when to persist it. Totals are never stored, they are
// derived from the items with a pricing.Rule on demand.
package cart

import (
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/pricing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ErrItemNotFound is returned when a product is not in the cart.
var ErrItemNotFound = model.NewDomainError(model.ErrCodeNotFound, "Product is not in the cart")

// Item is a cart line with the product data captured when it was first added.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// Cart is the ordered list of items of one owner.
type Cart struct {
	OwnerKey  string    `json:"-"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserKey returns the owner key of an authenticated user's cart.
func UserKey(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// SessionKey returns the owner key of an anonymous cart. The session id
// must be a UUID so clients cannot address arbitrary keys.
func SessionKey(sessionID string) (string, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return "", fmt.Errorf("invalid cart session id: %w", err)
	}
	return "anon:" + id.String(), nil
}

// New returns an empty cart for owner.
func New(ownerKey string) *Cart {
	return &Cart{OwnerKey: ownerKey, Items: []Item{}}
}

// Add puts item in the cart, merging quantities when the product is already
// present. The first captured price is kept.
func (c *Cart) Add(item Item) error {
	if item.Quantity < 1 {
		return model.ErrInvalidQuantity
	}

	if existing, ok := c.find(item.ProductID); ok {
		existing.Quantity += item.Quantity
		c.touch()
		return nil
	}

	c.Items = append(c.Items, item)
	c.touch()
	return nil
}

// Remove drops a product from the cart.
func (c *Cart) Remove(productID string) error {
	_, idx, ok := lo.FindIndexOf(c.Items, func(i Item) bool { return i.ProductID == productID })
	if !ok {
		return ErrItemNotFound
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.touch()
	return nil
}

// Increment adds one unit of a product already in the cart.
func (c *Cart) Increment(productID string) error {
	item, ok := c.find(productID)
	if !ok {
		return ErrItemNotFound
	}
	item.Quantity++
	c.touch()
	return nil
}

// Decrement removes one unit of a product, never going below one.
func (c *Cart) Decrement(productID string) error {
	item, ok := c.find(productID)
	if !ok {
		return ErrItemNotFound
	}
	if item.Quantity > 1 {
		item.Quantity--
	}
	c.touch()
	return nil
}

// Reprice replaces the captured price of a product and reports whether it
// changed.
func (c *Cart) Reprice(productID string, price decimal.Decimal) bool {
	item, ok := c.find(productID)
	if !ok || item.Price.Equal(price) {
		return false
	}
	item.Price = price
	c.touch()
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []Item{}
	c.touch()
}

// Count returns the number of units across all items.
func (c *Cart) Count() int {
	return lo.SumBy(c.Items, func(i Item) int { return i.Quantity })
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Lines converts the items for the pricing calculator.
func (c *Cart) Lines() []pricing.Line {
	return lo.Map(c.Items, func(i Item, _ int) pricing.Line {
		return pricing.Line{Price: i.Price, Quantity: i.Quantity}
	})
}

// Totals derives the cart totals under rule.
func (c *Cart) Totals(rule pricing.Rule) pricing.Totals {
	return rule.Calculate(c.Lines())
}

// View is the cart as presented to clients.
type View struct {
	Items    []Item `json:"items"`
	Count    int    `json:"count"`
	Currency string `json:"currency"`
	pricing.Totals
}

// View renders the cart with derived totals.
func (c *Cart) View(rule pricing.Rule, currency string) View {
	return View{
		Items:    c.Items,
		Count:    c.Count(),
		Currency: currency,
		Totals:   c.Totals(rule),
	}
}

func (c *Cart) find(productID string) (*Item, bool) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
