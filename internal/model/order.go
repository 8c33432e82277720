package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is the buyer's contact data as captured at checkout.
type Customer struct {
	FullName   string `json:"fullName"`
	NationalID string `json:"nationalId"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// ShippingAddress is the delivery address as captured at checkout.
type ShippingAddress struct {
	Street     string `json:"street"`
	Locality   string `json:"locality"`
	Province   string `json:"province"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Payment describes how an order is paid and whether payment was verified.
type Payment struct {
	Method    PaymentMethod `json:"method"`
	Status    PaymentStatus `json:"paymentStatus"`
	CardBrand string        `json:"cardBrand,omitempty"`
	CardLast4 string        `json:"cardLast4,omitempty"`
	ProofRef  string        `json:"proofRef,omitempty"`
	Alias     string        `json:"alias,omitempty"`
}

// Order represents a placed purchase. Customer, address and line items are
// copies taken at creation time and never follow later catalog changes.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderNumber     int64           `json:"orderNumber" db:"order_number"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	Customer        Customer        `json:"customer"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Status          OrderStatus     `json:"status" db:"status"`
	Payment         Payment         `json:"payment"`
	Items           []OrderItem     `json:"lineItems"`
	Currency        string          `json:"currency" db:"currency"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shippingCost" db:"shipping_cost"`
	Total           decimal.Decimal `json:"total" db:"total"`
	Note            string          `json:"note,omitempty" db:"note"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a line of an order with the product data copied at purchase.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Image     string          `json:"image,omitempty" db:"image"`
}

// LineTotal returns price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderRequest is the checkout payload used to create an order.
// Totals are optional; when present they must match the server computation.
type OrderRequest struct {
	Customer        Customer           `json:"customer"`
	ShippingAddress ShippingAddress    `json:"shippingAddress"`
	Payment         PaymentRequest     `json:"payment"`
	Items           []OrderItemRequest `json:"lineItems"`
	Subtotal        *decimal.Decimal   `json:"subtotal,omitempty"`
	ShippingCost    *decimal.Decimal   `json:"shippingCost,omitempty"`
	Total           *decimal.Decimal   `json:"total,omitempty"`
	Note            string             `json:"note,omitempty"`
}

// PaymentRequest is the payment part of a checkout payload.
type PaymentRequest struct {
	Method    PaymentMethod `json:"method"`
	CardBrand string        `json:"cardBrand,omitempty"`
	CardLast4 string        `json:"cardLast4,omitempty"`
}

// OrderItemRequest represents a line in an order request.
type OrderItemRequest struct {
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// StatusUpdate changes an order's status, its payment status, or both.
type StatusUpdate struct {
	Status  *string        `json:"status,omitempty"`
	Payment *PaymentUpdate `json:"payment,omitempty"`
}

// PaymentUpdate is the admin-only payment part of a status update.
type PaymentUpdate struct {
	Status string `json:"paymentStatus"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID *uuid.UUID
	Status *OrderStatus
	Limit  int
	Offset int
}

// OrderPage is one page of an order listing.
type OrderPage struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

// OrderResponse wraps an order with the statuses the caller may move it to.
type OrderResponse struct {
	Order
	NextStatuses []OrderStatus `json:"nextStatuses"`
}

// CheckoutRequest turns the caller's cart into an order. Line items and
// totals come from the stored cart.
type CheckoutRequest struct {
	Customer        Customer        `json:"customer"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Payment         PaymentRequest  `json:"payment"`
	Note            string          `json:"note,omitempty"`
}
