package model

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusCreated   OrderStatus = "created"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusCreated,
	StatusConfirmed,
	StatusPreparing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	return lo.Contains(OrderStatuses, s)
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCash     PaymentMethod = "cash"
)

var paymentMethods = []PaymentMethod{PaymentCard, PaymentTransfer, PaymentCash}

func (m PaymentMethod) Valid() bool {
	return lo.Contains(paymentMethods, m)
}

// PaymentStatus tracks whether the payment has been verified.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

var paymentStatuses = []PaymentStatus{PaymentPending, PaymentApproved, PaymentRejected}

func (s PaymentStatus) Valid() bool {
	return lo.Contains(paymentStatuses, s)
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.Valid() {
		return "", ErrInvalidPaymentStatus
	}
	return status, nil
}

// Role is the authorisation level of a user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// customerTransitions holds every status change a non-admin may request.
// Admins are unrestricted within the enumeration.
var customerTransitions = map[OrderStatus][]OrderStatus{
	StatusCreated:   {StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

// CanTransition is the single policy check for order status writes.
func CanTransition(role Role, from, to OrderStatus) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if role == RoleAdmin {
		return nil
	}
	if lo.Contains(customerTransitions[from], to) {
		return nil
	}
	return ErrInvalidTransition
}

// NextStatuses returns the statuses role may move an order in from to.
func NextStatuses(role Role, from OrderStatus) []OrderStatus {
	return lo.Filter(OrderStatuses, func(to OrderStatus, _ int) bool {
		return to != from && CanTransition(role, from, to) == nil
	})
}
