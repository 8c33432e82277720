package model

import "strings"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeCategoryNotFound     = "CATEGORY_NOT_FOUND"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeInvalidPayment       = "INVALID_PAYMENT_STATUS"
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeDuplicateOrderNumber = "DUPLICATE_ORDER_NUMBER"
	ErrCodeTotalsMismatch       = "TOTALS_MISMATCH"
	ErrCodeDuplicateProduct     = "DUPLICATE_PRODUCT"
	ErrCodeDuplicateCategory    = "DUPLICATE_CATEGORY"
	ErrCodeEmailTaken           = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeReceiptTooLarge      = "RECEIPT_TOO_LARGE"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// DomainError is a business rule failure that is safe to show to the caller.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// validation errors carrying a specific message still match their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with a field specific message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// NewProductsNotFoundError names the product IDs missing from the catalog.
// It matches ErrProductNotFound.
func NewProductsNotFoundError(ids []string) *DomainError {
	return NewDomainError(ErrCodeProductNotFound, "Products not found: "+strings.Join(ids, ", "))
}

// Common domain errors
var (
	ErrValidation           = NewDomainError(ErrCodeValidation, "Request validation failed")
	ErrEmptyCart            = NewDomainError(ErrCodeEmptyCart, "The cart is empty")
	ErrInvalidQuantity      = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrProductNotFound      = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrCategoryNotFound     = NewDomainError(ErrCodeCategoryNotFound, "Category not found")
	ErrOrderNotFound        = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrUserNotFound         = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrInvalidStatus        = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
	ErrInvalidPaymentStatus = NewDomainError(ErrCodeInvalidPayment, "Unknown payment status")
	ErrInvalidTransition    = NewDomainError(ErrCodeInvalidTransition, "Order status change is not allowed")
	ErrDuplicateOrderNumber = NewDomainError(ErrCodeDuplicateOrderNumber, "Order number already exists, please retry")
	ErrTotalsMismatch       = NewDomainError(ErrCodeTotalsMismatch, "Order totals do not match the current prices")
	ErrDuplicateProduct     = NewDomainError(ErrCodeDuplicateProduct, "A product with this ID already exists")
	ErrDuplicateCategory    = NewDomainError(ErrCodeDuplicateCategory, "A category with this name already exists")
	ErrEmailTaken           = NewDomainError(ErrCodeEmailTaken, "Email is already registered")
	ErrInvalidCredentials   = NewDomainError(ErrCodeInvalidCredentials, "Invalid email or password")
	ErrReceiptTooLarge      = NewDomainError(ErrCodeReceiptTooLarge, "Receipt file is too large")
	ErrReceiptNotFound      = NewDomainError(ErrCodeNotFound, "Order has no receipt")
	ErrUnauthenticated      = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrForbidden            = NewDomainError(ErrCodeForbidden, "You are not allowed to perform this action")
)
