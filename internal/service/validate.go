package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"storefront/internal/model"

	"github.com/samber/lo"
)

// required returns a validation error naming the first blank field.
func required(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return model.NewValidationError(fmt.Sprintf("%s is required", f[0]))
		}
	}
	return nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validateCustomer(c model.Customer) error {
	if err := required(
		[2]string{"customer.fullName", c.FullName},
		[2]string{"customer.nationalId", c.NationalID},
		[2]string{"customer.email", c.Email},
		[2]string{"customer.phone", c.Phone},
	); err != nil {
		return err
	}
	if !validEmail(c.Email) {
		return model.NewValidationError("customer.email is not a valid email address")
	}
	return nil
}

func validateAddress(a model.ShippingAddress) error {
	return required(
		[2]string{"shippingAddress.street", a.Street},
		[2]string{"shippingAddress.locality", a.Locality},
		[2]string{"shippingAddress.province", a.Province},
		[2]string{"shippingAddress.country", a.Country},
	)
}

func validatePayment(p model.PaymentRequest) error {
	if !p.Method.Valid() {
		return model.NewValidationError("payment.method must be one of card, transfer, cash")
	}
	if p.CardLast4 != "" {
		if p.Method != model.PaymentCard {
			return model.NewValidationError("payment.cardLast4 is only allowed for card payments")
		}
		if len(p.CardLast4) != 4 || !lo.EveryBy([]rune(p.CardLast4), unicode.IsDigit) {
			return model.NewValidationError("payment.cardLast4 must be 4 digits")
		}
	}
	return nil
}

// validateCheckout checks the buyer data shared by direct orders and cart checkout.
func validateCheckout(c model.Customer, a model.ShippingAddress, p model.PaymentRequest) error {
	if err := validateCustomer(c); err != nil {
		return err
	}
	if err := validateAddress(a); err != nil {
		return err
	}
	return validatePayment(p)
}
