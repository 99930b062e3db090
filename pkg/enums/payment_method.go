package enums

import "fmt"

// PaymentMethod identifies how the customer settles an order. Payments are
// arranged out of band over WhatsApp, so the method is informational.
type PaymentMethod string

const (
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodOther          PaymentMethod = "other"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodBankTransfer,
	PaymentMethodCashOnDelivery,
	PaymentMethodOther,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
