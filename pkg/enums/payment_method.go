package enums

// PaymentMethod is the customer's chosen way to pay.
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodClick PaymentMethod = "click"
	PaymentMethodPayme PaymentMethod = "payme"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodClick,
	PaymentMethodPayme,
}

// String implements fmt.Stringer.
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PaymentMethod.
func (m PaymentMethod) IsValid() bool {
	return isOneOf(validPaymentMethods, m)
}

// IsProvider reports whether an external payment provider settles the method.
func (m PaymentMethod) IsProvider() bool {
	return m == PaymentMethodClick || m == PaymentMethodPayme
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parseOneOf("payment method", validPaymentMethods, value)
}
