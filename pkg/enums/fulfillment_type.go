package enums

// FulfillmentType decides whether the customer collects the order or it is delivered.
type FulfillmentType string

const (
	FulfillmentTypePickup   FulfillmentType = "pickup"
	FulfillmentTypeDelivery FulfillmentType = "delivery"
)

var validFulfillmentTypes = []FulfillmentType{
	FulfillmentTypePickup,
	FulfillmentTypeDelivery,
}

// String implements fmt.Stringer.
func (t FulfillmentType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known FulfillmentType.
func (t FulfillmentType) IsValid() bool {
	return isOneOf(validFulfillmentTypes, t)
}

// ParseFulfillmentType converts raw input into a FulfillmentType.
func ParseFulfillmentType(value string) (FulfillmentType, error) {
	return parseOneOf("fulfillment type", validFulfillmentTypes, value)
}
