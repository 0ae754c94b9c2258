package enums

// OfferStatus maps to the offer_status enum in Postgres.
type OfferStatus string

const (
	OfferStatusActive   OfferStatus = "active"
	OfferStatusInactive OfferStatus = "inactive"
	OfferStatusExpired  OfferStatus = "expired"
)

var validOfferStatuses = []OfferStatus{
	OfferStatusActive,
	OfferStatusInactive,
	OfferStatusExpired,
}

// String implements fmt.Stringer.
func (s OfferStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OfferStatus.
func (s OfferStatus) IsValid() bool {
	return isOneOf(validOfferStatuses, s)
}

// ParseOfferStatus converts raw input into an OfferStatus.
func ParseOfferStatus(value string) (OfferStatus, error) {
	return parseOneOf("offer status", validOfferStatuses, value)
}
