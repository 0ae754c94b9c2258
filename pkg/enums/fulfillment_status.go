package enums

// FulfillmentStatus tracks the physical progress of an order.
type FulfillmentStatus string

const (
	FulfillmentStatusPending    FulfillmentStatus = "pending"
	FulfillmentStatusPreparing  FulfillmentStatus = "preparing"
	FulfillmentStatusReady      FulfillmentStatus = "ready"
	FulfillmentStatusDelivering FulfillmentStatus = "delivering"
	FulfillmentStatusCompleted  FulfillmentStatus = "completed"
	FulfillmentStatusRejected   FulfillmentStatus = "rejected"
	FulfillmentStatusCancelled  FulfillmentStatus = "cancelled"
)

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusPending,
	FulfillmentStatusPreparing,
	FulfillmentStatusReady,
	FulfillmentStatusDelivering,
	FulfillmentStatusCompleted,
	FulfillmentStatusRejected,
	FulfillmentStatusCancelled,
}

// String implements fmt.Stringer.
func (s FulfillmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known FulfillmentStatus.
func (s FulfillmentStatus) IsValid() bool {
	return isOneOf(validFulfillmentStatuses, s)
}

// IsTerminal reports whether no further fulfillment transition is possible.
func (s FulfillmentStatus) IsTerminal() bool {
	switch s {
	case FulfillmentStatusCompleted, FulfillmentStatusRejected, FulfillmentStatusCancelled:
		return true
	default:
		return false
	}
}

// ReleasesStock reports whether entering the status returns reserved stock.
func (s FulfillmentStatus) ReleasesStock() bool {
	return s == FulfillmentStatusRejected || s == FulfillmentStatusCancelled
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	return parseOneOf("fulfillment status", validFulfillmentStatuses, value)
}
