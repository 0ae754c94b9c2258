package enums

// CancelReason is the closed set of reasons recorded on cancelled or rejected orders.
type CancelReason string

const (
	CancelReasonOutOfStock      CancelReason = "out_of_stock"
	CancelReasonCantFulfill     CancelReason = "cant_fulfill"
	CancelReasonCustomerRequest CancelReason = "customer_request"
	CancelReasonTechnicalIssue  CancelReason = "technical_issue"
	CancelReasonOther           CancelReason = "other"
	// CancelReasonExpired is only set by the expiry sweep.
	CancelReasonExpired CancelReason = "expired"
)

var validCancelReasons = []CancelReason{
	CancelReasonOutOfStock,
	CancelReasonCantFulfill,
	CancelReasonCustomerRequest,
	CancelReasonTechnicalIssue,
	CancelReasonOther,
	CancelReasonExpired,
}

// String implements fmt.Stringer.
func (r CancelReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known CancelReason.
func (r CancelReason) IsValid() bool {
	return isOneOf(validCancelReasons, r)
}

// IsSystemOnly reports whether only the system actor may use the reason.
func (r CancelReason) IsSystemOnly() bool {
	return r == CancelReasonExpired
}

// ParseCancelReason converts raw input into a CancelReason.
func ParseCancelReason(value string) (CancelReason, error) {
	return parseOneOf("cancel reason", validCancelReasons, value)
}
