package enums

// PaymentStatus tracks whether a customer has paid for an order.
type PaymentStatus string

const (
	PaymentStatusNotRequired     PaymentStatus = "not_required"
	PaymentStatusAwaitingPayment PaymentStatus = "awaiting_payment"
	PaymentStatusAwaitingProof   PaymentStatus = "awaiting_proof"
	PaymentStatusProofSubmitted  PaymentStatus = "proof_submitted"
	PaymentStatusConfirmed       PaymentStatus = "confirmed"
	PaymentStatusRejected        PaymentStatus = "rejected"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusNotRequired,
	PaymentStatusAwaitingPayment,
	PaymentStatusAwaitingProof,
	PaymentStatusProofSubmitted,
	PaymentStatusConfirmed,
	PaymentStatusRejected,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	return isOneOf(validPaymentStatuses, p)
}

// IsSettled reports whether the order may proceed past preparation.
func (p PaymentStatus) IsSettled() bool {
	return p == PaymentStatusNotRequired || p == PaymentStatusConfirmed
}

// IsAwaiting reports whether the order is still waiting on the customer to pay.
func (p PaymentStatus) IsAwaiting() bool {
	return p == PaymentStatusAwaitingPayment || p == PaymentStatusAwaitingProof
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	return parseOneOf("payment status", validPaymentStatuses, value)
}
