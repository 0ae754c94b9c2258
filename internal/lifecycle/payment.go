package lifecycle

import (
	"fmt"

	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

var initialPaymentStatus = map[enums.PaymentMethod]enums.PaymentStatus{
	enums.PaymentMethodCash:  enums.PaymentStatusNotRequired,
	enums.PaymentMethodCard:  enums.PaymentStatusAwaitingProof,
	enums.PaymentMethodClick: enums.PaymentStatusAwaitingPayment,
	enums.PaymentMethodPayme: enums.PaymentStatusAwaitingPayment,
}

var paymentTransitions = map[enums.PaymentStatus][]enums.PaymentStatus{
	enums.PaymentStatusAwaitingPayment: {enums.PaymentStatusConfirmed, enums.PaymentStatusRejected},
	enums.PaymentStatusAwaitingProof:   {enums.PaymentStatusProofSubmitted},
	enums.PaymentStatusProofSubmitted:  {enums.PaymentStatusConfirmed, enums.PaymentStatusRejected},
	enums.PaymentStatusRejected:        {enums.PaymentStatusAwaitingProof},
}

// InitialPaymentStatus returns the status an order starts with for method.
func InitialPaymentStatus(method enums.PaymentMethod) (enums.PaymentStatus, error) {
	status, ok := initialPaymentStatus[method]
	if !ok {
		return "", fmt.Errorf("unsupported payment method %q", method)
	}
	return status, nil
}

// CanTransitionPayment is the raw table lookup.
func CanTransitionPayment(from, to enums.PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidatePayment checks a payment transition against the table, the payment method and the
// order's fulfillment status: payment never moves on a cancelled or rejected order.
func ValidatePayment(method enums.PaymentMethod, fulfillment enums.FulfillmentStatus, from, to enums.PaymentStatus) *Rejection {
	field := enums.NotificationFieldPayment
	if !from.IsValid() || !to.IsValid() || !method.IsValid() {
		return reject(field, string(from), string(to), RejectionUnknownStatus, "unknown payment status or method")
	}
	if fulfillment.ReleasesStock() {
		return reject(field, string(from), string(to), RejectionOrderClosed, "order is "+string(fulfillment))
	}
	if !CanTransitionPayment(from, to) {
		return reject(field, string(from), string(to), RejectionInvalidTransition, "payment transition not allowed")
	}
	// Re-uploading proof after a rejection only makes sense for the manual card flow.
	if from == enums.PaymentStatusRejected && method != enums.PaymentMethodCard {
		return reject(field, string(from), string(to), RejectionMethodMismatch, "proof upload is only available for card payments")
	}
	return nil
}
