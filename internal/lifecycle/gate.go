package lifecycle

import (
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

// gatedFulfillment are the statuses past preparing; entering them needs settled payment.
var gatedFulfillment = map[enums.FulfillmentStatus]struct{}{
	enums.FulfillmentStatusReady:      {},
	enums.FulfillmentStatusDelivering: {},
	enums.FulfillmentStatusCompleted:  {},
}

// MayAdvanceFulfillment is the cross-machine check: may the order move to target given its
// current payment status. Cancellation and rejection are never gated.
func MayAdvanceFulfillment(payment enums.PaymentStatus, target enums.FulfillmentStatus) bool {
	if _, gated := gatedFulfillment[target]; !gated {
		return true
	}
	return payment.IsSettled()
}

// State is the part of an order both machines read.
type State struct {
	FulfillmentType enums.FulfillmentType
	Fulfillment     enums.FulfillmentStatus
	PaymentMethod   enums.PaymentMethod
	Payment         enums.PaymentStatus
}

// CheckFulfillment applies the fulfillment table and then the payment gate.
func CheckFulfillment(state State, target enums.FulfillmentStatus) *Rejection {
	if rejection := ValidateFulfillment(state.FulfillmentType, state.Fulfillment, target); rejection != nil {
		return rejection
	}
	if !MayAdvanceFulfillment(state.Payment, target) {
		return reject(
			enums.NotificationFieldFulfillment,
			string(state.Fulfillment),
			string(target),
			RejectionPaymentGate,
			"payment is "+string(state.Payment)+"; it must be confirmed first",
		)
	}
	return nil
}

// CheckPayment applies the payment table for the order's method and fulfillment status.
func CheckPayment(state State, target enums.PaymentStatus) *Rejection {
	return ValidatePayment(state.PaymentMethod, state.Fulfillment, state.Payment, target)
}
