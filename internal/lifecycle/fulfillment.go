package lifecycle

import (
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

type fulfillmentTable map[enums.FulfillmentStatus][]enums.FulfillmentStatus

// Branches to rejected/cancelled exist only from pending.
var fulfillmentTransitions = map[enums.FulfillmentType]fulfillmentTable{
	enums.FulfillmentTypeDelivery: {
		enums.FulfillmentStatusPending:    {enums.FulfillmentStatusPreparing, enums.FulfillmentStatusRejected, enums.FulfillmentStatusCancelled},
		enums.FulfillmentStatusPreparing:  {enums.FulfillmentStatusReady},
		enums.FulfillmentStatusReady:      {enums.FulfillmentStatusDelivering},
		enums.FulfillmentStatusDelivering: {enums.FulfillmentStatusCompleted},
	},
	enums.FulfillmentTypePickup: {
		enums.FulfillmentStatusPending:   {enums.FulfillmentStatusPreparing, enums.FulfillmentStatusRejected, enums.FulfillmentStatusCancelled},
		enums.FulfillmentStatusPreparing: {enums.FulfillmentStatusReady},
		enums.FulfillmentStatusReady:     {enums.FulfillmentStatusCompleted},
	},
}

// FulfillmentTargets lists the statuses reachable from from for the given fulfillment type.
func FulfillmentTargets(kind enums.FulfillmentType, from enums.FulfillmentStatus) []enums.FulfillmentStatus {
	table, ok := fulfillmentTransitions[kind]
	if !ok {
		return nil
	}
	return append([]enums.FulfillmentStatus(nil), table[from]...)
}

// CanTransitionFulfillment is the raw table lookup.
func CanTransitionFulfillment(kind enums.FulfillmentType, from, to enums.FulfillmentStatus) bool {
	for _, next := range fulfillmentTransitions[kind][from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateFulfillment checks the transition table only. The payment gate is applied by
// CheckFulfillment.
func ValidateFulfillment(kind enums.FulfillmentType, from, to enums.FulfillmentStatus) *Rejection {
	field := enums.NotificationFieldFulfillment
	if !to.IsValid() || !from.IsValid() || !kind.IsValid() {
		return reject(field, string(from), string(to), RejectionUnknownStatus, "unknown fulfillment status or type")
	}
	if from.IsTerminal() {
		return reject(field, string(from), string(to), RejectionTerminal, "order is already "+string(from))
	}
	if !CanTransitionFulfillment(kind, from, to) {
		return reject(field, string(from), string(to), RejectionInvalidTransition, "transition not allowed for "+string(kind)+" orders")
	}
	return nil
}
