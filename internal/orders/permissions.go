package orders

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/surplusmarket-backend/pkg/errors"
)

type statusSet[T comparable] map[T]struct{}

func setOf[T comparable](values ...T) statusSet[T] {
	set := make(statusSet[T], len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

func (s statusSet[T]) has(value T) bool {
	_, ok := s[value]
	return ok
}

// Admins are absent from both tables: they may request any status.
var fulfillmentTargetsByRole = map[enums.ActorRole]statusSet[enums.FulfillmentStatus]{
	enums.ActorRoleCustomer: setOf(enums.FulfillmentStatusCancelled),
	enums.ActorRoleMerchant: setOf(
		enums.FulfillmentStatusPreparing,
		enums.FulfillmentStatusReady,
		enums.FulfillmentStatusDelivering,
		enums.FulfillmentStatusCompleted,
		enums.FulfillmentStatusRejected,
	),
	enums.ActorRoleSystem: setOf(enums.FulfillmentStatusCancelled),
}

var paymentTargetsByRole = map[enums.ActorRole]statusSet[enums.PaymentStatus]{
	enums.ActorRoleCustomer: setOf(enums.PaymentStatusProofSubmitted, enums.PaymentStatusAwaitingProof),
	enums.ActorRoleMerchant: setOf[enums.PaymentStatus](),
	// Provider callbacks only settle redirect payments.
	enums.ActorRoleSystem: setOf(enums.PaymentStatusConfirmed, enums.PaymentStatusRejected),
}

func validateActor(actor Actor) error {
	if !actor.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor role missing")
	}
	if actor.Role != enums.ActorRoleSystem && actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.Role == enums.ActorRoleMerchant && (actor.StoreID == nil || *actor.StoreID == uuid.Nil) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	return nil
}

// authorizeView decides whether the actor may see the order at all.
func authorizeView(actor Actor, order *models.Order) error {
	switch actor.Role {
	case enums.ActorRoleAdmin, enums.ActorRoleSystem:
		return nil
	case enums.ActorRoleCustomer:
		if order.CustomerID == actor.UserID {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	case enums.ActorRoleMerchant:
		if actor.StoreID != nil && order.HasStore(*actor.StoreID) {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}
}

func authorizeFulfillment(actor Actor, order *models.Order, target enums.FulfillmentStatus) error {
	if err := authorizeView(actor, order); err != nil {
		return err
	}
	if actor.Role == enums.ActorRoleAdmin {
		return nil
	}
	if !fulfillmentTargetsByRole[actor.Role].has(target) {
		return pkgerrors.New(pkgerrors.CodeForbidden, string(actor.Role)+" may not set fulfillment to "+string(target))
	}
	// Rejecting a shared order would return the other stores' stock too.
	if actor.Role == enums.ActorRoleMerchant && target == enums.FulfillmentStatusRejected && len(order.StoreIDs()) > 1 {
		return pkgerrors.New(pkgerrors.CodeForbidden, "orders shared with other stores are rejected by an admin")
	}
	return nil
}

func authorizePayment(actor Actor, order *models.Order, target enums.PaymentStatus) error {
	if err := authorizeView(actor, order); err != nil {
		return err
	}
	switch actor.Role {
	case enums.ActorRoleAdmin:
		return nil
	case enums.ActorRoleSystem:
		if order.PaymentStatus != enums.PaymentStatusAwaitingPayment {
			return pkgerrors.New(pkgerrors.CodeForbidden, "system may only settle provider payments")
		}
	}
	if !paymentTargetsByRole[actor.Role].has(target) {
		return pkgerrors.New(pkgerrors.CodeForbidden, string(actor.Role)+" may not set payment to "+string(target))
	}
	return nil
}

func authorizeCancel(actor Actor, order *models.Order, reason enums.CancelReason) error {
	if err := authorizeView(actor, order); err != nil {
		return err
	}
	if reason.IsSystemOnly() && actor.Role != enums.ActorRoleSystem {
		return pkgerrors.New(pkgerrors.CodeForbidden, "reason "+string(reason)+" is reserved for the system")
	}
	switch actor.Role {
	case enums.ActorRoleCustomer, enums.ActorRoleAdmin, enums.ActorRoleSystem:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "merchants reject orders instead of cancelling them")
	}
}
