package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/surplusmarket-backend/internal/lifecycle"
	"github.com/angelmondragon/surplusmarket-backend/internal/reservation"
	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

// Actor is the explicit per-request identity every façade call carries.
type Actor struct {
	UserID  uuid.UUID
	StoreID *uuid.UUID
	Role    enums.ActorRole
}

// SystemActor identifies background callers such as the expiry sweep.
func SystemActor() Actor {
	return Actor{Role: enums.ActorRoleSystem}
}

// LineItemInput requests Quantity units of an offer.
type LineItemInput struct {
	OfferID  uuid.UUID
	Quantity int
}

// CreateInput carries everything needed to reserve stock and open an order.
type CreateInput struct {
	Actor           Actor
	CustomerID      uuid.UUID
	Items           []LineItemInput
	FulfillmentType enums.FulfillmentType
	PaymentMethod   enums.PaymentMethod
	DeliveryAddress string
	// DeliveryFee overrides the configured default for delivery orders.
	DeliveryFee *decimal.Decimal
}

// TransitionInput requests a fulfillment status change.
type TransitionInput struct {
	Actor   Actor
	OrderID uuid.UUID
	Status  enums.FulfillmentStatus
	Reason  *enums.CancelReason
	Comment string
}

// PaymentInput requests a payment status change.
type PaymentInput struct {
	Actor   Actor
	OrderID uuid.UUID
	Status  enums.PaymentStatus
}

// CancelInput cancels a pending order and returns its stock.
type CancelInput struct {
	Actor   Actor
	OrderID uuid.UUID
	Reason  enums.CancelReason
	Comment string
}

// ListInput pages through the orders visible to the actor.
type ListInput struct {
	Actor             Actor
	Limit             int
	Cursor            string
	FulfillmentStatus *enums.FulfillmentStatus
	PaymentStatus     *enums.PaymentStatus
}

// CreateResult holds either the created order or the reservation failure.
type CreateResult struct {
	Order   *OrderView
	Failure *reservation.Failure
}

// TransitionResult holds the order after the call. Rejection is set when the change was
// refused and Changed is false when the order already had the requested status.
type TransitionResult struct {
	Order     *OrderView
	Rejection *lifecycle.Rejection
	Changed   bool
}

// CancelResult reports a cancellation. AlreadyTerminal is a successful no-op.
type CancelResult struct {
	Order           *OrderView
	AlreadyTerminal bool
	Rejection       *lifecycle.Rejection
	ReclaimedQty    int
}

// ListResult wraps a page of orders plus the cursor for the next page.
type ListResult struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// OrderView is the read model handed to chat, web and merchant collaborators.
type OrderView struct {
	ID                uuid.UUID                 `json:"id"`
	CustomerID        uuid.UUID                 `json:"customer_id"`
	FulfillmentType   enums.FulfillmentType     `json:"fulfillment_type"`
	FulfillmentStatus enums.FulfillmentStatus   `json:"fulfillment_status"`
	PaymentMethod     enums.PaymentMethod       `json:"payment_method"`
	PaymentStatus     enums.PaymentStatus       `json:"payment_status"`
	Subtotal          decimal.Decimal           `json:"subtotal"`
	DeliveryFee       decimal.Decimal           `json:"delivery_fee"`
	TotalPrice        decimal.Decimal           `json:"total_price"`
	DeliveryAddress   *string                   `json:"delivery_address,omitempty"`
	PickupCode        *string                   `json:"pickup_code,omitempty"`
	CancelReason      *enums.CancelReason       `json:"cancel_reason,omitempty"`
	CancelComment     *string                   `json:"cancel_comment,omitempty"`
	CancelledBy       *enums.ActorRole          `json:"cancelled_by,omitempty"`
	Items             []LineItemView            `json:"items"`
	Stores            []StoreBreakdown          `json:"stores"`
	NextFulfillment   []enums.FulfillmentStatus `json:"next_fulfillment"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
	CompletedAt       *time.Time                `json:"completed_at,omitempty"`
	CancelledAt       *time.Time                `json:"cancelled_at,omitempty"`
}

// LineItemView is one reserved offer with its price snapshot.
type LineItemView struct {
	ID        uuid.UUID       `json:"id"`
	OfferID   uuid.UUID       `json:"offer_id"`
	StoreID   uuid.UUID       `json:"store_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Reclaimed bool            `json:"reclaimed"`
}

// StoreBreakdown groups line items per merchant for multi-store carts.
type StoreBreakdown struct {
	StoreID   uuid.UUID       `json:"store_id"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// NewOrderView maps the aggregate to its read model.
func NewOrderView(order *models.Order) *OrderView {
	if order == nil {
		return nil
	}
	view := &OrderView{
		ID:                order.ID,
		CustomerID:        order.CustomerID,
		FulfillmentType:   order.FulfillmentType,
		FulfillmentStatus: order.FulfillmentStatus,
		PaymentMethod:     order.PaymentMethod,
		PaymentStatus:     order.PaymentStatus,
		Subtotal:          order.Subtotal,
		DeliveryFee:       order.DeliveryFee,
		TotalPrice:        order.TotalPrice,
		DeliveryAddress:   order.DeliveryAddress,
		PickupCode:        order.PickupCode,
		CancelReason:      order.CancelReason,
		CancelComment:     order.CancelComment,
		CancelledBy:       order.CancelledBy,
		Items:             make([]LineItemView, 0, len(order.Items)),
		NextFulfillment:   lifecycle.FulfillmentTargets(order.FulfillmentType, order.FulfillmentStatus),
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
		CompletedAt:       order.CompletedAt,
		CancelledAt:       order.CancelledAt,
	}

	index := map[uuid.UUID]int{}
	for _, item := range order.Items {
		view.Items = append(view.Items, LineItemView{
			ID:        item.ID,
			OfferID:   item.OfferID,
			StoreID:   item.StoreID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
			Reclaimed: item.ReclaimedAt != nil,
		})
		pos, ok := index[item.StoreID]
		if !ok {
			pos = len(view.Stores)
			index[item.StoreID] = pos
			view.Stores = append(view.Stores, StoreBreakdown{StoreID: item.StoreID, Subtotal: decimal.Zero})
		}
		view.Stores[pos].ItemCount += item.Quantity
		view.Stores[pos].Subtotal = view.Stores[pos].Subtotal.Add(item.LineTotal)
	}
	return view
}
