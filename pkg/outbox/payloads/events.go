package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

// OrderCreatedEvent is emitted once stock is reserved and the order persisted.
type OrderCreatedEvent struct {
	OrderID         uuid.UUID             `json:"order_id"`
	CustomerID      uuid.UUID             `json:"customer_id"`
	StoreIDs        []uuid.UUID           `json:"store_ids"`
	FulfillmentType enums.FulfillmentType `json:"fulfillment_type"`
	PaymentMethod   enums.PaymentMethod   `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus   `json:"payment_status"`
	TotalPrice      string                `json:"total_price"`
	ItemCount       int                   `json:"item_count"`
}

// OrderStatusChangedEvent records a single fulfillment or payment transition.
type OrderStatusChangedEvent struct {
	OrderID uuid.UUID               `json:"order_id"`
	Field   enums.NotificationField `json:"field"`
	From    string                  `json:"from"`
	To      string                  `json:"to"`
	Actor   enums.ActorRole         `json:"actor"`
}

// OrderCanceledEvent is emitted when an order is cancelled, rejected or expired.
type OrderCanceledEvent struct {
	OrderID      uuid.UUID               `json:"order_id"`
	Status       enums.FulfillmentStatus `json:"status"`
	Reason       enums.CancelReason      `json:"reason"`
	Comment      string                  `json:"comment,omitempty"`
	Actor        enums.ActorRole         `json:"actor"`
	ReclaimedQty int                     `json:"reclaimed_qty"`
	CanceledAt   time.Time               `json:"canceled_at"`
}

// StockReclaimedEvent is emitted per offer whose counter was incremented back.
type StockReclaimedEvent struct {
	OfferID  uuid.UUID `json:"offer_id"`
	OrderID  uuid.UUID `json:"order_id"`
	Quantity int       `json:"quantity"`
}
