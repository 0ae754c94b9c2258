package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

// Order is the aggregate root for a customer's booking of one or more offers.
// Prices are snapshots taken at reservation time.
type Order struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID        uuid.UUID               `gorm:"column:customer_id;type:uuid;not null;index"`
	FulfillmentType   enums.FulfillmentType   `gorm:"column:fulfillment_type;type:fulfillment_type;not null"`
	FulfillmentStatus enums.FulfillmentStatus `gorm:"column:fulfillment_status;type:fulfillment_status;not null;default:'pending'"`
	PaymentMethod     enums.PaymentMethod     `gorm:"column:payment_method;type:payment_method;not null"`
	PaymentStatus     enums.PaymentStatus     `gorm:"column:payment_status;type:payment_status;not null"`
	Subtotal          decimal.Decimal         `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DeliveryFee       decimal.Decimal         `gorm:"column:delivery_fee;type:numeric(12,2);not null"`
	TotalPrice        decimal.Decimal         `gorm:"column:total_price;type:numeric(12,2);not null"`
	DeliveryAddress   *string                 `gorm:"column:delivery_address;type:text"`
	PickupCode        *string                 `gorm:"column:pickup_code;type:text"`
	CancelReason      *enums.CancelReason     `gorm:"column:cancel_reason;type:cancel_reason"`
	CancelComment     *string                 `gorm:"column:cancel_comment;type:text"`
	CancelledBy       *enums.ActorRole        `gorm:"column:cancelled_by;type:actor_role"`
	CompletedAt       *time.Time              `gorm:"column:completed_at"`
	CancelledAt       *time.Time              `gorm:"column:cancelled_at"`
	Items             []OrderLineItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT"`
	CreatedAt         time.Time               `gorm:"column:created_at;index"`
	UpdatedAt         time.Time               `gorm:"column:updated_at"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// StoreIDs returns the distinct merchant stores referenced by the line items,
// in first-seen order.
func (o *Order) StoreIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(o.Items))
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.StoreID]; ok {
			continue
		}
		seen[item.StoreID] = struct{}{}
		ids = append(ids, item.StoreID)
	}
	return ids
}

// HasStore reports whether any line item belongs to storeID.
func (o *Order) HasStore(storeID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.StoreID == storeID {
			return true
		}
	}
	return false
}
