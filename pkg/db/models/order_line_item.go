package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderLineItem snapshots one reserved offer inside an order.
type OrderLineItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	OfferID     uuid.UUID       `gorm:"column:offer_id;type:uuid;not null;index"`
	StoreID     uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	Position    int             `gorm:"column:position;not null;default:0"`
	Title       string          `gorm:"column:title;not null"`
	Quantity    int             `gorm:"column:quantity;not null;check:quantity > 0"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	ReclaimedAt *time.Time      `gorm:"column:reclaimed_at"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
}

func (i *OrderLineItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
