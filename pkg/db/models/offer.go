package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

// Offer is a merchant's discounted surplus listing with a finite stock counter.
type Offer struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	StoreID           uuid.UUID         `gorm:"column:store_id;type:uuid;not null;index"`
	Title             string            `gorm:"column:title;not null"`
	OriginalPrice     decimal.Decimal   `gorm:"column:original_price;type:numeric(12,2);not null"`
	DiscountedPrice   decimal.Decimal   `gorm:"column:discounted_price;type:numeric(12,2);not null"`
	RemainingQuantity int               `gorm:"column:remaining_quantity;not null;check:remaining_quantity >= 0"`
	Status            enums.OfferStatus `gorm:"column:status;type:offer_status;not null;default:'active'"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Offer) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
