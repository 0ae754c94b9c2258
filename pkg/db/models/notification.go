package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

// Notification stores the in-app copy of a dispatched order notification.
type Notification struct {
	ID          uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	RecipientID uuid.UUID                  `gorm:"column:recipient_id;type:uuid;not null;index"`
	Audience    enums.NotificationAudience `gorm:"column:audience;type:notification_audience;not null"`
	Template    string                     `gorm:"column:template;not null"`
	OrderID     uuid.UUID                  `gorm:"column:order_id;type:uuid;not null;index"`
	Params      map[string]string          `gorm:"column:params;type:jsonb;serializer:json"`
	DedupKey    string                     `gorm:"column:dedup_key;not null;uniqueIndex:ux_notifications_dedup_key"`
	ReadAt      *time.Time                 `gorm:"column:read_at"`
	CreatedAt   time.Time                  `gorm:"column:created_at;autoCreateTime"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
