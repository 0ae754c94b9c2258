package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
	"github.com/angelmondragon/surplusmarket-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	LockByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	FindExpirable(ctx context.Context, query ExpiryQuery) ([]uuid.UUID, error)
	List(ctx context.Context, query ListQuery) ([]models.Order, *pagination.Cursor, error)
}

// ExpiryQuery selects pending orders that outlived either threshold.
type ExpiryQuery struct {
	PendingBefore time.Time
	PaymentBefore time.Time
	Limit         int
}

// ListQuery scopes an order listing to a customer, a store, or nothing (admin).
type ListQuery struct {
	CustomerID        *uuid.UUID
	StoreID           *uuid.UUID
	FulfillmentStatus *enums.FulfillmentStatus
	PaymentStatus     *enums.PaymentStatus
	Limit             int
	Cursor            *pagination.Cursor
}
