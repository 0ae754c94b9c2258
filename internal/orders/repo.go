package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
	"github.com/angelmondragon/surplusmarket-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts the order and its line items in one statement batch.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("order requires at least one line item")
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderItems).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// LockByID reads the order row FOR UPDATE so concurrent transitions on the same order serialise.
func (r *repository) LockByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	var items []models.OrderLineItem
	if err := orderItems(r.db.WithContext(ctx).Where("order_id = ?", orderID)).Find(&items).Error; err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *repository) Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindExpirable returns pending orders older than PendingBefore, or still awaiting payment
// and older than PaymentBefore, oldest first.
func (r *repository) FindExpirable(ctx context.Context, query ExpiryQuery) ([]uuid.UUID, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("fulfillment_status = ?", enums.FulfillmentStatusPending).
		Where(
			r.db.Where("created_at < ?", query.PendingBefore).
				Or("payment_status IN ? AND created_at < ?", []enums.PaymentStatus{
					enums.PaymentStatusAwaitingPayment,
					enums.PaymentStatusAwaitingProof,
				}, query.PaymentBefore),
		).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Order, *pagination.Cursor, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if query.CustomerID != nil {
		q = q.Where("customer_id = ?", *query.CustomerID)
	}
	if query.StoreID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM order_line_items li WHERE li.order_id = orders.id AND li.store_id = ?)", *query.StoreID)
	}
	if query.FulfillmentStatus != nil {
		q = q.Where("fulfillment_status = ?", *query.FulfillmentStatus)
	}
	if query.PaymentStatus != nil {
		q = q.Where("payment_status = ?", *query.PaymentStatus)
	}

	var rows []models.Order
	if err := pagination.Keyset(q.Preload("Items", orderItems), query.Cursor, query.Limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	page, next := pagination.Trim(rows, query.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return page, next, nil
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
