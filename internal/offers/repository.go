// Package offers is the inventory store: merchant offers and their remaining-quantity counters.
package offers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/surplusmarket-backend/internal/repo"
	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

// ErrInsufficientStock is returned when a guarded decrement finds fewer units than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

// Repository reads and mutates offer rows. Counter mutations are expected to run inside the
// caller's transaction.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// WithTx binds the repository to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{base: r.base.WithTx(tx)}
}

func (r *Repository) Create(ctx context.Context, offer *models.Offer) error {
	if offer == nil {
		return fmt.Errorf("offer is required")
	}
	if offer.RemainingQuantity < 0 {
		return fmt.Errorf("remaining quantity must not be negative")
	}
	if offer.Status == "" {
		offer.Status = enums.OfferStatusActive
	}
	return r.base.DB(ctx).Create(offer).Error
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := r.base.DB(ctx).Where("id = ?", id).First(&offer).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// LockByIDs loads the offers with SELECT ... FOR UPDATE, ordered by id so overlapping
// carts acquire row locks in the same order. Missing ids are simply absent from the result.
func (r *Repository) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Offer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Offer
	err := r.base.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Decrement removes qty units from the counter. The WHERE guard keeps the counter
// non-negative even if a caller skipped the locked read.
func (r *Repository) Decrement(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("decrement quantity must be positive")
	}
	result := r.base.DB(ctx).
		Model(&models.Offer{}).
		Where("id = ? AND remaining_quantity >= ?", id, qty).
		UpdateColumns(map[string]any{
			"remaining_quantity": gorm.Expr("remaining_quantity - ?", qty),
			"updated_at":         time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// Increment returns qty units to the counter.
func (r *Repository) Increment(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("increment quantity must be positive")
	}
	result := r.base.DB(ctx).
		Model(&models.Offer{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"remaining_quantity": gorm.Expr("remaining_quantity + ?", qty),
			"updated_at":         time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePrice changes the live prices. Existing orders keep their snapshots.
func (r *Repository) UpdatePrice(ctx context.Context, id uuid.UUID, original, discounted decimal.Decimal) error {
	if discounted.IsNegative() || original.IsNegative() {
		return fmt.Errorf("prices must not be negative")
	}
	return r.base.DB(ctx).
		Model(&models.Offer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"original_price":   original,
			"discounted_price": discounted,
		}).Error
}
