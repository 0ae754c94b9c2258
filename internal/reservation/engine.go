// Package reservation performs all-or-nothing stock reservations and their inverse.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/surplusmarket-backend/internal/offers"
	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/surplusmarket-backend/pkg/errors"
	"github.com/angelmondragon/surplusmarket-backend/pkg/metrics"
)

// Engine reserves and reclaims offer stock inside a caller-owned transaction.
type Engine struct {
	offers  *offers.Repository
	metrics *metrics.OrderMetrics
	now     func() time.Time
}

func NewEngine(offerRepo *offers.Repository, m *metrics.OrderMetrics) (*Engine, error) {
	if offerRepo == nil {
		return nil, fmt.Errorf("offer repository required")
	}
	return &Engine{offers: offerRepo, metrics: m, now: time.Now}, nil
}

// Reserve locks every requested offer and decrements the counters. When any item fails the
// result carries a Failure and the caller must roll tx back; counters are only touched after
// every item passed its locked check.
func (e *Engine) Reserve(ctx context.Context, tx *gorm.DB, requests []Request) (*Result, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	order, wanted, err := mergeRequests(requests)
	if err != nil {
		return nil, err
	}

	lockOrder := append([]uuid.UUID(nil), order...)
	sort.Slice(lockOrder, func(i, j int) bool { return lockOrder[i].String() < lockOrder[j].String() })

	repo := e.offers.WithTx(tx)
	rows, err := repo.LockByIDs(ctx, lockOrder)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock offers")
	}
	byID := make(map[uuid.UUID]models.Offer, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	failure := &Failure{}
	for _, id := range order {
		qty := wanted[id]
		offer, ok := byID[id]
		switch {
		case !ok:
			failure.Items = append(failure.Items, ItemFailure{OfferID: id, Reason: ReasonOfferNotFound, Requested: qty})
		case offer.Status != enums.OfferStatusActive:
			failure.Items = append(failure.Items, ItemFailure{OfferID: id, Reason: ReasonOfferInactive, Requested: qty, Available: offer.RemainingQuantity})
		case offer.RemainingQuantity < qty:
			failure.Items = append(failure.Items, ItemFailure{OfferID: id, Reason: ReasonInsufficientStock, Requested: qty, Available: offer.RemainingQuantity})
		}
	}
	if len(failure.Items) > 0 {
		e.metrics.IncReservation(string(failure.PrimaryReason()))
		return &Result{Failure: failure}, nil
	}

	for _, id := range lockOrder {
		if err := repo.Decrement(ctx, id, wanted[id]); err != nil {
			if errors.Is(err, offers.ErrInsufficientStock) {
				failure.Items = append(failure.Items, ItemFailure{
					OfferID:   id,
					Reason:    ReasonInsufficientStock,
					Requested: wanted[id],
					Available: byID[id].RemainingQuantity,
				})
				e.metrics.IncReservation(string(ReasonInsufficientStock))
				return &Result{Failure: failure}, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement offer stock")
		}
	}

	reserved := make([]Reserved, 0, len(order))
	for _, id := range order {
		offer := byID[id]
		reserved = append(reserved, Reserved{
			OfferID:   id,
			StoreID:   offer.StoreID,
			Title:     offer.Title,
			UnitPrice: offer.DiscountedPrice,
			Quantity:  wanted[id],
		})
	}
	e.metrics.IncReservation("reserved")
	return &Result{Reserved: reserved}, nil
}

// Reclaim returns each line item's quantity to its offer exactly once. The reclaimed_at stamp
// is claimed with a guarded update so a second call for the same item is a no-op.
func (e *Engine) Reclaim(ctx context.Context, tx *gorm.DB, items []ReclaimItem) (ReclaimResult, error) {
	var result ReclaimResult
	if tx == nil {
		return result, fmt.Errorf("transaction required")
	}
	repo := e.offers.WithTx(tx)
	now := e.now().UTC()
	for _, item := range items {
		if item.Quantity <= 0 {
			result.Skipped++
			continue
		}
		claim := tx.WithContext(ctx).
			Model(&models.OrderLineItem{}).
			Where("id = ? AND reclaimed_at IS NULL", item.LineItemID).
			UpdateColumn("reclaimed_at", now)
		if claim.Error != nil {
			return result, pkgerrors.Wrap(pkgerrors.CodeDependency, claim.Error, "mark line item reclaimed")
		}
		if claim.RowsAffected == 0 {
			result.Skipped++
			continue
		}
		if err := repo.Increment(ctx, item.OfferID, item.Quantity); err != nil {
			return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "return offer stock")
		}
		result.Reclaimed = append(result.Reclaimed, item)
	}
	return result, nil
}

// mergeRequests validates the requests and folds duplicate offers together, keeping the
// first-seen order for snapshots.
func mergeRequests(requests []Request) ([]uuid.UUID, map[uuid.UUID]int, error) {
	if len(requests) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	order := make([]uuid.UUID, 0, len(requests))
	wanted := make(map[uuid.UUID]int, len(requests))
	for _, req := range requests {
		if req.OfferID == uuid.Nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id is required")
		}
		if req.Quantity <= 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		prior, seen := wanted[req.OfferID]
		if !seen {
			order = append(order, req.OfferID)
		}
		if prior > math.MaxInt-req.Quantity {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity too large").WithDetails(map[string]any{"offer_id": req.OfferID})
		}
		wanted[req.OfferID] = prior + req.Quantity
	}
	return order, wanted, nil
}
