package reservation

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/surplusmarket-backend/internal/offers"
	"github.com/angelmondragon/surplusmarket-backend/pkg/db/dbtest"
	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/surplusmarket-backend/pkg/errors"
)

var errRollback = errors.New("rollback")

type fixture struct {
	db     *gorm.DB
	offers *offers.Repository
	engine *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	repo := offers.NewRepository(db)
	engine, err := NewEngine(repo, nil)
	require.NoError(t, err)
	return &fixture{db: db, offers: repo, engine: engine}
}

func (f *fixture) seed(t *testing.T, qty int, status enums.OfferStatus) models.Offer {
	t.Helper()
	offer := models.Offer{
		StoreID:           uuid.New(),
		Title:             "Bread bag",
		OriginalPrice:     decimal.RequireFromString("10.00"),
		DiscountedPrice:   decimal.RequireFromString("3.50"),
		RemainingQuantity: qty,
		Status:            status,
	}
	require.NoError(t, f.offers.Create(context.Background(), &offer))
	return offer
}

func (f *fixture) remaining(t *testing.T, id uuid.UUID) int {
	t.Helper()
	offer, err := f.offers.Get(context.Background(), id)
	require.NoError(t, err)
	return offer.RemainingQuantity
}

// reserve runs Reserve in its own transaction and rolls back on failure like the order service does.
func (f *fixture) reserve(requests ...Request) (*Result, error) {
	var result *Result
	err := f.db.Transaction(func(tx *gorm.DB) error {
		res, err := f.engine.Reserve(context.Background(), tx, requests)
		if err != nil {
			return err
		}
		result = res
		if !res.OK() {
			return errRollback
		}
		return nil
	})
	if errors.Is(err, errRollback) {
		err = nil
	}
	return result, err
}

func TestReserveSnapshotsAndDecrements(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, 5, enums.OfferStatusActive)
	b := f.seed(t, 1, enums.OfferStatusActive)

	result, err := f.reserve(
		Request{OfferID: a.ID, Quantity: 2},
		Request{OfferID: b.ID, Quantity: 1},
		Request{OfferID: a.ID, Quantity: 1},
	)
	require.NoError(t, err)
	require.True(t, result.OK())
	require.Len(t, result.Reserved, 2)

	first := result.Reserved[0]
	assert.Equal(t, a.ID, first.OfferID)
	assert.Equal(t, 3, first.Quantity)
	assert.Equal(t, a.StoreID, first.StoreID)
	assert.True(t, first.LineTotal().Equal(decimal.RequireFromString("10.50")))

	assert.Equal(t, 2, f.remaining(t, a.ID))
	assert.Equal(t, 0, f.remaining(t, b.ID))
}

func TestReserveCartIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	plenty := f.seed(t, 10, enums.OfferStatusActive)
	scarce := f.seed(t, 1, enums.OfferStatusActive)
	inactive := f.seed(t, 4, enums.OfferStatusInactive)
	missing := uuid.New()

	result, err := f.reserve(
		Request{OfferID: plenty.ID, Quantity: 3},
		Request{OfferID: scarce.ID, Quantity: 2},
		Request{OfferID: inactive.ID, Quantity: 1},
		Request{OfferID: missing, Quantity: 1},
	)
	require.NoError(t, err)
	require.False(t, result.OK())
	require.Len(t, result.Failure.Items, 3)

	assert.Equal(t, ItemFailure{OfferID: scarce.ID, Reason: ReasonInsufficientStock, Requested: 2, Available: 1}, result.Failure.Items[0])
	assert.Equal(t, ReasonOfferInactive, result.Failure.Items[1].Reason)
	assert.Equal(t, ReasonOfferNotFound, result.Failure.Items[2].Reason)
	assert.Equal(t, ReasonInsufficientStock, result.Failure.PrimaryReason())
	assert.Contains(t, result.Failure.Error(), "insufficient_stock")

	assert.Equal(t, 10, f.remaining(t, plenty.ID))
	assert.Equal(t, 1, f.remaining(t, scarce.ID))
	assert.Equal(t, 4, f.remaining(t, inactive.ID))
}

func TestReserveNoOversellingUnderContention(t *testing.T) {
	f := newFixture(t)
	const stock, racers = 3, 8
	offer := f.seed(t, stock, enums.OfferStatusActive)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.reserve(Request{OfferID: offer.ID, Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			if result.OK() {
				successes++
			} else {
				failures++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, successes)
	assert.Equal(t, racers-stock, failures)
	assert.Equal(t, 0, f.remaining(t, offer.ID))
}

func TestReserveValidatesInput(t *testing.T) {
	f := newFixture(t)
	offer := f.seed(t, 1, enums.OfferStatusActive)

	cases := [][]Request{
		nil,
		{{OfferID: offer.ID, Quantity: 0}},
		{{OfferID: uuid.Nil, Quantity: 1}},
	}
	for _, requests := range cases {
		_, err := f.engine.Reserve(context.Background(), f.db, requests)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	}

	_, err := f.engine.Reserve(context.Background(), nil, []Request{{OfferID: offer.ID, Quantity: 1}})
	assert.Error(t, err)
}

func TestReserveRejectsOverflowingDuplicateLines(t *testing.T) {
	f := newFixture(t)
	offer := f.seed(t, 3, enums.OfferStatusActive)

	_, err := f.engine.Reserve(context.Background(), f.db, []Request{
		{OfferID: offer.ID, Quantity: math.MaxInt},
		{OfferID: offer.ID, Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, 3, f.remaining(t, offer.ID))
}

func TestReclaimIsIdempotentPerLineItem(t *testing.T) {
	f := newFixture(t)
	offer := f.seed(t, 0, enums.OfferStatusActive)
	order := models.Order{
		CustomerID:        uuid.New(),
		FulfillmentType:   enums.FulfillmentTypePickup,
		FulfillmentStatus: enums.FulfillmentStatusPending,
		PaymentMethod:     enums.PaymentMethodCash,
		PaymentStatus:     enums.PaymentStatusNotRequired,
		Items: []models.OrderLineItem{{
			OfferID:   offer.ID,
			StoreID:   offer.StoreID,
			Title:     offer.Title,
			Quantity:  2,
			UnitPrice: offer.DiscountedPrice,
			LineTotal: offer.DiscountedPrice.Mul(decimal.NewFromInt(2)),
		}},
	}
	require.NoError(t, f.db.Create(&order).Error)
	items := []ReclaimItem{{LineItemID: order.Items[0].ID, OfferID: offer.ID, Quantity: 2}}

	for i := 0; i < 2; i++ {
		err := f.db.Transaction(func(tx *gorm.DB) error {
			result, err := f.engine.Reclaim(context.Background(), tx, items)
			if err != nil {
				return err
			}
			if i == 0 {
				assert.Equal(t, 2, result.Quantity())
			} else {
				assert.Equal(t, 0, result.Quantity())
				assert.Equal(t, 1, result.Skipped)
			}
			return nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, f.remaining(t, offer.ID))

	var stored models.OrderLineItem
	require.NoError(t, f.db.First(&stored, "id = ?", order.Items[0].ID).Error)
	assert.NotNil(t, stored.ReclaimedAt)
}
