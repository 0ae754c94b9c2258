package orders

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/surplusmarket-backend/internal/lifecycle"
	"github.com/angelmondragon/surplusmarket-backend/internal/notifications"
	"github.com/angelmondragon/surplusmarket-backend/internal/offers"
	"github.com/angelmondragon/surplusmarket-backend/internal/reservation"
	"github.com/angelmondragon/surplusmarket-backend/pkg/db"
	"github.com/angelmondragon/surplusmarket-backend/pkg/db/dbtest"
	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/surplusmarket-backend/pkg/errors"
	"github.com/angelmondragon/surplusmarket-backend/pkg/logger"
	"github.com/angelmondragon/surplusmarket-backend/pkg/outbox"
)

type recordingNotifier struct {
	mu      sync.Mutex
	changes []notifications.Change
}

func (n *recordingNotifier) Notify(_ context.Context, _ *models.Order, change notifications.Change) notifications.Report {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
	return notifications.Report{Sent: 1}
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.changes)
}

type fixture struct {
	db       *gorm.DB
	svc      Service
	offers   *offers.Repository
	outbox   *outbox.Repository
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	offerRepo := offers.NewRepository(conn)
	engine, err := reservation.NewEngine(offerRepo, nil)
	require.NoError(t, err)
	outboxRepo := outbox.NewRepository(conn)
	notifier := &recordingNotifier{}
	svc, err := NewService(ServiceParams{
		Repo:               NewRepository(conn),
		Tx:                 db.NewFromGorm(conn),
		Engine:             engine,
		Outbox:             outbox.NewService(outboxRepo, logger.Nop()),
		Notifier:           notifier,
		Logger:             logger.Nop(),
		DefaultDeliveryFee: decimal.RequireFromString("2.00"),
	})
	require.NoError(t, err)
	return &fixture{db: conn, svc: svc, offers: offerRepo, outbox: outboxRepo, notifier: notifier}
}

func (f *fixture) seedOffer(t *testing.T, storeID uuid.UUID, price string, qty int) models.Offer {
	t.Helper()
	offer := models.Offer{
		StoreID:           storeID,
		Title:             "Pastry box",
		OriginalPrice:     decimal.RequireFromString("20.00"),
		DiscountedPrice:   decimal.RequireFromString(price),
		RemainingQuantity: qty,
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

func (f *fixture) eventTypes(t *testing.T, aggregate enums.OutboxAggregateType, id uuid.UUID) []enums.OutboxEventType {
	t.Helper()
	rows, err := f.outbox.ListByAggregate(context.Background(), aggregate, id)
	require.NoError(t, err)
	types := make([]enums.OutboxEventType, 0, len(rows))
	for _, row := range rows {
		types = append(types, row.EventType)
	}
	return types
}

func (f *fixture) create(t *testing.T, customer Actor, kind enums.FulfillmentType, method enums.PaymentMethod, items ...LineItemInput) *OrderView {
	t.Helper()
	input := CreateInput{Actor: customer, Items: items, FulfillmentType: kind, PaymentMethod: method}
	if kind == enums.FulfillmentTypeDelivery {
		input.DeliveryAddress = "12 Navoi street"
	}
	result, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Nil(t, result.Failure)
	require.NotNil(t, result.Order)
	return result.Order
}

func (f *fixture) advance(t *testing.T, actor Actor, orderID uuid.UUID, status enums.FulfillmentStatus) *TransitionResult {
	t.Helper()
	result, err := f.svc.AdvanceFulfillment(context.Background(), TransitionInput{Actor: actor, OrderID: orderID, Status: status})
	require.NoError(t, err)
	return result
}

func (f *fixture) pay(t *testing.T, actor Actor, orderID uuid.UUID, status enums.PaymentStatus) *TransitionResult {
	t.Helper()
	result, err := f.svc.AdvancePayment(context.Background(), PaymentInput{Actor: actor, OrderID: orderID, Status: status})
	require.NoError(t, err)
	return result
}

func customerActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.ActorRoleCustomer}
}

func merchantActor(storeID uuid.UUID) Actor {
	store := storeID
	return Actor{UserID: uuid.New(), StoreID: &store, Role: enums.ActorRoleMerchant}
}

func adminActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin}
}

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestCreateSnapshotsPricesAndSplitsStores(t *testing.T) {
	f := newFixture(t)
	storeA, storeB := uuid.New(), uuid.New()
	bread := f.seedOffer(t, storeA, "3.50", 5)
	cake := f.seedOffer(t, storeB, "6.25", 2)
	customer := customerActor()

	view := f.create(t, customer, enums.FulfillmentTypePickup, enums.PaymentMethodCash,
		LineItemInput{OfferID: bread.ID, Quantity: 2},
		LineItemInput{OfferID: cake.ID, Quantity: 1},
	)

	wantItems := []LineItemView{
		{OfferID: bread.ID, StoreID: storeA, Title: "Pastry box", Quantity: 2, UnitPrice: decimal.RequireFromString("3.50"), LineTotal: decimal.RequireFromString("7.00")},
		{OfferID: cake.ID, StoreID: storeB, Title: "Pastry box", Quantity: 1, UnitPrice: decimal.RequireFromString("6.25"), LineTotal: decimal.RequireFromString("6.25")},
	}
	if diff := cmp.Diff(wantItems, view.Items, decimalEqual, cmpopts.IgnoreFields(LineItemView{}, "ID")); diff != "" {
		t.Fatalf("line items mismatch (-want +got):\n%s", diff)
	}
	wantStores := []StoreBreakdown{
		{StoreID: storeA, ItemCount: 2, Subtotal: decimal.RequireFromString("7.00")},
		{StoreID: storeB, ItemCount: 1, Subtotal: decimal.RequireFromString("6.25")},
	}
	if diff := cmp.Diff(wantStores, view.Stores, decimalEqual); diff != "" {
		t.Fatalf("store breakdown mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, customer.UserID, view.CustomerID)
	assert.Equal(t, enums.FulfillmentStatusPending, view.FulfillmentStatus)
	assert.Equal(t, enums.PaymentStatusNotRequired, view.PaymentStatus)
	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("13.25")))
	assert.True(t, view.DeliveryFee.IsZero())
	assert.True(t, view.TotalPrice.Equal(view.Subtotal))
	require.NotNil(t, view.PickupCode)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), *view.PickupCode)
	assert.Nil(t, view.DeliveryAddress)

	assert.Equal(t, 3, f.remaining(t, bread.ID))
	assert.Equal(t, 1, f.remaining(t, cake.ID))
	assert.Equal(t, []enums.OutboxEventType{enums.EventOrderCreated}, f.eventTypes(t, enums.AggregateOrder, view.ID))
	assert.Equal(t, 1, f.notifier.count())
}

func TestPriceChangesDoNotTouchExistingOrders(t *testing.T) {
	f := newFixture(t)
	offer := f.seedOffer(t, uuid.New(), "4.00", 3)
	customer := customerActor()
	view := f.create(t, customer, enums.FulfillmentTypeDelivery, enums.PaymentMethodCash, LineItemInput{OfferID: offer.ID, Quantity: 2})
	assert.True(t, view.TotalPrice.Equal(decimal.RequireFromString("10.00")))

	require.NoError(t, f.offers.UpdatePrice(context.Background(), offer.ID, decimal.RequireFromString("30.00"), decimal.RequireFromString("9.99")))

	stored, err := f.svc.Get(context.Background(), customer, view.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(view.Items, stored.Items, decimalEqual); diff != "" {
		t.Fatalf("line items changed after price update (-before +after):\n%s", diff)
	}
	assert.True(t, stored.Subtotal.Equal(decimal.RequireFromString("8.00")))
	assert.True(t, stored.TotalPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestCreateFailureLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	plenty := f.seedOffer(t, uuid.New(), "2.00", 10)
	scarce := f.seedOffer(t, uuid.New(), "5.00", 1)
	customer := customerActor()

	result, err := f.svc.Create(context.Background(), CreateInput{
		Actor:           customer,
		FulfillmentType: enums.FulfillmentTypePickup,
		PaymentMethod:   enums.PaymentMethodClick,
		Items: []LineItemInput{
			{OfferID: plenty.ID, Quantity: 3},
			{OfferID: scarce.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Nil(t, result.Order)
	require.NotNil(t, result.Failure)
	require.Len(t, result.Failure.Items, 1)
	assert.Equal(t, scarce.ID, result.Failure.Items[0].OfferID)
	assert.Equal(t, reservation.ReasonInsufficientStock, result.Failure.Items[0].Reason)
	assert.Equal(t, 1, result.Failure.Items[0].Available)

	assert.Equal(t, 10, f.remaining(t, plenty.ID))
	assert.Equal(t, 1, f.remaining(t, scarce.ID))

	var orders, events int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, f.db.Model(&models.OutboxEvent{}).Count(&events).Error)
	assert.Zero(t, orders)
	assert.Zero(t, events)
	assert.Zero(t, f.notifier.count())
}

func TestConcurrentCreatesForLastUnit(t *testing.T) {
	f := newFixture(t)
	offer := f.seedOffer(t, uuid.New(), "1.50", 1)

	const racers = 2
	results := make([]*CreateResult, racers)
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Create(context.Background(), CreateInput{
				Actor:           customerActor(),
				FulfillmentType: enums.FulfillmentTypePickup,
				PaymentMethod:   enums.PaymentMethodCash,
				Items:           []LineItemInput{{OfferID: offer.ID, Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	created, failed := 0, 0
	for i := 0; i < racers; i++ {
		require.NoError(t, errs[i])
		if results[i].Order != nil {
			created++
		}
		if results[i].Failure != nil {
			failed++
			assert.Equal(t, reservation.ReasonInsufficientStock, results[i].Failure.PrimaryReason())
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 0, f.remaining(t, offer.ID))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	offer := f.seedOffer(t, uuid.New(), "1.00", 5)
	items := []LineItemInput{{OfferID: offer.ID, Quantity: 1}}
	negative := decimal.RequireFromString("-1")

	cases := map[string]struct {
		input CreateInput
		code  pkgerrors.Code
	}{
		"delivery without address": {
			input: CreateInput{Actor: customerActor(), Items: items, FulfillmentType: enums.FulfillmentTypeDelivery, PaymentMethod: enums.PaymentMethodCash},
			code:  pkgerrors.CodeValidation,
		},
		"pickup with address": {
			input: CreateInput{Actor: customerActor(), Items: items, FulfillmentType: enums.FulfillmentTypePickup, PaymentMethod: enums.PaymentMethodCash, DeliveryAddress: "somewhere"},
			code:  pkgerrors.CodeValidation,
		},
		"negative fee": {
			input: CreateInput{Actor: customerActor(), Items: items, FulfillmentType: enums.FulfillmentTypeDelivery, PaymentMethod: enums.PaymentMethodCash, DeliveryAddress: "x", DeliveryFee: &negative},
			code:  pkgerrors.CodeValidation,
		},
		"unknown payment method": {
			input: CreateInput{Actor: customerActor(), Items: items, FulfillmentType: enums.FulfillmentTypePickup, PaymentMethod: "bitcoin"},
			code:  pkgerrors.CodeValidation,
		},
		"empty cart": {
			input: CreateInput{Actor: customerActor(), FulfillmentType: enums.FulfillmentTypePickup, PaymentMethod: enums.PaymentMethodCash},
			code:  pkgerrors.CodeValidation,
		},
		"merchant placing order": {
			input: CreateInput{Actor: merchantActor(uuid.New()), Items: items, FulfillmentType: enums.FulfillmentTypePickup, PaymentMethod: enums.PaymentMethodCash},
			code:  pkgerrors.CodeForbidden,
		},
		"customer ordering for someone else": {
			input: CreateInput{Actor: customerActor(), CustomerID: uuid.New(), Items: items, FulfillmentType: enums.FulfillmentTypePickup, PaymentMethod: enums.PaymentMethodCash},
			code:  pkgerrors.CodeForbidden,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tc.input)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, tc.code), "got %v", err)
		})
	}
	assert.Equal(t, 5, f.remaining(t, offer.ID))
}

func TestDeliveryFeeDefaultAndOverride(t *testing.T) {
	f := newFixture(t)
	offer := f.seedOffer(t, uuid.New(), "5.00", 5)

	view := f.create(t, customerActor(), enums.FulfillmentTypeDelivery, enums.PaymentMethodCash, LineItemInput{OfferID: offer.ID, Quantity: 1})
	assert.True(t, view.DeliveryFee.Equal(decimal.RequireFromString("2.00")))
	assert.True(t, view.TotalPrice.Equal(decimal.RequireFromString("7.00")))
	assert.Nil(t, view.PickupCode)

	fee := decimal.RequireFromString("3.50")
	result, err := f.svc.Create(context.Background(), CreateInput{
		Actor:           customerActor(),
		Items:           []LineItemInput{{OfferID: offer.ID, Quantity: 1}},
		FulfillmentType: enums.FulfillmentTypeDelivery,
		PaymentMethod:   enums.PaymentMethodCard,
		DeliveryAddress: "7 Amir Temur avenue",
		DeliveryFee:     &fee,
	})
	require.NoError(t, err)
	assert.True(t, result.Order.TotalPrice.Equal(decimal.RequireFromString("8.50")))
	assert.Equal(t, enums.PaymentStatusAwaitingProof, result.Order.PaymentStatus)
}

func TestCashPickupRunsToCompletion(t *testing.T) {
	f := newFixture(t)
	storeID := uuid.New()
	offer := f.seedOffer(t, storeID, "2.00", 3)
	merchant := merchantActor(storeID)
	view := f.create(t, customerActor(), enums.FulfillmentTypePickup, enums.PaymentMethodCash, LineItemInput{OfferID: offer.ID, Quantity: 1})

	for _, status := range []enums.FulfillmentStatus{
		enums.FulfillmentStatusPreparing,
		enums.FulfillmentStatusReady,
		enums.FulfillmentStatusCompleted,
	} {
		result := f.advance(t, merchant, view.ID, status)
		require.Nil(t, result.Rejection, "moving to %s", status)
		assert.True(t, result.Changed)
		assert.Equal(t, status, result.Order.FulfillmentStatus)
	}

	final, err := f.svc.Get(context.Background(), merchant, view.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.FulfillmentStatusCompleted, final.FulfillmentStatus)
	assert.NotNil(t, final.CompletedAt)
	assert.Empty(t, final.NextFulfillment)
	assert.Equal(t, 2, f.remaining(t, offer.ID))
	assert.Equal(t, 4, f.notifier.count())

	again := f.advance(t, merchant, view.ID, enums.FulfillmentStatusCompleted)
	assert.False(t, again.Changed)
	assert.Nil(t, again.Rejection)
	assert.Equal(t, 4, f.notifier.count())

	// Pickup orders never go out for delivery.
	fresh := f.create(t, customerActor(), enums.FulfillmentTypePickup, enums.PaymentMethodCash, LineItemInput{OfferID: offer.ID, Quantity: 1})
	f.advance(t, merchant, fresh.ID, enums.FulfillmentStatusPreparing)
	f.advance(t, merchant, fresh.ID, enums.FulfillmentStatusReady)
	denied := f.advance(t, merchant, fresh.ID, enums.FulfillmentStatusDelivering)
	require.NotNil(t, denied.Rejection)
	assert.Equal(t, lifecycle.RejectionInvalidTransition, denied.Rejection.Code)
}

func TestCardOrderCancelledByCustomerReturnsStockOnce(t *testing.T) {
	f := newFixture(t)
	offer := f.seedOffer(t, uuid.New(), "3.00", 4)
	customer := customerActor()
	view := f.create(t, customer, enums.FulfillmentTypeDelivery, enums.PaymentMethodCard, LineItemInput{OfferID: offer.ID, Quantity: 3})
	assert.Equal(t, enums.PaymentStatusAwaitingProof, view.PaymentStatus)
	assert.Equal(t, 1, f.remaining(t, offer.ID))

	result, err := f.svc.Cancel(context.Background(), CancelInput{
		Actor:   customer,
		OrderID: view.ID,
		Reason:  enums.CancelReasonCustomerRequest,
		Comment: "  changed my mind ",
	})
	require.NoError(t, err)
	require.Nil(t, result.Rejection)
	assert.False(t, result.AlreadyTerminal)
	assert.Equal(t, 3, result.ReclaimedQty)
	assert.Equal(t, enums.FulfillmentStatusCancelled, result.Order.FulfillmentStatus)
	require.NotNil(t, result.Order.CancelReason)
	assert.Equal(t, enums.CancelReasonCustomerRequest, *result.Order.CancelReason)
	require.NotNil(t, result.Order.CancelComment)
	assert.Equal(t, "changed my mind", *result.Order.CancelComment)
	require.NotNil(t, result.Order.CancelledBy)
	assert.Equal(t, enums.ActorRoleCustomer, *result.Order.CancelledBy)
	assert.True(t, result.Order.Items[0].Reclaimed)
	assert.Equal(t, 4, f.remaining(t, offer.ID))

	again, err := f.svc.Cancel(context.Background(), CancelInput{Actor: customer, OrderID: view.ID, Reason: enums.CancelReasonOther})
	require.NoError(t, err)
	assert.True(t, again.AlreadyTerminal)
	assert.Zero(t, again.ReclaimedQty)
	assert.Equal(t, 4, f.remaining(t, offer.ID))

	assert.Equal(t, []enums.OutboxEventType{enums.EventOrderCreated, enums.EventOrderCanceled}, f.eventTypes(t, enums.AggregateOrder, view.ID))
	assert.Equal(t, []enums.OutboxEventType{enums.EventStockReclaimed}, f.eventTypes(t, enums.AggregateOffer, offer.ID))
	assert.Equal(t, 2, f.notifier.count())

	proof, err := f.svc.AdvancePayment(context.Background(), PaymentInput{Actor: customer, OrderID: view.ID, Status: enums.PaymentStatusProofSubmitted})
	require.NoError(t, err)
	require.NotNil(t, proof.Rejection)
	assert.Equal(t, lifecycle.RejectionOrderClosed, proof.Rejection.Code)
}

func TestClickDeliveryWaitsForPayment(t *testing.T) {
	f := newFixture(t)
	storeID := uuid.New()
	offer := f.seedOffer(t, storeID, "9.00", 2)
	merchant := merchantActor(storeID)
	view := f.create(t, customerActor(), enums.FulfillmentTypeDelivery, enums.PaymentMethodClick, LineItemInput{OfferID: offer.ID, Quantity: 1})
	assert.Equal(t, enums.PaymentStatusAwaitingPayment, view.PaymentStatus)

	require.Nil(t, f.advance(t, merchant, view.ID, enums.FulfillmentStatusPreparing).Rejection)

	gated := f.advance(t, merchant, view.ID, enums.FulfillmentStatusReady)
	require.NotNil(t, gated.Rejection)
	assert.Equal(t, lifecycle.RejectionPaymentGate, gated.Rejection.Code)
	assert.False(t, gated.Changed)
	assert.Equal(t, enums.FulfillmentStatusPreparing, gated.Order.FulfillmentStatus)

	paid := f.pay(t, SystemActor(), view.ID, enums.PaymentStatusConfirmed)
	require.Nil(t, paid.Rejection)
	assert.True(t, paid.Changed)

	for _, status := range []enums.FulfillmentStatus{
		enums.FulfillmentStatusReady,
		enums.FulfillmentStatusDelivering,
		enums.FulfillmentStatusCompleted,
	} {
		require.Nil(t, f.advance(t, merchant, view.ID, status).Rejection, "moving to %s", status)
	}
	assert.Equal(t, []enums.OutboxEventType{
		enums.EventOrderCreated,
		enums.EventOrderFulfillmentChanged,
		enums.EventOrderPaymentChanged,
		enums.EventOrderFulfillmentChanged,
		enums.EventOrderFulfillmentChanged,
		enums.EventOrderFulfillmentChanged,
	}, f.eventTypes(t, enums.AggregateOrder, view.ID))
}

func TestCardProofReviewFlow(t *testing.T) {
	f := newFixture(t)
	offer := f.seedOffer(t, uuid.New(), "4.00", 2)
	customer := customerActor()
	admin := adminActor()
	view := f.create(t, customer, enums.FulfillmentTypePickup, enums.PaymentMethodCard, LineItemInput{OfferID: offer.ID, Quantity: 1})

	require.Nil(t, f.pay(t, customer, view.ID, enums.PaymentStatusProofSubmitted).Rejection)
	require.Nil(t, f.pay(t, admin, view.ID, enums.PaymentStatusRejected).Rejection)
	require.Nil(t, f.pay(t, customer, view.ID, enums.PaymentStatusAwaitingProof).Rejection)
	require.Nil(t, f.pay(t, customer, view.ID, enums.PaymentStatusProofSubmitted).Rejection)
	confirmed := f.pay(t, admin, view.ID, enums.PaymentStatusConfirmed)
	require.Nil(t, confirmed.Rejection)
	assert.Equal(t, enums.PaymentStatusConfirmed, confirmed.Order.PaymentStatus)

	_, err := f.svc.AdvancePayment(context.Background(), PaymentInput{Actor: SystemActor(), OrderID: view.ID, Status: enums.PaymentStatusRejected})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestMerchantRejectionReclaimsStock(t *testing.T) {
	f := newFixture(t)
	storeID := uuid.New()
	offer := f.seedOffer(t, storeID, "2.50", 5)
	view := f.create(t, customerActor(), enums.FulfillmentTypePickup, enums.PaymentMethodCash, LineItemInput{OfferID: offer.ID, Quantity: 2})
	reason := enums.CancelReasonOutOfStock

	result, err := f.svc.AdvanceFulfillment(context.Background(), TransitionInput{
		Actor:   merchantActor(storeID),
		OrderID: view.ID,
		Status:  enums.FulfillmentStatusRejected,
		Reason:  &reason,
	})
	require.NoError(t, err)
	require.Nil(t, result.Rejection)
	assert.True(t, result.Changed)
	assert.Equal(t, enums.FulfillmentStatusRejected, result.Order.FulfillmentStatus)
	assert.Equal(t, enums.CancelReasonOutOfStock, *result.Order.CancelReason)
	assert.Equal(t, 5, f.remaining(t, offer.ID))

	again := f.advance(t, merchantActor(storeID), view.ID, enums.FulfillmentStatusRejected)
	assert.False(t, again.Changed)
	assert.Nil(t, again.Rejection)
	assert.Equal(t, 5, f.remaining(t, offer.ID))

	cancel, err := f.svc.Cancel(context.Background(), CancelInput{Actor: adminActor(), OrderID: view.ID, Reason: enums.CancelReasonOther})
	require.NoError(t, err)
	assert.True(t, cancel.AlreadyTerminal)
	assert.Equal(t, enums.FulfillmentStatusRejected, cancel.Order.FulfillmentStatus)
}

func TestMerchantCannotRejectSharedOrder(t *testing.T) {
	f := newFixture(t)
	storeA, storeB := uuid.New(), uuid.New()
	bread := f.seedOffer(t, storeA, "3.50", 4)
	cake := f.seedOffer(t, storeB, "6.25", 2)
	view := f.create(t, customerActor(), enums.FulfillmentTypePickup, enums.PaymentMethodCash,
		LineItemInput{OfferID: bread.ID, Quantity: 1},
		LineItemInput{OfferID: cake.ID, Quantity: 1},
	)

	_, err := f.svc.AdvanceFulfillment(context.Background(), TransitionInput{Actor: merchantActor(storeA), OrderID: view.ID, Status: enums.FulfillmentStatusRejected})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	assert.Equal(t, 1, f.remaining(t, cake.ID))

	rejected := f.advance(t, adminActor(), view.ID, enums.FulfillmentStatusRejected)
	require.Nil(t, rejected.Rejection)
	assert.Equal(t, enums.FulfillmentStatusRejected, rejected.Order.FulfillmentStatus)
	assert.Equal(t, 4, f.remaining(t, bread.ID))
	assert.Equal(t, 2, f.remaining(t, cake.ID))
}

func TestCancelAfterPreparationIsRefused(t *testing.T) {
	f := newFixture(t)
	storeID := uuid.New()
	offer := f.seedOffer(t, storeID, "2.00", 2)
	customer := customerActor()
	view := f.create(t, customer, enums.FulfillmentTypePickup, enums.PaymentMethodCash, LineItemInput{OfferID: offer.ID, Quantity: 1})
	f.advance(t, merchantActor(storeID), view.ID, enums.FulfillmentStatusPreparing)

	result, err := f.svc.Cancel(context.Background(), CancelInput{Actor: customer, OrderID: view.ID, Reason: enums.CancelReasonCustomerRequest})
	require.NoError(t, err)
	require.NotNil(t, result.Rejection)
	assert.False(t, result.AlreadyTerminal)
	assert.Equal(t, enums.FulfillmentStatusPreparing, result.Order.FulfillmentStatus)
	assert.Equal(t, 1, f.remaining(t, offer.ID))
}

func TestActorPermissions(t *testing.T) {
	f := newFixture(t)
	storeID := uuid.New()
	offer := f.seedOffer(t, storeID, "2.00", 10)
	owner := customerActor()
	view := f.create(t, owner, enums.FulfillmentTypePickup, enums.PaymentMethodCard, LineItemInput{OfferID: offer.ID, Quantity: 1})
	ctx := context.Background()

	_, err := f.svc.Get(ctx, customerActor(), view.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "stranger read: %v", err)

	_, err = f.svc.Get(ctx, merchantActor(uuid.New()), view.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "foreign merchant read: %v", err)

	_, err = f.svc.Get(ctx, merchantActor(storeID), view.ID)
	assert.NoError(t, err)

	_, err = f.svc.AdvanceFulfillment(ctx, TransitionInput{Actor: owner, OrderID: view.ID, Status: enums.FulfillmentStatusPreparing})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "customer preparing: %v", err)

	_, err = f.svc.Cancel(ctx, CancelInput{Actor: merchantActor(storeID), OrderID: view.ID, Reason: enums.CancelReasonOther})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "merchant cancel: %v", err)

	_, err = f.svc.Cancel(ctx, CancelInput{Actor: owner, OrderID: view.ID, Reason: enums.CancelReasonExpired})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "customer expiring: %v", err)

	_, err = f.svc.AdvancePayment(ctx, PaymentInput{Actor: owner, OrderID: view.ID, Status: enums.PaymentStatusConfirmed})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "customer confirming: %v", err)

	_, err = f.svc.AdvancePayment(ctx, PaymentInput{Actor: merchantActor(storeID), OrderID: view.ID, Status: enums.PaymentStatusProofSubmitted})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "merchant payment: %v", err)

	_, err = f.svc.AdvanceFulfillment(ctx, TransitionInput{Actor: Actor{Role: enums.ActorRoleMerchant, UserID: uuid.New()}, OrderID: view.ID, Status: enums.FulfillmentStatusPreparing})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "merchant without store: %v", err)

	_, err = f.svc.Get(ctx, Actor{Role: enums.ActorRoleCustomer}, view.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "anonymous: %v", err)

	_, err = f.svc.Get(ctx, owner, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "missing order: %v", err)

	stored, err := f.svc.Get(ctx, owner, view.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.FulfillmentStatusPending, stored.FulfillmentStatus)
	assert.Equal(t, enums.PaymentStatusAwaitingProof, stored.PaymentStatus)
	assert.Equal(t, 1, f.notifier.count())
}

func TestSystemExpiryEmitsExpiredEvent(t *testing.T) {
	f := newFixture(t)
	offer := f.seedOffer(t, uuid.New(), "2.00", 2)
	view := f.create(t, customerActor(), enums.FulfillmentTypePickup, enums.PaymentMethodPayme, LineItemInput{OfferID: offer.ID, Quantity: 2})

	result, err := f.svc.Cancel(context.Background(), CancelInput{Actor: SystemActor(), OrderID: view.ID, Reason: enums.CancelReasonExpired})
	require.NoError(t, err)
	require.Nil(t, result.Rejection)
	assert.Equal(t, 2, result.ReclaimedQty)
	assert.Equal(t, enums.ActorRoleSystem, *result.Order.CancelledBy)
	assert.Equal(t, []enums.OutboxEventType{enums.EventOrderCreated, enums.EventOrderExpired}, f.eventTypes(t, enums.AggregateOrder, view.ID))
	assert.Equal(t, 2, f.remaining(t, offer.ID))
}

func TestListScopesByActor(t *testing.T) {
	f := newFixture(t)
	storeA, storeB := uuid.New(), uuid.New()
	offerA := f.seedOffer(t, storeA, "1.00", 20)
	offerB := f.seedOffer(t, storeB, "1.00", 20)
	alice, bob := customerActor(), customerActor()

	for i := 0; i < 3; i++ {
		f.create(t, alice, enums.FulfillmentTypePickup, enums.PaymentMethodCash, LineItemInput{OfferID: offerA.ID, Quantity: 1})
	}
	f.create(t, bob, enums.FulfillmentTypePickup, enums.PaymentMethodCash, LineItemInput{OfferID: offerB.ID, Quantity: 1})

	seen := map[uuid.UUID]bool{}
	cursor := ""
	for {
		page, err := f.svc.List(context.Background(), ListInput{Actor: alice, Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		for _, order := range page.Orders {
			assert.Equal(t, alice.UserID, order.CustomerID)
			assert.False(t, seen[order.ID])
			seen[order.ID] = true
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Len(t, seen, 3)

	merchantPage, err := f.svc.List(context.Background(), ListInput{Actor: merchantActor(storeB)})
	require.NoError(t, err)
	require.Len(t, merchantPage.Orders, 1)
	assert.Equal(t, bob.UserID, merchantPage.Orders[0].CustomerID)

	pending := enums.FulfillmentStatusPending
	adminPage, err := f.svc.List(context.Background(), ListInput{Actor: adminActor(), FulfillmentStatus: &pending})
	require.NoError(t, err)
	assert.Len(t, adminPage.Orders, 4)

	_, err = f.svc.List(context.Background(), ListInput{Actor: alice, Cursor: "not-a-cursor"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
