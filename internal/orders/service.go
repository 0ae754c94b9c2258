package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/surplusmarket-backend/internal/lifecycle"
	"github.com/angelmondragon/surplusmarket-backend/internal/notifications"
	"github.com/angelmondragon/surplusmarket-backend/internal/reservation"
	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/surplusmarket-backend/pkg/errors"
	"github.com/angelmondragon/surplusmarket-backend/pkg/logger"
	"github.com/angelmondragon/surplusmarket-backend/pkg/metrics"
	"github.com/angelmondragon/surplusmarket-backend/pkg/outbox"
	"github.com/angelmondragon/surplusmarket-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/surplusmarket-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Notifier receives every committed change exactly once per façade call.
type Notifier interface {
	Notify(ctx context.Context, order *models.Order, change notifications.Change) notifications.Report
}

// Service is the single entry point collaborators use to create and move orders.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	AdvanceFulfillment(ctx context.Context, input TransitionInput) (*TransitionResult, error)
	AdvancePayment(ctx context.Context, input PaymentInput) (*TransitionResult, error)
	Cancel(ctx context.Context, input CancelInput) (*CancelResult, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderView, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	engine      *reservation.Engine
	outbox      outboxPublisher
	notifier    Notifier
	metrics     *metrics.OrderMetrics
	logg        *logger.Logger
	deliveryFee decimal.Decimal
	now         func() time.Time
}

// ServiceParams wires the façade. Notifier and Metrics are optional.
type ServiceParams struct {
	Repo               Repository
	Tx                 txRunner
	Engine             *reservation.Engine
	Outbox             outboxPublisher
	Notifier           Notifier
	Metrics            *metrics.OrderMetrics
	Logger             *logger.Logger
	DefaultDeliveryFee decimal.Decimal
	Now                func() time.Time
}

// errReservationFailed rolls back a create whose reservation came back with a Failure.
var errReservationFailed = errors.New("reservation failed")

// NewService builds the order façade with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("reservation engine required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DefaultDeliveryFee.IsNegative() {
		return nil, fmt.Errorf("default delivery fee must not be negative")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		engine:      params.Engine,
		outbox:      params.Outbox,
		notifier:    params.Notifier,
		metrics:     params.Metrics,
		logg:        params.Logger,
		deliveryFee: params.DefaultDeliveryFee,
		now:         now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	customerID, err := resolveCustomer(input.Actor, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if !input.FulfillmentType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment type")
	}
	paymentStatus, err := lifecycle.InitialPaymentStatus(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	address := strings.TrimSpace(input.DeliveryAddress)
	fee := decimal.Zero
	var pickupCode *string
	switch input.FulfillmentType {
	case enums.FulfillmentTypeDelivery:
		if address == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required for delivery orders")
		}
		fee = s.deliveryFee
		if input.DeliveryFee != nil {
			fee = *input.DeliveryFee
		}
		if fee.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee must not be negative")
		}
	case enums.FulfillmentTypePickup:
		if address != "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup orders take no delivery address")
		}
		code, err := newPickupCode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate pickup code")
		}
		pickupCode = &code
	}

	requests := make([]reservation.Request, 0, len(input.Items))
	for _, item := range input.Items {
		requests = append(requests, reservation.Request{OfferID: item.OfferID, Quantity: item.Quantity})
	}

	var (
		order   *models.Order
		failure *reservation.Failure
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		result, err := s.engine.Reserve(ctx, tx, requests)
		if err != nil {
			return err
		}
		if !result.OK() {
			failure = result.Failure
			return errReservationFailed
		}

		order = buildOrder(customerID, input, paymentStatus, fee, result.Reserved)
		if address != "" {
			order.DeliveryAddress = &address
		}
		order.PickupCode = pickupCode
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			Data: payloads.OrderCreatedEvent{
				OrderID:         order.ID,
				CustomerID:      order.CustomerID,
				StoreIDs:        order.StoreIDs(),
				FulfillmentType: order.FulfillmentType,
				PaymentMethod:   order.PaymentMethod,
				PaymentStatus:   order.PaymentStatus,
				TotalPrice:      order.TotalPrice.StringFixed(2),
				ItemCount:       len(order.Items),
			},
		})
	})
	if errors.Is(err, errReservationFailed) {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"customer_id": customerID.String(),
			"reason":      string(failure.PrimaryReason()),
		}), "order reservation failed")
		return &CreateResult{Failure: failure}, nil
	}
	if err != nil {
		return nil, asDependency(err, "create order")
	}

	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, order.ID.String()), map[string]any{
		"customer_id":      customerID.String(),
		"fulfillment_type": string(order.FulfillmentType),
		"payment_method":   string(order.PaymentMethod),
		"total_price":      order.TotalPrice.StringFixed(2),
	})
	s.logg.Info(logCtx, "order created")
	s.notify(ctx, order, notifications.Change{
		NewFulfillment: order.FulfillmentStatus,
		NewPayment:     order.PaymentStatus,
	})
	return &CreateResult{Order: NewOrderView(order)}, nil
}

func buildOrder(customerID uuid.UUID, input CreateInput, payment enums.PaymentStatus, fee decimal.Decimal, reserved []reservation.Reserved) *models.Order {
	order := &models.Order{
		CustomerID:        customerID,
		FulfillmentType:   input.FulfillmentType,
		FulfillmentStatus: enums.FulfillmentStatusPending,
		PaymentMethod:     input.PaymentMethod,
		PaymentStatus:     payment,
		DeliveryFee:       fee,
		Items:             make([]models.OrderLineItem, 0, len(reserved)),
	}
	subtotal := decimal.Zero
	for i, r := range reserved {
		lineTotal := r.LineTotal()
		order.Items = append(order.Items, models.OrderLineItem{
			OfferID:   r.OfferID,
			StoreID:   r.StoreID,
			Position:  i,
			Title:     r.Title,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			LineTotal: lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	order.Subtotal = subtotal
	order.TotalPrice = subtotal.Add(fee)
	return order
}

func resolveCustomer(actor Actor, requested uuid.UUID) (uuid.UUID, error) {
	switch actor.Role {
	case enums.ActorRoleCustomer:
		if requested != uuid.Nil && requested != actor.UserID {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "customers may only order for themselves")
		}
		return actor.UserID, nil
	case enums.ActorRoleAdmin:
		if requested == uuid.Nil {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
		}
		return requested, nil
	default:
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, string(actor.Role)+" may not place orders")
	}
}

func (s *service) AdvanceFulfillment(ctx context.Context, input TransitionInput) (*TransitionResult, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment status")
	}
	if input.Status.ReleasesStock() {
		reason := defaultCloseReason(input.Status)
		if input.Reason != nil {
			reason = *input.Reason
		}
		closed, err := s.close(ctx, closeRequest{
			actor:   input.Actor,
			orderID: input.OrderID,
			target:  input.Status,
			reason:  reason,
			comment: input.Comment,
			authorize: func(order *models.Order) error {
				if err := authorizeFulfillment(input.Actor, order, input.Status); err != nil {
					return err
				}
				if reason.IsSystemOnly() && input.Actor.Role != enums.ActorRoleSystem {
					return pkgerrors.New(pkgerrors.CodeForbidden, "reason "+string(reason)+" is reserved for the system")
				}
				return nil
			},
		})
		if err != nil {
			return nil, err
		}
		return &TransitionResult{Order: closed.Order, Rejection: closed.Rejection, Changed: closed.changed}, nil
	}

	var (
		order  *models.Order
		result = &TransitionResult{}
		from   enums.FulfillmentStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := s.lock(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		order = locked
		if err := authorizeFulfillment(input.Actor, order, input.Status); err != nil {
			return err
		}
		if order.FulfillmentStatus == input.Status {
			return nil
		}
		if rejection := lifecycle.CheckFulfillment(stateOf(order), input.Status); rejection != nil {
			result.Rejection = rejection
			return nil
		}

		now := s.now().UTC()
		from = order.FulfillmentStatus
		updates := map[string]any{
			"fulfillment_status": input.Status,
			"updated_at":         now,
		}
		if input.Status == enums.FulfillmentStatusCompleted {
			updates["completed_at"] = now
			order.CompletedAt = &now
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fulfillment status")
		}
		order.FulfillmentStatus = input.Status
		order.UpdatedAt = now
		result.Changed = true

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderFulfillmentChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			Data: payloads.OrderStatusChangedEvent{
				OrderID: order.ID,
				Field:   enums.NotificationFieldFulfillment,
				From:    string(from),
				To:      string(input.Status),
				Actor:   input.Actor.Role,
			},
		})
	})
	if err != nil {
		return nil, asDependency(err, "advance fulfillment")
	}

	result.Order = NewOrderView(order)
	if result.Rejection != nil {
		s.logRejection(ctx, order, input.Actor, result.Rejection)
		return result, nil
	}
	if result.Changed {
		s.applied(ctx, order, input.Actor, enums.NotificationFieldFulfillment, string(from), string(input.Status))
		s.notify(ctx, order, notifications.Change{OldFulfillment: from, NewFulfillment: input.Status})
	}
	return result, nil
}

func (s *service) AdvancePayment(ctx context.Context, input PaymentInput) (*TransitionResult, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
	}

	var (
		order  *models.Order
		result = &TransitionResult{}
		from   enums.PaymentStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := s.lock(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		order = locked
		if order.PaymentStatus == input.Status {
			if err := authorizeView(input.Actor, order); err != nil {
				return err
			}
			return nil
		}
		if err := authorizePayment(input.Actor, order, input.Status); err != nil {
			return err
		}
		if rejection := lifecycle.CheckPayment(stateOf(order), input.Status); rejection != nil {
			result.Rejection = rejection
			return nil
		}

		now := s.now().UTC()
		from = order.PaymentStatus
		if err := repo.Update(ctx, order.ID, map[string]any{
			"payment_status": input.Status,
			"updated_at":     now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
		}
		order.PaymentStatus = input.Status
		order.UpdatedAt = now
		result.Changed = true

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaymentChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			Data: payloads.OrderStatusChangedEvent{
				OrderID: order.ID,
				Field:   enums.NotificationFieldPayment,
				From:    string(from),
				To:      string(input.Status),
				Actor:   input.Actor.Role,
			},
		})
	})
	if err != nil {
		return nil, asDependency(err, "advance payment")
	}

	result.Order = NewOrderView(order)
	if result.Rejection != nil {
		s.logRejection(ctx, order, input.Actor, result.Rejection)
		return result, nil
	}
	if result.Changed {
		s.applied(ctx, order, input.Actor, enums.NotificationFieldPayment, string(from), string(input.Status))
		s.notify(ctx, order, notifications.Change{OldPayment: from, NewPayment: input.Status})
	}
	return result, nil
}

// Cancel closes a pending order and returns its stock. Cancelling an order that is already
// terminal succeeds without side effects; any other non-pending order is refused.
func (s *service) Cancel(ctx context.Context, input CancelInput) (*CancelResult, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cancel reason")
	}
	closed, err := s.close(ctx, closeRequest{
		actor:   input.Actor,
		orderID: input.OrderID,
		target:  enums.FulfillmentStatusCancelled,
		reason:  input.Reason,
		comment: input.Comment,
		authorize: func(order *models.Order) error {
			return authorizeCancel(input.Actor, order, input.Reason)
		},
		anyTerminal: true,
	})
	if err != nil {
		return nil, err
	}
	return &closed.CancelResult, nil
}

type closeRequest struct {
	actor     Actor
	orderID   uuid.UUID
	target    enums.FulfillmentStatus
	reason    enums.CancelReason
	comment   string
	authorize func(order *models.Order) error

	// anyTerminal treats every terminal order as already closed instead of only the target status.
	anyTerminal bool
}

type closeOutcome struct {
	CancelResult
	changed bool
}

// close moves an order into cancelled or rejected, stamps the cancellation fields and
// reclaims every line item that still holds stock, all in one transaction.
func (s *service) close(ctx context.Context, req closeRequest) (*closeOutcome, error) {
	if !req.reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cancel reason")
	}
	var (
		order     *models.Order
		outcome   = &closeOutcome{}
		from      enums.FulfillmentStatus
		reclaimed reservation.ReclaimResult
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := s.lock(ctx, repo, req.orderID)
		if err != nil {
			return err
		}
		order = locked
		if err := req.authorize(order); err != nil {
			return err
		}
		if order.FulfillmentStatus.IsTerminal() && (req.anyTerminal || order.FulfillmentStatus == req.target) {
			outcome.AlreadyTerminal = true
			return nil
		}
		if rejection := lifecycle.CheckFulfillment(stateOf(order), req.target); rejection != nil {
			outcome.Rejection = rejection
			return nil
		}

		now := s.now().UTC()
		from = order.FulfillmentStatus
		reason := req.reason
		role := req.actor.Role
		updates := map[string]any{
			"fulfillment_status": req.target,
			"cancel_reason":      reason,
			"cancelled_by":       role,
			"cancelled_at":       now,
			"updated_at":         now,
		}
		var comment *string
		if trimmed := strings.TrimSpace(req.comment); trimmed != "" {
			comment = &trimmed
			updates["cancel_comment"] = trimmed
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close order")
		}
		order.FulfillmentStatus = req.target
		order.CancelReason = &reason
		order.CancelledBy = &role
		order.CancelledAt = &now
		order.CancelComment = comment
		order.UpdatedAt = now
		outcome.changed = true

		reclaimed, err = s.engine.Reclaim(ctx, tx, reclaimItems(order))
		if err != nil {
			return err
		}
		markReclaimed(order, reclaimed, now)
		outcome.ReclaimedQty = reclaimed.Quantity()

		eventType := enums.EventOrderCanceled
		if reason == enums.CancelReasonExpired {
			eventType = enums.EventOrderExpired
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(req.actor),
			OccurredAt:    now,
			Data: payloads.OrderCanceledEvent{
				OrderID:      order.ID,
				Status:       req.target,
				Reason:       reason,
				Comment:      strings.TrimSpace(req.comment),
				Actor:        role,
				ReclaimedQty: outcome.ReclaimedQty,
				CanceledAt:   now,
			},
		}); err != nil {
			return err
		}
		for _, item := range reclaimed.Reclaimed {
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventStockReclaimed,
				AggregateType: enums.AggregateOffer,
				AggregateID:   item.OfferID,
				Actor:         actorRef(req.actor),
				OccurredAt:    now,
				Data: payloads.StockReclaimedEvent{
					OfferID:  item.OfferID,
					OrderID:  order.ID,
					Quantity: item.Quantity,
				},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, asDependency(err, "close order")
	}

	outcome.Order = NewOrderView(order)
	if outcome.Rejection != nil {
		s.logRejection(ctx, order, req.actor, outcome.Rejection)
		return outcome, nil
	}
	if outcome.changed {
		s.applied(ctx, order, req.actor, enums.NotificationFieldFulfillment, string(from), string(req.target))
		s.notify(ctx, order, notifications.Change{OldFulfillment: from, NewFulfillment: req.target})
	}
	return outcome, nil
}

func defaultCloseReason(target enums.FulfillmentStatus) enums.CancelReason {
	if target == enums.FulfillmentStatusRejected {
		return enums.CancelReasonCantFulfill
	}
	return enums.CancelReasonOther
}

func reclaimItems(order *models.Order) []reservation.ReclaimItem {
	items := make([]reservation.ReclaimItem, 0, len(order.Items))
	for _, item := range order.Items {
		if item.ReclaimedAt != nil {
			continue
		}
		items = append(items, reservation.ReclaimItem{
			LineItemID: item.ID,
			OfferID:    item.OfferID,
			Quantity:   item.Quantity,
		})
	}
	return items
}

func markReclaimed(order *models.Order, result reservation.ReclaimResult, at time.Time) {
	done := make(map[uuid.UUID]struct{}, len(result.Reclaimed))
	for _, item := range result.Reclaimed {
		done[item.LineItemID] = struct{}{}
	}
	for i := range order.Items {
		if _, ok := done[order.Items[i].ID]; ok {
			stamp := at
			order.Items[i].ReclaimedAt = &stamp
		}
	}
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderView, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := authorizeView(actor, order); err != nil {
		return nil, err
	}
	return NewOrderView(order), nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	query := ListQuery{
		FulfillmentStatus: input.FulfillmentStatus,
		PaymentStatus:     input.PaymentStatus,
		Limit:             input.Limit,
	}
	switch input.Actor.Role {
	case enums.ActorRoleCustomer:
		customerID := input.Actor.UserID
		query.CustomerID = &customerID
	case enums.ActorRoleMerchant:
		storeID := *input.Actor.StoreID
		query.StoreID = &storeID
	}
	if input.FulfillmentStatus != nil && !input.FulfillmentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment status filter")
	}
	if input.PaymentStatus != nil && !input.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status filter")
	}
	if input.Cursor != "" {
		cursor, err := pagination.ParseCursor(input.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	result := &ListResult{Orders: make([]OrderView, 0, len(rows))}
	for i := range rows {
		result.Orders = append(result.Orders, *NewOrderView(&rows[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) lock(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.LockByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock order")
	}
	return order, nil
}

func (s *service) applied(ctx context.Context, order *models.Order, actor Actor, field enums.NotificationField, from, to string) {
	s.metrics.IncTransition(string(field), to)
	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, order.ID.String()), map[string]any{
		"field":      string(field),
		"from":       from,
		"to":         to,
		"actor_role": string(actor.Role),
	})
	s.logg.Info(logCtx, "order transition applied")
}

func (s *service) logRejection(ctx context.Context, order *models.Order, actor Actor, rejection *lifecycle.Rejection) {
	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, order.ID.String()), map[string]any{
		"field":      string(rejection.Field),
		"from":       rejection.From,
		"to":         rejection.To,
		"code":       string(rejection.Code),
		"actor_role": string(actor.Role),
	})
	s.logg.Info(logCtx, "order transition rejected")
}

func (s *service) notify(ctx context.Context, order *models.Order, change notifications.Change) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, order, change)
}

func stateOf(order *models.Order) lifecycle.State {
	return lifecycle.State{
		FulfillmentType: order.FulfillmentType,
		Fulfillment:     order.FulfillmentStatus,
		PaymentMethod:   order.PaymentMethod,
		Payment:         order.PaymentStatus,
	}
}

func actorRef(actor Actor) *outbox.ActorRef {
	return outbox.NewActorRef(actor.UserID, actor.StoreID, actor.Role)
}

// asDependency keeps coded errors as they are and wraps anything else as a persistence failure.
func asDependency(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
