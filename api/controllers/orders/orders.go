package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/surplusmarket-backend/api/middleware"
	"github.com/angelmondragon/surplusmarket-backend/api/responses"
	"github.com/angelmondragon/surplusmarket-backend/api/validators"
	"github.com/angelmondragon/surplusmarket-backend/internal/lifecycle"
	internalorders "github.com/angelmondragon/surplusmarket-backend/internal/orders"
	"github.com/angelmondragon/surplusmarket-backend/internal/reservation"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/surplusmarket-backend/pkg/errors"
	"github.com/angelmondragon/surplusmarket-backend/pkg/logger"
	"github.com/angelmondragon/surplusmarket-backend/pkg/pagination"
)

const maxCommentLength = 500

type lineItemRequest struct {
	OfferID  string `json:"offer_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"min=1,max=1000"`
}

type createOrderRequest struct {
	CustomerID      string            `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	Items           []lineItemRequest `json:"items" validate:"required,min=1,dive"`
	FulfillmentType string            `json:"fulfillment_type" validate:"required,oneof=pickup delivery"`
	PaymentMethod   string            `json:"payment_method" validate:"required,oneof=cash card click payme"`
	DeliveryAddress string            `json:"delivery_address,omitempty" validate:"max=500"`
	DeliveryFee     *decimal.Decimal  `json:"delivery_fee,omitempty"`
}

type statusRequest struct {
	Field   string  `json:"field" validate:"required,oneof=fulfillment payment"`
	Status  string  `json:"status" validate:"required"`
	Reason  *string `json:"reason,omitempty"`
	Comment string  `json:"comment,omitempty" validate:"max=500"`
}

type cancelRequest struct {
	ReasonCode string `json:"reason_code" validate:"required"`
	Comment    string `json:"comment,omitempty" validate:"max=500"`
}

type transitionResponse struct {
	Order   *internalorders.OrderView `json:"order"`
	Changed bool                      `json:"changed"`
}

type cancelResponse struct {
	Order           *internalorders.OrderView `json:"order"`
	AlreadyTerminal bool                      `json:"already_terminal"`
	ReclaimedQty    int                       `json:"reclaimed_qty"`
}

// Create reserves stock and opens an order. A partial failure reserves nothing and is
// reported per offer.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.CreateInput{
			Actor:           actor,
			Items:           make([]internalorders.LineItemInput, 0, len(req.Items)),
			FulfillmentType: enums.FulfillmentType(req.FulfillmentType),
			PaymentMethod:   enums.PaymentMethod(req.PaymentMethod),
			DeliveryAddress: validators.SanitizeString(req.DeliveryAddress, 0),
			DeliveryFee:     req.DeliveryFee,
		}
		if req.CustomerID != "" {
			input.CustomerID = uuid.MustParse(req.CustomerID)
		}
		for _, item := range req.Items {
			input.Items = append(input.Items, internalorders.LineItemInput{
				OfferID:  uuid.MustParse(item.OfferID),
				Quantity: item.Quantity,
			})
		}

		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.Failure != nil {
			responses.WriteError(r.Context(), logg, w, reservationError(result.Failure))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result.Order)
	}
}

// Detail returns one order the caller is allowed to see.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(chi.URLParam(r, "orderId"), "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// List pages through the caller's orders: a customer sees their own, a merchant the ones
// touching their store and an admin everything.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := internalorders.ListInput{
			Actor:  actor,
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("fulfillment_status")); raw != "" {
			status, err := enums.ParseFulfillmentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment_status"))
				return
			}
			input.FulfillmentStatus = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
			status, err := enums.ParsePaymentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_status"))
				return
			}
			input.PaymentStatus = &status
		}

		list, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// UpdateStatus advances either the fulfillment or the payment track of an order.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(chi.URLParam(r, "orderId"), "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req statusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var result *internalorders.TransitionResult
		switch enums.NotificationField(req.Field) {
		case enums.NotificationFieldFulfillment:
			status, err := enums.ParseFulfillmentStatus(req.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, fieldError("status", err))
				return
			}
			input := internalorders.TransitionInput{
				Actor:   actor,
				OrderID: orderID,
				Status:  status,
				Comment: validators.SanitizeString(req.Comment, maxCommentLength),
			}
			if req.Reason != nil {
				reason, err := enums.ParseCancelReason(*req.Reason)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, fieldError("reason", err))
					return
				}
				input.Reason = &reason
			}
			result, err = svc.AdvanceFulfillment(r.Context(), input)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		default:
			status, err := enums.ParsePaymentStatus(req.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, fieldError("status", err))
				return
			}
			result, err = svc.AdvancePayment(r.Context(), internalorders.PaymentInput{
				Actor:   actor,
				OrderID: orderID,
				Status:  status,
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if result.Rejection != nil {
			responses.WriteError(r.Context(), logg, w, rejectionError(result.Rejection))
			return
		}
		responses.WriteSuccess(w, transitionResponse{Order: result.Order, Changed: result.Changed})
	}
}

// Cancel closes a pending order and returns its stock. Cancelling a closed order succeeds
// without side effects.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(chi.URLParam(r, "orderId"), "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cancelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reason, err := enums.ParseCancelReason(req.ReasonCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, fieldError("reason_code", err))
			return
		}

		result, err := svc.Cancel(r.Context(), internalorders.CancelInput{
			Actor:   actor,
			OrderID: orderID,
			Reason:  reason,
			Comment: validators.SanitizeString(req.Comment, maxCommentLength),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.Rejection != nil {
			responses.WriteError(r.Context(), logg, w, rejectionError(result.Rejection))
			return
		}
		responses.WriteSuccess(w, cancelResponse{
			Order:           result.Order,
			AlreadyTerminal: result.AlreadyTerminal,
			ReclaimedQty:    result.ReclaimedQty,
		})
	}
}

func actorFromRequest(r *http.Request) (internalorders.Actor, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	role := middleware.RoleFromContext(r.Context())
	if !role.IsValid() || role == enums.ActorRoleSystem {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "unsupported actor role")
	}
	return internalorders.Actor{
		UserID:  userID,
		StoreID: middleware.StoreIDFromContext(r.Context()),
		Role:    role,
	}, nil
}

func reservationError(failure *reservation.Failure) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "reservation failed").WithDetails(failure)
}

func rejectionError(rejection *lifecycle.Rejection) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, rejection.Message).WithDetails(rejection)
}

func fieldError(field string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed").WithDetails(map[string]string{field: err.Error()})
}
