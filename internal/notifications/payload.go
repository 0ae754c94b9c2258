package notifications

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

// Change describes what one façade operation did to an order. Empty old values mean the
// order was just created.
type Change struct {
	OldFulfillment enums.FulfillmentStatus
	NewFulfillment enums.FulfillmentStatus
	OldPayment     enums.PaymentStatus
	NewPayment     enums.PaymentStatus
}

// Payload is the structured message handed to a delivery transport. It carries no markup.
type Payload struct {
	Template    string                     `json:"template"`
	Audience    enums.NotificationAudience `json:"audience"`
	RecipientID uuid.UUID                  `json:"recipient_id"`
	OrderID     uuid.UUID                  `json:"order_id"`
	Field       enums.NotificationField    `json:"field"`
	From        string                     `json:"from,omitempty"`
	To          string                     `json:"to"`
	Params      map[string]string          `json:"params"`
	DedupKey    string                     `json:"dedup_key"`
}

// Resolve expands a change into one payload per interested recipient: the customer, and
// each distinct store in the order's line items.
func Resolve(order *models.Order, change Change) []Payload {
	if order == nil {
		return nil
	}
	var payloads []Payload
	if change.NewFulfillment != "" && change.OldFulfillment != change.NewFulfillment {
		payloads = append(payloads, resolveField(order, enums.NotificationFieldFulfillment, string(change.OldFulfillment), string(change.NewFulfillment))...)
	}
	if change.NewPayment != "" && change.OldPayment != change.NewPayment {
		payloads = append(payloads, resolveField(order, enums.NotificationFieldPayment, string(change.OldPayment), string(change.NewPayment))...)
	}
	return payloads
}

func resolveField(order *models.Order, field enums.NotificationField, from, to string) []Payload {
	var payloads []Payload
	if name, ok := TemplateFor(enums.NotificationAudienceCustomer, field, to); ok {
		payloads = append(payloads, newPayload(order, name, enums.NotificationAudienceCustomer, order.CustomerID, field, from, to))
	}
	if name, ok := TemplateFor(enums.NotificationAudienceMerchant, field, to); ok {
		for _, storeID := range order.StoreIDs() {
			payloads = append(payloads, newPayload(order, name, enums.NotificationAudienceMerchant, storeID, field, from, to))
		}
	}
	return payloads
}

func newPayload(order *models.Order, template string, audience enums.NotificationAudience, recipient uuid.UUID, field enums.NotificationField, from, to string) Payload {
	return Payload{
		Template:    template,
		Audience:    audience,
		RecipientID: recipient,
		OrderID:     order.ID,
		Field:       field,
		From:        from,
		To:          to,
		Params:      paramsFor(order, audience, recipient),
		DedupKey:    fmt.Sprintf("%s:%s:%s:%s:%s:%s", order.ID, field, from, to, audience, recipient),
	}
}

func paramsFor(order *models.Order, audience enums.NotificationAudience, recipient uuid.UUID) map[string]string {
	params := map[string]string{
		"order_id":           order.ID.String(),
		"fulfillment_type":   string(order.FulfillmentType),
		"fulfillment_status": string(order.FulfillmentStatus),
		"payment_method":     string(order.PaymentMethod),
		"payment_status":     string(order.PaymentStatus),
	}
	if order.CancelReason != nil {
		params["cancel_reason"] = string(*order.CancelReason)
	}
	switch audience {
	case enums.NotificationAudienceCustomer:
		params["total_price"] = order.TotalPrice.StringFixed(2)
		if order.PickupCode != nil {
			params["pickup_code"] = *order.PickupCode
		}
	case enums.NotificationAudienceMerchant:
		qty := 0
		for _, item := range order.Items {
			if item.StoreID == recipient {
				qty += item.Quantity
			}
		}
		params["item_count"] = fmt.Sprintf("%d", qty)
		if order.DeliveryAddress != nil {
			params["delivery_address"] = *order.DeliveryAddress
		}
	}
	return params
}
