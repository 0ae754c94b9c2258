package notifications

import (
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

type templateKey struct {
	audience enums.NotificationAudience
	field    enums.NotificationField
	status   string
}

// templates is the single place that decides who hears about which status change.
// A missing key means the audience is not notified.
var templates = map[templateKey]string{
	{enums.NotificationAudienceCustomer, enums.NotificationFieldFulfillment, string(enums.FulfillmentStatusPending)}:    "order.placed",
	{enums.NotificationAudienceMerchant, enums.NotificationFieldFulfillment, string(enums.FulfillmentStatusPending)}:    "order.new",
	{enums.NotificationAudienceCustomer, enums.NotificationFieldFulfillment, string(enums.FulfillmentStatusPreparing)}:  "order.preparing",
	{enums.NotificationAudienceCustomer, enums.NotificationFieldFulfillment, string(enums.FulfillmentStatusReady)}:      "order.ready",
	{enums.NotificationAudienceCustomer, enums.NotificationFieldFulfillment, string(enums.FulfillmentStatusDelivering)}: "order.on_the_way",
	{enums.NotificationAudienceCustomer, enums.NotificationFieldFulfillment, string(enums.FulfillmentStatusCompleted)}:  "order.completed",
	{enums.NotificationAudienceMerchant, enums.NotificationFieldFulfillment, string(enums.FulfillmentStatusCompleted)}:  "order.completed_merchant",
	{enums.NotificationAudienceCustomer, enums.NotificationFieldFulfillment, string(enums.FulfillmentStatusRejected)}:   "order.rejected",
	{enums.NotificationAudienceCustomer, enums.NotificationFieldFulfillment, string(enums.FulfillmentStatusCancelled)}:  "order.cancelled",
	{enums.NotificationAudienceMerchant, enums.NotificationFieldFulfillment, string(enums.FulfillmentStatusCancelled)}:  "order.cancelled_merchant",

	{enums.NotificationAudienceCustomer, enums.NotificationFieldPayment, string(enums.PaymentStatusAwaitingPayment)}: "payment.awaiting_payment",
	{enums.NotificationAudienceCustomer, enums.NotificationFieldPayment, string(enums.PaymentStatusAwaitingProof)}:   "payment.awaiting_proof",
	{enums.NotificationAudienceCustomer, enums.NotificationFieldPayment, string(enums.PaymentStatusProofSubmitted)}:  "payment.proof_received",
	{enums.NotificationAudienceMerchant, enums.NotificationFieldPayment, string(enums.PaymentStatusProofSubmitted)}:  "payment.proof_pending_review",
	{enums.NotificationAudienceCustomer, enums.NotificationFieldPayment, string(enums.PaymentStatusConfirmed)}:       "payment.confirmed",
	{enums.NotificationAudienceMerchant, enums.NotificationFieldPayment, string(enums.PaymentStatusConfirmed)}:       "payment.confirmed_merchant",
	{enums.NotificationAudienceCustomer, enums.NotificationFieldPayment, string(enums.PaymentStatusRejected)}:        "payment.rejected",
	{enums.NotificationAudienceMerchant, enums.NotificationFieldPayment, string(enums.PaymentStatusRejected)}:        "payment.rejected_merchant",
}

// TemplateFor returns the template for an audience learning that field moved to status.
func TemplateFor(audience enums.NotificationAudience, field enums.NotificationField, status string) (string, bool) {
	name, ok := templates[templateKey{audience: audience, field: field, status: status}]
	return name, ok
}
