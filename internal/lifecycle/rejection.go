// Package lifecycle holds the fulfillment and payment transition tables and the single gate
// between them. Everything here is pure; persistence belongs to the order service.
package lifecycle

import (
	"fmt"

	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

// RejectionCode classifies why a transition was refused.
type RejectionCode string

const (
	RejectionInvalidTransition RejectionCode = "invalid_transition"
	RejectionTerminal          RejectionCode = "terminal_state"
	RejectionPaymentGate       RejectionCode = "payment_not_settled"
	RejectionOrderClosed       RejectionCode = "order_closed"
	RejectionMethodMismatch    RejectionCode = "payment_method_mismatch"
	RejectionUnknownStatus     RejectionCode = "unknown_status"
)

// Rejection is the InvalidTransition outcome. It is returned as a value, never as an error.
type Rejection struct {
	Field   enums.NotificationField `json:"field"`
	From    string                  `json:"from"`
	To      string                  `json:"to"`
	Code    RejectionCode           `json:"code"`
	Message string                  `json:"message"`
}

func (r *Rejection) Error() string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%s %s -> %s rejected: %s", r.Field, r.From, r.To, r.Message)
}

func reject(field enums.NotificationField, from, to string, code RejectionCode, message string) *Rejection {
	return &Rejection{Field: field, From: from, To: to, Code: code, Message: message}
}
