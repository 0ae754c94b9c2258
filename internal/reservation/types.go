package reservation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request asks for Quantity units of one offer.
type Request struct {
	OfferID  uuid.UUID
	Quantity int
}

// Reason explains why a single offer could not be reserved.
type Reason string

const (
	ReasonOfferNotFound     Reason = "offer_not_found"
	ReasonOfferInactive     Reason = "offer_inactive"
	ReasonInsufficientStock Reason = "insufficient_stock"
)

// ItemFailure is the per-offer entry of a Failure.
type ItemFailure struct {
	OfferID   uuid.UUID `json:"offer_id"`
	Reason    Reason    `json:"reason"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// Failure lists every offer that blocked a reservation. Nothing is reserved when it is set.
type Failure struct {
	Items []ItemFailure `json:"items"`
}

func (f *Failure) Error() string {
	if f == nil || len(f.Items) == 0 {
		return "reservation failed"
	}
	parts := make([]string, 0, len(f.Items))
	for _, item := range f.Items {
		parts = append(parts, fmt.Sprintf("%s: %s (requested %d, available %d)", item.OfferID, item.Reason, item.Requested, item.Available))
	}
	return "reservation failed: " + strings.Join(parts, "; ")
}

// PrimaryReason returns the reason of the first failed item.
func (f *Failure) PrimaryReason() Reason {
	if f == nil || len(f.Items) == 0 {
		return ""
	}
	return f.Items[0].Reason
}

// Reserved is the snapshot of an offer taken while its row was locked.
type Reserved struct {
	OfferID   uuid.UUID
	StoreID   uuid.UUID
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal is UnitPrice * Quantity.
func (r Reserved) LineTotal() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
}

// Result is either a full set of reservations or a Failure.
type Result struct {
	Reserved []Reserved
	Failure  *Failure
}

// OK reports whether every request was reserved.
func (r *Result) OK() bool {
	return r != nil && r.Failure == nil
}

// ReclaimItem references a line item whose quantity should return to its offer.
type ReclaimItem struct {
	LineItemID uuid.UUID
	OfferID    uuid.UUID
	Quantity   int
}

// ReclaimResult reports what was actually returned; already reclaimed items are skipped.
type ReclaimResult struct {
	Reclaimed []ReclaimItem
	Skipped   int
}

// Quantity sums the reclaimed units.
func (r ReclaimResult) Quantity() int {
	total := 0
	for _, item := range r.Reclaimed {
		total += item.Quantity
	}
	return total
}
