package enums

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder OutboxAggregateType = "order"
	AggregateOffer OutboxAggregateType = "offer"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateOffer,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	return isOneOf(validAggregateTypes, a)
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	return parseOneOf("aggregate type", validAggregateTypes, value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated            OutboxEventType = "order_created"
	EventOrderFulfillmentChanged OutboxEventType = "order_fulfillment_changed"
	EventOrderPaymentChanged     OutboxEventType = "order_payment_changed"
	EventOrderCanceled           OutboxEventType = "order_canceled"
	EventOrderExpired            OutboxEventType = "order_expired"
	EventStockReclaimed          OutboxEventType = "stock_reclaimed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderFulfillmentChanged,
	EventOrderPaymentChanged,
	EventOrderCanceled,
	EventOrderExpired,
	EventStockReclaimed,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	return isOneOf(validOutboxEventTypes, e)
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	return parseOneOf("event type", validOutboxEventTypes, value)
}

type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)
