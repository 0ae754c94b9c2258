package registry

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/surplusmarket-backend/pkg/config"
	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
	"github.com/angelmondragon/surplusmarket-backend/pkg/outbox"
	"github.com/angelmondragon/surplusmarket-backend/pkg/outbox/payloads"
)

func envelopeFor(t *testing.T, data any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	out, err := json.Marshal(outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), Data: raw})
	require.NoError(t, err)
	return out
}

func TestResolveDecodesTypedPayload(t *testing.T) {
	reg, err := NewEventRegistry(config.PubSubConfig{DomainTopic: "domain"})
	require.NoError(t, err)

	orderID := uuid.New()
	event := models.OutboxEvent{
		EventType:     enums.EventOrderFulfillmentChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload:       envelopeFor(t, payloads.OrderStatusChangedEvent{OrderID: orderID, Field: enums.NotificationFieldFulfillment, From: "pending", To: "preparing"}),
	}
	resolved, err := reg.Resolve(event)
	require.NoError(t, err)
	assert.Equal(t, "domain", resolved.Descriptor.Topic)
	payload, ok := resolved.Payload.(*payloads.OrderStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, "preparing", payload.To)
}

func TestResolveRejectsBadRowsAsNonRetryable(t *testing.T) {
	reg, err := NewEventRegistry(config.PubSubConfig{DomainTopic: "domain"})
	require.NoError(t, err)

	cases := map[string]models.OutboxEvent{
		"aggregate mismatch": {EventType: enums.EventStockReclaimed, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: envelopeFor(t, map[string]int{"quantity": 1})},
		"missing aggregate":  {EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, Payload: envelopeFor(t, map[string]int{})},
		"null data":          {EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: envelopeFor(t, nil)},
		"garbage envelope":   {EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{`)},
		"type mismatch":      {EventType: enums.EventOrderCanceled, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{"version":1,"eventId":"e","eventType":"order_created","data":{}}`)},
	}
	for name, event := range cases {
		_, err := reg.Resolve(event)
		var nonRetry NonRetryableError
		if !errors.As(err, &nonRetry) {
			t.Fatalf("%s: expected non-retryable error, got %v", name, err)
		}
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{})
	require.Error(t, err)
}
