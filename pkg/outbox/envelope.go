package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

// CurrentVersion is stamped on envelopes that do not ask for a specific schema version.
const CurrentVersion = 1

// ErrEmptyData marks an envelope whose data is missing or JSON null.
var ErrEmptyData = errors.New("envelope data is empty")

// ActorRef identifies who caused the event: a customer, a merchant store, an admin or the system sweep.
type ActorRef struct {
	UserID  uuid.UUID       `json:"userId"`
	StoreID *uuid.UUID      `json:"storeId,omitempty"`
	Role    enums.ActorRole `json:"role,omitempty"`
}

func NewActorRef(userID uuid.UUID, storeID *uuid.UUID, role enums.ActorRole) *ActorRef {
	return &ActorRef{UserID: userID, StoreID: storeID, Role: role}
}

// PayloadEnvelope is the body stored in outbox_events and relayed verbatim to Pub/Sub.
// EventType and AggregateID are repeated so subscribers can route without the attributes.
type PayloadEnvelope struct {
	Version     int                   `json:"version"`
	EventID     string                `json:"eventId"`
	EventType   enums.OutboxEventType `json:"eventType,omitempty"`
	AggregateID string                `json:"aggregateId,omitempty"`
	OccurredAt  time.Time             `json:"occurredAt"`
	Actor       *ActorRef             `json:"actor,omitempty"`
	Data        json.RawMessage       `json:"data"`
}

// DecodeEnvelope parses a stored payload and rejects envelopes without an id or data.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var envelope PayloadEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return PayloadEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.EventID == "" {
		return PayloadEnvelope{}, errors.New("envelope missing eventId")
	}
	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return PayloadEnvelope{}, ErrEmptyData
	}
	return envelope, nil
}
