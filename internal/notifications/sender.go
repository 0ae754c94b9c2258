package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/pubsub"
)

// Sender delivers one payload to one recipient over a single transport.
type Sender interface {
	Name() string
	Send(ctx context.Context, payload Payload) error
}

// InAppSender persists payloads so recipients can read them from their inbox.
type InAppSender struct {
	repo Repository
}

func NewInAppSender(repo Repository) (*InAppSender, error) {
	if repo == nil {
		return nil, errors.New("notifications repository required")
	}
	return &InAppSender{repo: repo}, nil
}

func (s *InAppSender) Name() string { return "in_app" }

// Send stores the payload. A row that already exists under the dedup key is treated as delivered.
func (s *InAppSender) Send(ctx context.Context, payload Payload) error {
	_, err := s.repo.Create(ctx, &models.Notification{
		RecipientID: payload.RecipientID,
		Audience:    payload.Audience,
		Template:    payload.Template,
		OrderID:     payload.OrderID,
		Params:      payload.Params,
		DedupKey:    payload.DedupKey,
	})
	if err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

// PubSubSender forwards payloads to the notification topic for push and messaging fan-out.
type PubSubSender struct {
	publisher pubsub.Publisher
}

func NewPubSubSender(publisher pubsub.Publisher) (*PubSubSender, error) {
	if publisher == nil {
		return nil, errors.New("notification publisher required")
	}
	return &PubSubSender{publisher: publisher}, nil
}

func (s *PubSubSender) Name() string { return "pubsub" }

func (s *PubSubSender) Send(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	result := s.publisher.Publish(ctx, &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"template":     payload.Template,
			"audience":     string(payload.Audience),
			"recipient_id": payload.RecipientID.String(),
			"order_id":     payload.OrderID.String(),
			"dedup_key":    payload.DedupKey,
		},
	})
	if result == nil {
		return errors.New("publish returned no result")
	}
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
