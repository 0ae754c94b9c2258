package pubsub

import (
	"context"
	"errors"

	pubsub "cloud.google.com/go/pubsub/v2"
)

// Message aliases the Pub/Sub message so callers need not import the SDK.
type Message = pubsub.Message

// Publisher is the narrow publishing surface the relay and notification sender depend on.
type Publisher interface {
	Publish(context.Context, *pubsub.Message) PublishResult
}

// PublishResult resolves to the server-assigned message id.
type PublishResult interface {
	Get(context.Context) (string, error)
}

// WrapPublisher adapts an SDK publisher. A nil publisher yields nil.
func WrapPublisher(p *pubsub.Publisher) Publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{Publisher: p}
}

type gcpPublisher struct {
	*pubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *pubsub.Message) PublishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*pubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}

// ResultOf returns a resolved PublishResult; fakes in tests use it.
func ResultOf(id string, err error) PublishResult {
	return staticResult{id: id, err: err}
}

type staticResult struct {
	id  string
	err error
}

func (r staticResult) Get(context.Context) (string, error) {
	return r.id, r.err
}
