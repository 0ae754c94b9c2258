package notifications

import (
	"context"
	"errors"

	"go.uber.org/multierr"

	"github.com/angelmondragon/surplusmarket-backend/pkg/db/models"
	"github.com/angelmondragon/surplusmarket-backend/pkg/logger"
	"github.com/angelmondragon/surplusmarket-backend/pkg/metrics"
)

const dedupScope = "notification"

// Guard remembers which payload keys were already delivered.
type Guard interface {
	CheckAndMark(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
}

// Report summarises one dispatch.
type Report struct {
	Sent       int
	Duplicates int
	Failed     int
}

// Dispatcher turns committed order changes into recipient-specific payloads and delivers them.
// Delivery failures never reach the caller; the order change has already been committed.
type Dispatcher struct {
	senders []Sender
	guard   Guard
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
}

type DispatcherParams struct {
	Senders []Sender
	Guard   Guard
	Metrics *metrics.OrderMetrics
	Logger  *logger.Logger
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if len(params.Senders) == 0 {
		return nil, errors.New("at least one sender required")
	}
	for _, sender := range params.Senders {
		if sender == nil {
			return nil, errors.New("nil sender")
		}
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &Dispatcher{
		senders: params.Senders,
		guard:   params.Guard,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// Notify delivers every payload resolved from change. A payload whose dedup key was already
// marked is skipped; a payload that fails on any sender releases its key so a retry can deliver it.
func (d *Dispatcher) Notify(ctx context.Context, order *models.Order, change Change) Report {
	var report Report
	if order == nil {
		return report
	}
	ctx = d.logg.WithOrderID(ctx, order.ID.String())

	for _, payload := range Resolve(order, change) {
		pctx := d.logg.WithFields(ctx, map[string]any{
			"template":     payload.Template,
			"recipient_id": payload.RecipientID.String(),
		})

		if d.guard != nil {
			seen, err := d.guard.CheckAndMark(pctx, dedupScope, payload.DedupKey)
			if err != nil {
				d.logg.Warn(pctx, "notification dedup check failed; sending anyway")
			} else if seen {
				report.Duplicates++
				d.metrics.IncNotification("duplicate")
				continue
			}
		}

		if err := d.deliver(pctx, payload); err != nil {
			d.logg.Error(pctx, "notification delivery failed", err)
			if d.guard != nil {
				if relErr := d.guard.Release(pctx, dedupScope, payload.DedupKey); relErr != nil {
					d.logg.Error(pctx, "release notification dedup key", relErr)
				}
			}
			report.Failed++
			d.metrics.IncNotification("failed")
			continue
		}

		report.Sent++
		d.metrics.IncNotification("sent")
	}

	if report.Sent+report.Duplicates+report.Failed > 0 {
		d.logg.Info(d.logg.WithFields(ctx, map[string]any{
			"sent":       report.Sent,
			"duplicates": report.Duplicates,
			"failed":     report.Failed,
		}), "order notifications dispatched")
	}
	return report
}

func (d *Dispatcher) deliver(ctx context.Context, payload Payload) error {
	var err error
	for _, sender := range d.senders {
		err = multierr.Append(err, sender.Send(ctx, payload))
	}
	return err
}
