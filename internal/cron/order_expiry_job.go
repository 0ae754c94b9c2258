package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/surplusmarket-backend/internal/orders"
	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
	"github.com/angelmondragon/surplusmarket-backend/pkg/logger"
	"github.com/angelmondragon/surplusmarket-backend/pkg/metrics"
)

const (
	orderExpiryJobName     = "order-expiry"
	defaultExpiryBatchSize = 200
)

type orderCanceller interface {
	Cancel(ctx context.Context, input orders.CancelInput) (*orders.CancelResult, error)
}

type expirableOrderFinder interface {
	FindExpirable(ctx context.Context, query orders.ExpiryQuery) ([]uuid.UUID, error)
}

// OrderExpiryJobParams configure the sweep that cancels abandoned orders.
type OrderExpiryJobParams struct {
	Logger     *logger.Logger
	Orders     orderCanceller
	Finder     expirableOrderFinder
	Metrics    *metrics.CronJobMetrics
	PendingTTL time.Duration
	PaymentTTL time.Duration
	BatchSize  int
}

// NewOrderExpiryJob builds the job that cancels pending orders nobody acted on and
// orders whose payment never arrived.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if params.Finder == nil {
		return nil, fmt.Errorf("expirable order finder required")
	}
	if params.PendingTTL <= 0 || params.PaymentTTL <= 0 {
		return nil, fmt.Errorf("pending and payment ttl must be positive")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultExpiryBatchSize
	}
	return &orderExpiryJob{
		logg:       params.Logger,
		orders:     params.Orders,
		finder:     params.Finder,
		metrics:    params.Metrics,
		pendingTTL: params.PendingTTL,
		paymentTTL: params.PaymentTTL,
		batch:      batch,
		now:        time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg       *logger.Logger
	orders     orderCanceller
	finder     expirableOrderFinder
	metrics    *metrics.CronJobMetrics
	pendingTTL time.Duration
	paymentTTL time.Duration
	batch      int
	now        func() time.Time
}

func (j *orderExpiryJob) Name() string { return orderExpiryJobName }

// Run cancels one batch per cycle. Orders that fail stay pending and are retried next cycle.
func (j *orderExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	ids, err := j.finder.FindExpirable(ctx, orders.ExpiryQuery{
		PendingBefore: now.Add(-j.pendingTTL),
		PaymentBefore: now.Add(-j.paymentTTL),
		Limit:         j.batch,
	})
	if err != nil {
		return fmt.Errorf("query expirable orders: %w", err)
	}

	var (
		errs                     error
		expired, skipped, failed int
		reclaimed                int
	)
	for _, id := range ids {
		result, err := j.orders.Cancel(ctx, orders.CancelInput{
			Actor:   orders.SystemActor(),
			OrderID: id,
			Reason:  enums.CancelReasonExpired,
		})
		if err != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", id, err))
			continue
		}
		if result.AlreadyTerminal || result.Rejection != nil {
			skipped++
			continue
		}
		expired++
		reclaimed += result.ReclaimedQty
	}

	j.metrics.AddProcessed(orderExpiryJobName, "expired", expired)
	j.metrics.AddProcessed(orderExpiryJobName, "skipped", skipped)
	j.metrics.AddProcessed(orderExpiryJobName, "failed", failed)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates":    len(ids),
		"expired":       expired,
		"skipped":       skipped,
		"failed":        failed,
		"reclaimed_qty": reclaimed,
	})
	j.logg.Info(logCtx, "order expiry sweep complete")
	return errs
}
