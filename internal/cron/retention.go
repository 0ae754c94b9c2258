package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/surplusmarket-backend/pkg/logger"
	"github.com/angelmondragon/surplusmarket-backend/pkg/metrics"
)

const (
	notificationCleanupJobName = "notification-cleanup"
	notificationRetentionDays  = 30

	outboxRetentionJobName = "outbox-retention"
	outboxRetentionDays    = 30
	outboxMinAttempts      = 1
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// purgeFunc deletes rows older than cutoff inside tx and reports how many went.
type purgeFunc func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)

// purgeJob deletes everything older than a cutoff in a single transaction.
type purgeJob struct {
	name      string
	logg      *logger.Logger
	db        txRunner
	metrics   *metrics.CronJobMetrics
	retention int
	purge     purgeFunc
	fields    map[string]any
	now       func() time.Time
}

func newPurgeJob(name string, logg *logger.Logger, db txRunner, m *metrics.CronJobMetrics, retentionDays, fallbackDays int, purge purgeFunc) (*purgeJob, error) {
	if logg == nil {
		return nil, errors.New("logger required")
	}
	if db == nil {
		return nil, errors.New("db runner required")
	}
	if retentionDays <= 0 {
		retentionDays = fallbackDays
	}
	return &purgeJob{
		name:      name,
		logg:      logg,
		db:        db,
		metrics:   m,
		retention: retentionDays,
		purge:     purge,
		fields:    map[string]any{},
		now:       time.Now,
	}, nil
}

func (j *purgeJob) Name() string { return j.name }

func (j *purgeJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retention)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := j.purge(ctx, tx, cutoff)
		deleted = n
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	j.metrics.AddProcessed(j.name, "deleted", int(deleted))

	fields := map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	}
	for k, v := range j.fields {
		fields[k] = v
	}
	j.logg.Info(j.logg.WithFields(ctx, fields), j.name+" complete")
	return nil
}

type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository notificationsCleanupRepo
	Metrics    *metrics.CronJobMetrics
	Retention  int
}

type notificationsCleanupRepo interface {
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// NewNotificationCleanupJob prunes in-app order notifications past retention.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Repository == nil {
		return nil, errors.New("notifications repository required")
	}
	job, err := newPurgeJob(notificationCleanupJobName, params.Logger, params.DB, params.Metrics,
		params.Retention, notificationRetentionDays, params.Repository.DeleteOlderThan)
	if err != nil {
		return nil, err
	}
	return job, nil
}

type OutboxRetentionJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Repository  outboxRetentionRepo
	Metrics     *metrics.CronJobMetrics
	Retention   int
	MinAttempts int
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error)
}

// NewOutboxRetentionJob drops relayed order events once they age out. Rows still
// waiting on the relay are never touched.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Repository == nil {
		return nil, errors.New("outbox repository required")
	}
	minAttempts := params.MinAttempts
	if minAttempts <= 0 {
		minAttempts = outboxMinAttempts
	}
	repo := params.Repository
	job, err := newPurgeJob(outboxRetentionJobName, params.Logger, params.DB, params.Metrics,
		params.Retention, outboxRetentionDays,
		func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
			return repo.DeletePublishedBefore(ctx, tx, cutoff, minAttempts)
		})
	if err != nil {
		return nil, err
	}
	job.fields["min_attempts"] = minAttempts
	return job, nil
}
