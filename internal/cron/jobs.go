package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/backoffice/internal/reports"
	"github.com/angelmondragon/backoffice/pkg/clock"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

const defaultNotificationRetention = 7 * 24 * time.Hour

type notificationPruner interface {
	PruneRead(ctx context.Context, cutoff time.Time) int
}

// NotificationRetentionJob drops read feed entries older than the retention
// window.
type NotificationRetentionJob struct {
	logg      *logger.Logger
	feed      notificationPruner
	retention time.Duration
	clock     clock.Clock
}

func NewNotificationRetentionJob(logg *logger.Logger, feed notificationPruner, retention time.Duration, clk clock.Clock) (*NotificationRetentionJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if feed == nil {
		return nil, fmt.Errorf("notification feed required")
	}
	if retention <= 0 {
		retention = defaultNotificationRetention
	}
	return &NotificationRetentionJob{logg: logg, feed: feed, retention: retention, clock: clock.OrSystem(clk)}, nil
}

func (j *NotificationRetentionJob) Name() string { return "notification-retention" }

func (j *NotificationRetentionJob) Run(ctx context.Context) error {
	cutoff := j.clock.Now().Add(-j.retention)
	removed := j.feed.PruneRead(ctx, cutoff)
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"removed": removed,
	}), "notification retention applied")
	return nil
}

type stockDigester interface {
	PublishStockDigest(ctx context.Context) []reports.StockAlert
}

// StockDigestJob publishes the reorder summary to the notification feed.
type StockDigestJob struct {
	logg   *logger.Logger
	source stockDigester
}

func NewStockDigestJob(logg *logger.Logger, source stockDigester) (*StockDigestJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if source == nil {
		return nil, fmt.Errorf("stock digest source required")
	}
	return &StockDigestJob{logg: logg, source: source}, nil
}

func (j *StockDigestJob) Name() string { return "stock-alert-digest" }

func (j *StockDigestJob) Run(ctx context.Context) error {
	alerts := j.source.PublishStockDigest(ctx)
	j.logg.Info(j.logg.WithField(ctx, "alerts", len(alerts)), "stock digest evaluated")
	return nil
}
