package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/vendorahq/vendora-backend/pkg/logger"
)

const notificationRetentionDays = 30

type readNotificationPruner interface {
	PruneRead(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationRetentionJobParams configure the read-notification cleanup.
type NotificationRetentionJobParams struct {
	Logger        *logger.Logger
	Notifications readNotificationPruner
	Retention     int
}

// NewNotificationRetentionJob deletes read notifications older than the
// retention window. Unread rows are never touched.
func NewNotificationRetentionJob(params NotificationRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = notificationRetentionDays
	}
	return &notificationRetentionJob{
		logg:          params.Logger,
		notifications: params.Notifications,
		retention:     retention,
		now:           time.Now,
	}, nil
}

type notificationRetentionJob struct {
	logg          *logger.Logger
	notifications readNotificationPruner
	retention     int
	now           func() time.Time
}

func (j *notificationRetentionJob) Name() string { return "notification-retention" }

func (j *notificationRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.notifications.PruneRead(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("notification retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notification retention cleanup complete")
	return nil
}
