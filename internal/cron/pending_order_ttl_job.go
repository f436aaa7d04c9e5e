package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vendorahq/vendora-backend/pkg/logger"
)

const defaultPendingTTL = 72 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type staleOrderCanceller interface {
	CancelStalePending(ctx context.Context, cutoff time.Time) (int, error)
}

// PendingOrderTTLJobParams configure the pending-order sweep.
type PendingOrderTTLJobParams struct {
	Logger *logger.Logger
	Orders staleOrderCanceller
	TTL    time.Duration
}

// NewPendingOrderTTLJob cancels PENDING orders older than the TTL through the
// regular transition machinery, so timestamps and events flow as usual.
func NewPendingOrderTTLJob(params PendingOrderTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	return &pendingOrderTTLJob{
		logg:   params.Logger,
		orders: params.Orders,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

type pendingOrderTTLJob struct {
	logg   *logger.Logger
	orders staleOrderCanceller
	ttl    time.Duration
	now    func() time.Time
}

func (j *pendingOrderTTLJob) Name() string { return "pending-order-ttl" }

func (j *pendingOrderTTLJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	cancelled, err := j.orders.CancelStalePending(ctx, cutoff)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":    cutoff,
		"ttl":       j.ttl.String(),
		"cancelled": cancelled,
	})
	if err != nil {
		// Partial progress still counts; the combined error surfaces the
		// orders that could not be swept.
		j.logg.Warn(logCtx, "pending order sweep finished with failures")
		return fmt.Errorf("pending order ttl: %w", err)
	}
	j.logg.Info(logCtx, "pending order sweep complete")
	return nil
}
