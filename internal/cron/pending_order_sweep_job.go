package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medbasket/medbasket-backend/pkg/logger"
)

type pendingOrderSweeper interface {
	MarkPendingAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PendingOrderSweepJobParams bundles the dependencies for the sweep job.
type PendingOrderSweepJobParams struct {
	Sweeper pendingOrderSweeper
	Logger  *logger.Logger
	TTL     time.Duration
}

// PendingOrderSweepJob marks stale pending orders as abandoned. Orders that
// never completed payment sit in pending_orders until this job reaps them.
type PendingOrderSweepJob struct {
	sweeper pendingOrderSweeper
	logger  *logger.Logger
	ttl     time.Duration
	now     func() time.Time
}

// NewPendingOrderSweepJob validates dependencies and builds the job.
func NewPendingOrderSweepJob(params PendingOrderSweepJobParams) (*PendingOrderSweepJob, error) {
	if params.Sweeper == nil {
		return nil, errors.New("sweeper is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.TTL <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	return &PendingOrderSweepJob{
		sweeper: params.Sweeper,
		logger:  params.Logger,
		ttl:     params.TTL,
		now:     time.Now,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *PendingOrderSweepJob) Name() string {
	return "pending-order-sweep"
}

// Run marks pending orders older than the TTL as abandoned.
func (j *PendingOrderSweepJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.ttl)
	swept, err := j.sweeper.MarkPendingAbandonedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("sweeping pending orders: %w", err)
	}
	if swept > 0 {
		j.logger.Info(j.logger.WithField(ctx, "swept", swept), "abandoned stale pending orders")
	}
	return nil
}
