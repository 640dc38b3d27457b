package cron

import (
	"context"
	"errors"
	"time"

	"github.com/medbasket/medbasket-backend/pkg/logger"
	"github.com/medbasket/medbasket-backend/pkg/metrics"
)

const defaultInterval = time.Hour

type cycleLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// ServiceParams bundles the dependencies for the cron runner.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     cycleLock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service drives registered jobs on a fixed interval, guarded by a
// distributed lock so only one worker executes a cycle.
type Service struct {
	logger   *logger.Logger
	registry *Registry
	lock     cycleLock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

// NewService validates dependencies and builds the runner.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Lock == nil {
		return nil, errors.New("lock is required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logger:   params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run executes cycles until the context is cancelled. The first cycle runs
// immediately, then on every interval tick.
func (s *Service) Run(ctx context.Context) error {
	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "cron runner stopping")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Service) runCycle(ctx context.Context) {
	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		s.logger.Error(ctx, "acquiring cron lock", err)
		return
	}
	if !acquired {
		s.logger.Info(ctx, "cron lock held elsewhere, skipping cycle")
		return
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logger.Error(ctx, "releasing cron lock", relErr)
		}
	}()

	for _, job := range s.registry.Jobs() {
		s.runJob(ctx, job)
	}
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logger.WithField(ctx, "job", job.Name())
	s.logger.Info(jobCtx, "cron job starting")

	start := time.Now()
	err := job.Run(jobCtx)
	elapsed := time.Since(start)

	s.metrics.ObserveDuration(job.Name(), elapsed)

	resultCtx := s.logger.WithField(jobCtx, "duration_ms", elapsed.Milliseconds())
	if err != nil {
		s.metrics.IncFailure(job.Name())
		s.logger.Error(resultCtx, "cron job failed", err)
		return
	}
	s.metrics.IncSuccess(job.Name())
	s.logger.Info(resultCtx, "cron job completed")
}
