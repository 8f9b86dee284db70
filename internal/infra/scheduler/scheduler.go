// Package scheduler fires the weekly ranking and report jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled run. Its error is logged; the scheduler keeps going.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration
	// base is the Run ctx; jobs are cancelled with it.
	base context.Context
}

func New(loc *time.Location, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		timeout: 5 * time.Minute,
		base:    context.Background(),
	}
}

// Add registers job under a standard five-field cron spec.
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	return errors.Annotatef(err, "schedule %s (%q)", name, spec)
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(s.base, s.timeout)
	defer cancel()

	s.logger.Info("running scheduled job", zap.String("job", name))
	if err := job(ctx); err != nil {
		s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
	}
}

// Next returns when each registered job fires next, in registration order.
func (s *Scheduler) Next() []time.Time {
	entries := s.cron.Entries()
	next := make([]time.Time, len(entries))
	for i, e := range entries {
		next[i] = e.Next
	}
	return next
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs, which see ctx cancelled, to return.
func (s *Scheduler) Run(ctx context.Context) error {
	s.base = ctx
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
