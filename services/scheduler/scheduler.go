// Package schedsvc runs the periodic reconciliation of derived study state.
package schedsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/timezone"
)

const runTimeout = 30 * time.Minute

// Reconciler rebuilds the derived state of every student.
type Reconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron   *gocron.Scheduler
	job    *gocron.Job
	rec    Reconciler
	logger core.Logger
}

// New schedules a daily reconciliation at conf.ReconcileAt (HH:MM, IST).
func New(rec Reconciler, logger core.Logger, conf core.SchedulerConfig) (*Scheduler, error) {
	s := &Scheduler{
		cron:   gocron.NewScheduler(timezone.IST),
		rec:    rec,
		logger: logger,
	}
	s.cron.SingletonModeAll()

	job, err := s.cron.Every(1).Day().At(conf.ReconcileAt).Do(s.run)
	if err != nil {
		return nil, errors.Wrapf(err, "scheduling reconciliation at %q", conf.ReconcileAt)
	}
	s.job = job
	return s, nil
}

// Start runs the scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.StartAsync()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) NextRun() time.Time {
	return s.job.NextRun()
}

// RunNow reconciles every student synchronously.
func (s *Scheduler) RunNow(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()
	return s.rec.ReconcileAll(ctx)
}

func (s *Scheduler) run() {
	start := time.Now()
	done, err := s.RunNow(context.Background())
	if s.logger == nil {
		return
	}
	if err != nil {
		s.logger.Error(fmt.Sprintf("scheduled reconciliation: %v", err), err)
		return
	}
	s.logger.Info(fmt.Sprintf("scheduled reconciliation: %d students in %s", done, time.Since(start).Round(time.Millisecond)))
}
