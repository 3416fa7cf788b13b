/*
Package jobs schedules the engine's recurring work.

Currently one job: the daily overdue-installment report, which scans for
pending installments past their due date and logs a summary for the
front desk. Overdue is derived at scan time; nothing is written.
*/
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/gymflex/ops-engine/billing"
)

// Scheduler manages the cron-driven jobs.
type Scheduler struct {
	cron    *cron.Cron
	billing *billing.Service
}

func NewScheduler(billingSvc *billing.Service) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		billing: billingSvc,
	}
}

// Register adds the overdue report on the given cron schedule
// ("0 8 * * *" = daily at 08:00 UTC).
func (s *Scheduler) Register(overdueSchedule string) error {
	_, err := s.cron.AddFunc(overdueSchedule, s.runOverdueReport)
	return err
}

// Start begins the scheduler. Jobs run on the cron goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Msg("job scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("job scheduler stopped")
}

func (s *Scheduler) runOverdueReport() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("overdue report panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	overdue, err := s.billing.ListOverdue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("overdue report failed")
		return
	}

	if len(overdue) == 0 {
		log.Info().Msg("overdue report: no overdue installments")
		return
	}

	for _, inst := range overdue {
		log.Warn().
			Str("installment_id", string(inst.ID)).
			Str("plan_id", string(inst.PlanID)).
			Int("sequence", inst.Sequence).
			Str("amount", inst.Amount.String()).
			Str("due_date", inst.DueDate.String()).
			Msg("installment overdue")
	}
	log.Info().Int("count", len(overdue)).Msg("overdue report complete")
}
