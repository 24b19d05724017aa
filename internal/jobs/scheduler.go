package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweeper removes staged artifacts older than maxAge.
type Sweeper interface {
	Sweep(maxAge time.Duration, now time.Time) (int, error)
}

type Scheduler struct {
	cron     *cron.Cron
	sweeper  Sweeper
	schedule string
	maxAge   time.Duration
	log      zerolog.Logger
}

func NewScheduler(sweeper Sweeper, schedule string, maxAge time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sweeper:  sweeper,
		schedule: schedule,
		maxAge:   maxAge,
		log:      log,
	}
}

// Start registers the sweep job. An empty schedule disables it.
func (s *Scheduler) Start() error {
	if s.schedule == "" || s.maxAge <= 0 {
		s.log.Info().Msg("artifact sweep disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.sweepArtifacts); err != nil {
		return fmt.Errorf("schedule artifact sweep: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler; the returned context is done once a running
// sweep has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) sweepArtifacts() {
	removed, err := s.sweeper.Sweep(s.maxAge, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("artifact sweep failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("orphaned artifacts swept")
	}
}
