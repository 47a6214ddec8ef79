package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Warmer refreshes one cached collection query.
type Warmer interface {
	Refresh(ctx context.Context, entity string, count int) error
}

// SchedulerOptions configures the periodic jobs.
type SchedulerOptions struct {
	SweepSchedule string   // cron spec for the idle session sweep, empty disables
	WarmSchedule  string   // cron spec for cache warm-up, empty disables
	Entities      []string // collections to warm
	Counts        []int    // item counts to warm per collection
	WarmTimeout   time.Duration
	Logger        zerolog.Logger
}

// ─────────────────────────────────────────────────────────────
// Scheduler: cron driven maintenance jobs
// ─────────────────────────────────────────────────────────────

// Scheduler runs the session sweep and the collection cache warm-up.
type Scheduler struct {
	cron    *cron.Cron
	editors *EditorService
	warmer  Warmer
	opts    SchedulerOptions
	log     zerolog.Logger
	jobs    int
}

// NewScheduler validates the cron specs and registers the jobs.
func NewScheduler(editors *EditorService, warmer Warmer, opts SchedulerOptions) (*Scheduler, error) {
	if opts.WarmTimeout <= 0 {
		opts.WarmTimeout = 30 * time.Second
	}
	s := &Scheduler{
		cron:    cron.New(),
		editors: editors,
		warmer:  warmer,
		opts:    opts,
		log:     opts.Logger.With().Str("component", "scheduler").Logger(),
	}

	if opts.SweepSchedule != "" && editors != nil {
		if _, err := s.cron.AddFunc(opts.SweepSchedule, func() {
			editors.SweepIdle(context.Background())
		}); err != nil {
			return nil, fmt.Errorf("sweep schedule %q: %w", opts.SweepSchedule, err)
		}
		s.jobs++
	}
	if opts.WarmSchedule != "" && warmer != nil {
		if _, err := s.cron.AddFunc(opts.WarmSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), opts.WarmTimeout)
			defer cancel()
			if err := s.Warm(ctx); err != nil {
				s.log.Error().Err(err).Msg("cache warm-up failed")
			}
		}); err != nil {
			return nil, fmt.Errorf("warm schedule %q: %w", opts.WarmSchedule, err)
		}
		s.jobs++
	}
	return s, nil
}

// Jobs returns the number of scheduled jobs.
func (s *Scheduler) Jobs() int { return s.jobs }

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", s.jobs).Msg("scheduler started")
}

// Stop stops scheduling and waits for running jobs or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Warm refreshes every entity and count pair. All pairs are attempted;
// the failures are joined.
func (s *Scheduler) Warm(ctx context.Context) error {
	if s.warmer == nil {
		return nil
	}
	var errs []error
	for _, entity := range s.opts.Entities {
		for _, count := range s.opts.Counts {
			if err := s.warmer.Refresh(ctx, entity, count); err != nil {
				errs = append(errs, fmt.Errorf("warm %s/%d: %w", entity, count, err))
			}
		}
	}
	s.log.Debug().Int("entities", len(s.opts.Entities)).Int("failed", len(errs)).Msg("cache warmed")
	return errors.Join(errs...)
}
