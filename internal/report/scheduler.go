package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron"
)

const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// ErrRunInProgress is returned by Trigger when another report run has not finished.
var ErrRunInProgress = errors.New("report run already in progress")

// Scheduler runs the generator on a cron spec and serialises scheduled and manual runs.
type Scheduler struct {
	gen     *Generator
	cron    *cron.Cron
	spec    string
	running atomic.Bool
	logger  *slog.Logger
}

// NewScheduler validates spec and registers the job. spec uses six fields (with seconds) or a
// descriptor such as "@daily".
func NewScheduler(gen *Generator, spec string, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		gen:    gen,
		cron:   cron.New(),
		spec:   spec,
		logger: logger,
	}
	if err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("parse report schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins firing on the schedule. Call once.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("report scheduler started", "schedule", s.spec)
}

// Stop halts future ticks. A run already in flight is not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("report scheduler stopped")
}

// Trigger runs a report now unless one is already running.
func (s *Scheduler) Trigger(ctx context.Context, trigger string) (*Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)
	return s.gen.Run(ctx, trigger)
}

func (s *Scheduler) tick() {
	if _, err := s.Trigger(context.Background(), TriggerSchedule); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			s.logger.Warn("skipping scheduled report, previous run still going")
		}
		// Build failures are already logged by the generator.
	}
}
