package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/storefront/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Refresher reloads cached storefront content
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Sweeper evicts idle sessions, sparing those keep reports
type Sweeper interface {
	Sweep(idle time.Duration, keep func(id string) bool) int
}

type Config struct {
	RefreshSchedule string
	SweepSchedule   string
	// SessionIdle is how long a session may go unused before eviction.
	SessionIdle time.Duration
	// JobTimeout bounds one refresh run.
	JobTimeout time.Duration
}

// Scheduler runs the content refresh and session sweep jobs
type Scheduler struct {
	cron      *cron.Cron
	cfg       Config
	refresher Refresher
	sweeper   Sweeper
	online    func(id string) bool
}

// New builds the scheduler. online reports sessions with open tabs; they are
// never swept.
func New(cfg Config, refresher Refresher, sweeper Sweeper, online func(id string) bool) *Scheduler {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	return &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		cfg:       cfg,
		refresher: refresher,
		sweeper:   sweeper,
		online:    online,
	}
}

// Start registers the jobs, warms the content cache once and starts cron.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.RefreshSchedule, s.refresh); err != nil {
		logger.Error("Failed to add cron job for content refresh", err, map[string]interface{}{
			"schedule": s.cfg.RefreshSchedule,
		})
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.SweepSchedule, s.sweep); err != nil {
		logger.Error("Failed to add cron job for session sweep", err, map[string]interface{}{
			"schedule": s.cfg.SweepSchedule,
		})
		return err
	}

	go s.refresh()

	s.cron.Start()
	logger.Info("Scheduler started", map[string]interface{}{
		"refresh": s.cfg.RefreshSchedule,
		"sweep":   s.cfg.SweepSchedule,
	})
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	logger.Info("Stopping scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Scheduler stopped")
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	if err := s.refresher.Refresh(ctx); err != nil {
		logger.Warn("Content refresh incomplete", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	logger.Debug("Content refreshed")
}

func (s *Scheduler) sweep() {
	evicted := s.sweeper.Sweep(s.cfg.SessionIdle, s.online)
	if evicted > 0 {
		logger.Info("Idle sessions swept", map[string]interface{}{
			"evicted": evicted,
		})
	}
}
