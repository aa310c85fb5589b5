package infra

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"tradehook/internal/service"
	"tradehook/internal/usecase"
)

// Scheduler runs the background jobs: the per-minute position monitor and
// an hourly analytics summary.
type Scheduler struct {
	cron      *cron.Cron
	monitor   *service.PositionMonitor
	reporting *usecase.ReportingService
}

// NewScheduler creates a new Scheduler
func NewScheduler(monitor *service.PositionMonitor, reporting *usecase.ReportingService) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		monitor:   monitor,
		reporting: reporting,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	// Position monitor: every 1 minute
	_, err := s.cron.AddFunc("*/1 * * * *", func() {
		s.monitor.Run(context.Background())
	})
	if err != nil {
		return err
	}

	// Analytics summary: top of every hour
	_, err = s.cron.AddFunc("0 * * * *", func() {
		analytics, err := s.reporting.Analytics(context.Background())
		if err != nil {
			log.Printf("ERROR: [CRON] analytics summary failed: %v", err)
			return
		}
		log.Printf("[CRON] Analytics: trades=%d winrate=%.1f%% pnl=%.2f",
			analytics.TotalTrades, analytics.WinRate, analytics.TotalPnL)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("[OK] Scheduler started:")
	log.Println("  - Position monitor: every 1 minute (*/1 * * * *)")
	log.Println("  - Analytics summary: hourly (0 * * * *)")
	return nil
}

// Stop stops the cron loop, waiting for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
