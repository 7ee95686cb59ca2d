package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/urbanpulse/weather-monitor/internal/insights"
)

// Scheduler drives the insights engine: a frequent monitoring cycle and a
// slower narration refresh.
type Scheduler struct {
	scheduler         *gocron.Scheduler
	engine            *insights.Engine
	refreshInterval   time.Duration
	narrationInterval time.Duration
}

// New creates a new Scheduler.
func New(engine *insights.Engine, refreshInterval, narrationInterval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:         s,
		engine:            engine,
		refreshInterval:   refreshInterval,
		narrationInterval: narrationInterval,
	}
}

// Start schedules both periodic jobs, runs the first monitoring cycle
// immediately and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	refresh := s.refreshInterval
	if refresh <= 0 {
		refresh = time.Minute
	}
	narration := s.narrationInterval
	if narration <= 0 {
		narration = 10 * time.Minute
	}

	_, err := s.scheduler.Every(refresh).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), refresh)
		defer cancel()

		if err := s.engine.RefreshCities(ctx); err != nil {
			log.Printf("scheduler: monitoring cycle failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	_, err = s.scheduler.Every(narration).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := s.engine.RefreshNarration(ctx); err != nil {
			log.Printf("scheduler: narration refresh failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()

	// Prime the dashboard instead of waiting out the first interval.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refresh)
		defer cancel()
		if err := s.engine.RefreshCities(ctx); err != nil {
			log.Printf("scheduler: initial monitoring cycle failed: %v", err)
		}
	}()

	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
