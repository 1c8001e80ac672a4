package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/lakeboard/lakeboard/internal/forecast"
	"github.com/lakeboard/lakeboard/internal/glofs"
)

// Scheduler periodically refreshes the latest-run view and prefetches frames
// for the configured lakes.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *forecast.Service
	lakes     []glofs.Lake
	hours     []int
	interval  time.Duration
}

// New creates a new Scheduler.
func New(lakes []glofs.Lake, hours []int, interval time.Duration, service *forecast.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		lakes:     lakes,
		hours:     hours,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.lakes) == 0 {
		log.Println("scheduler: no lakes configured; nothing to schedule")
		return nil
	}

	minutes := intervalMinutes(s.interval)

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running forecast refresh job")

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := s.service.RefreshRuns(ctx); err != nil {
			log.Printf("scheduler: run refresh failed: %v", err)
			return
		}

		s.service.RefreshFrames(ctx, s.lakes, s.hours)
		log.Println("scheduler: completed forecast refresh job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// intervalMinutes truncates the refresh interval to whole minutes. Intervals
// below one minute fall back to the 15-minute default, loudly.
func intervalMinutes(interval time.Duration) int {
	minutes := int(interval.Minutes())
	if minutes <= 0 {
		log.Printf("scheduler: refresh interval %s is below one minute, using the 15m default", interval)
		return 15
	}
	return minutes
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
