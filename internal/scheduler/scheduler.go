// Package scheduler runs the periodic observability job: it surfaces the
// index parse-skip counter and download-cache occupancy that would
// otherwise stay invisible.
package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// IndexStats reports the loaded index state.
type IndexStats interface {
	Stats() (profiles, skipped int, loaded bool)
}

// CacheStats reports download-cache occupancy.
type CacheStats interface {
	Stats() (files int, bytes int64)
}

// Scheduler periodically logs archive and cache statistics.
type Scheduler struct {
	scheduler *gocron.Scheduler
	index     IndexStats
	cache     CacheStats
	interval  time.Duration
}

// New creates a Scheduler.
func New(index IndexStats, cache CacheStats, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		index:     index,
		cache:     cache,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		profiles, skipped, loaded := s.index.Stats()
		if !loaded {
			log.Println("stats: index not loaded yet")
		} else {
			log.Printf("stats: index holds %d profiles, %d lines skipped during parse", profiles, skipped)
		}

		files, bytes := s.cache.Stats()
		log.Printf("stats: cache holds %d files (%d bytes)", files, bytes)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
