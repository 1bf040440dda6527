package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/hniksic/openmeteo-cli/internal/config"
	"github.com/hniksic/openmeteo-cli/internal/forecast"
	"github.com/hniksic/openmeteo-cli/internal/store"
)

// Fetcher is the subset of the Open-Meteo client the scheduler needs.
type Fetcher interface {
	Forecast(ctx context.Context, lat, lon float64, models []string) (*forecast.Forecast, error)
}

// Scheduler periodically refreshes forecasts for tracked locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	fetcher   Fetcher
	store     *store.MemoryStore
	locations []config.TrackedLocation
	models    []string
	interval  time.Duration
}

// New creates a Scheduler.
func New(locations []config.TrackedLocation, models []string, interval time.Duration, fetcher Fetcher, st *store.MemoryStore) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		fetcher:   fetcher,
		store:     st,
		locations: locations,
		models:    models,
		interval:  interval,
	}
}

// Start schedules the periodic refresh job, runs it once immediately, and
// starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = time.Hour
	}

	_, err := s.scheduler.Every(interval).StartImmediately().Do(func() {
		log.Println("scheduler: running forecast refresh job")

		var wg sync.WaitGroup
		for _, loc := range s.locations {
			loc := loc
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				f, err := s.fetcher.Forecast(ctx, loc.Latitude, loc.Longitude, s.models)
				if err != nil {
					log.Printf("scheduler: refresh failed for %s: %v", store.Key(loc.Latitude, loc.Longitude), err)
					return
				}
				s.store.Save(loc.Latitude, loc.Longitude, store.Snapshot{
					FetchedAt: time.Now().UTC(),
					Forecast:  f,
				})
			}()
		}
		wg.Wait()
		log.Println("scheduler: completed forecast refresh job")
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
