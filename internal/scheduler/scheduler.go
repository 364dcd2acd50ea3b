package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Fetcher refreshes the weather snapshot history.
type Fetcher interface {
	FetchAndStore(ctx context.Context) error
}

// Scheduler periodically fetches weather snapshots into the store.
type Scheduler struct {
	scheduler *gocron.Scheduler
	fetcher   Fetcher
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. Each run is bounded by timeout.
func New(interval, timeout time.Duration, fetcher Fetcher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		fetcher:   fetcher,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately. A non-positive interval means 15 minutes.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	log.Println("scheduler: running weather snapshot job")

	timeout := s.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.fetcher.FetchAndStore(ctx); err != nil {
		log.Printf("scheduler: snapshot fetch failed: %v", err)
		return
	}
	log.Println("scheduler: completed weather snapshot job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
