package weather

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/i474232898/accident-forecast/internal/metrics"
)

// Service fetches the forecast feed, aggregates it and keeps a snapshot history.
type Service struct {
	store    Store
	provider Provider
}

// NewService creates a new Service.
func NewService(store Store, provider Provider) *Service {
	return &Service{
		store:    store,
		provider: provider,
	}
}

// Source names the provider snapshots are stored under.
func (s *Service) Source() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// Current fetches the feed once and returns its aggregate.
// Nothing is stored; prediction requests stay independent of each other.
func (s *Service) Current(ctx context.Context) (AggregatedWeather, error) {
	if s.provider == nil {
		return AggregatedWeather{}, fmt.Errorf("%w: no weather provider configured", ErrFetch)
	}

	start := time.Now()
	forecast, err := s.provider.Fetch(ctx)
	metrics.RecordFeedFetch(s.provider.Name(), time.Since(start), err)
	if err != nil {
		log.Printf("ERROR: provider %s fetch failed: %v", s.provider.Name(), err)
		return AggregatedWeather{}, err
	}

	agg := Aggregate(forecast)
	metrics.RecordObservations(s.provider.Name(), agg.TemperatureSamples, agg.WindSpeedSamples)

	log.Printf("Average temperature: %.1f°C", agg.AverageTemperature)
	log.Printf("Average wind speed: %.1f m/s", agg.AverageWindSpeed)

	return agg, nil
}

// FetchAndStore fetches and aggregates the feed and appends the snapshot to the store.
func (s *Service) FetchAndStore(ctx context.Context) error {
	agg, err := s.Current(ctx)
	if err != nil {
		// Keep the last good snapshot.
		return err
	}
	if s.store == nil {
		return nil
	}
	s.store.SaveSnapshot(s.Source(), agg)
	return nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest() (AggregatedWeather, error) {
	return s.store.GetLatest(s.Source())
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(from, to time.Time) ([]AggregatedWeather, error) {
	return s.store.GetRange(s.Source(), from, to)
}
