package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrFetch is returned when the feed could not be retrieved (transport failure or non-2xx status).
	ErrFetch = errors.New("weather feed fetch failed")
	// ErrParse is returned when the feed body is not the expected XML document.
	ErrParse = errors.New("weather feed parse failed")
)

// Provider abstracts a forecast feed (e.g. the vedur.is XML service).
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (Forecast, error)
}

// Store is the contract the in-memory snapshot store must satisfy.
type Store interface {
	SaveSnapshot(source string, snapshot AggregatedWeather)
	GetLatest(source string) (AggregatedWeather, error)
	GetRange(source string, from, to time.Time) ([]AggregatedWeather, error)
}
