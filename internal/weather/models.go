package weather

import (
	"time"
)

// Observation is a single <forecast> entry of the feed.
// A nil Temperature or WindSpeed means the node carried no value.
type Observation struct {
	StationID   string `json:"stationId"`
	Time        string `json:"time,omitempty"`
	Temperature *int   `json:"temperatureC,omitempty"`
	WindSpeed   *int   `json:"windSpeed,omitempty"`
}

// Station groups the forecast entries reported for one station id.
type Station struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Observations []Observation `json:"observations"`
}

// Forecast is the parsed feed as returned by a Provider.
type Forecast struct {
	FetchedAt time.Time `json:"fetchedAt"`
	Stations  []Station `json:"stations"`
}

// AggregatedWeather is the averaged view of a Forecast that the models consume.
type AggregatedWeather struct {
	Timestamp          time.Time `json:"timestamp"` // always UTC
	AverageTemperature float64   `json:"averageTemperatureC"`
	AverageWindSpeed   float64   `json:"averageWindSpeed"`

	TemperatureSamples int      `json:"temperatureSamples"`
	WindSpeedSamples   int      `json:"windSpeedSamples"`
	Stations           []string `json:"stations,omitempty"`
}
