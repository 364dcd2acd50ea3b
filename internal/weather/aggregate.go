package weather

import (
	"time"

	"github.com/i474232898/accident-forecast/internal/common"
)

// Aggregate reduces every observation of every station to mean temperature and
// mean wind speed. Missing values are skipped per list; an empty list averages to 0.
func Aggregate(f Forecast) AggregatedWeather {
	var (
		temps    []int
		winds    []int
		stations []string
	)

	for _, st := range f.Stations {
		stations = append(stations, st.ID)
		for _, o := range st.Observations {
			if o.Temperature != nil {
				temps = append(temps, *o.Temperature)
			}
			if o.WindSpeed != nil {
				winds = append(winds, *o.WindSpeed)
			}
		}
	}

	ts := f.FetchedAt.UTC()
	if f.FetchedAt.IsZero() {
		ts = time.Now().UTC()
	}

	return AggregatedWeather{
		Timestamp:          ts,
		AverageTemperature: common.Mean(temps),
		AverageWindSpeed:   common.Mean(winds),
		TemperatureSamples: len(temps),
		WindSpeedSamples:   len(winds),
		Stations:           stations,
	}
}
