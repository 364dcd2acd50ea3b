package prediction

import (
	"context"
	"log"

	"github.com/i474232898/accident-forecast/internal/common"
	"github.com/i474232898/accident-forecast/internal/metrics"
	"github.com/i474232898/accident-forecast/internal/weather"
)

// Regions served by the service.
const (
	RegionIsland = "isl"
	RegionUsa    = "usa"
)

// WeatherSource supplies the current aggregated weather.
type WeatherSource interface {
	Current(ctx context.Context) (weather.AggregatedWeather, error)
}

// Result is a single prediction with the weather it was based on.
type Result struct {
	Region              string  `json:"region"`
	Temperature         float64 `json:"temp"`
	WindSpeed           float64 `json:"wind"`
	Prediction          float64 `json:"prediction"`
	PercentageDeviation float64 `json:"percentage_deviation"`
}

// Service runs fetch, aggregate, predict and deviation for each region.
type Service struct {
	weather WeatherSource
	island  *IslandAdapter
	usa     *UsaAdapter
	cal     Calibration
}

// NewService creates a new Service. The adapters are shared read-only across requests.
func NewService(source WeatherSource, island *IslandAdapter, usa *UsaAdapter, cal Calibration) *Service {
	return &Service{
		weather: source,
		island:  island,
		usa:     usa,
		cal:     cal,
	}
}

// Calibration returns the constants the service was built with.
func (s *Service) Calibration() Calibration {
	return s.cal
}

// Deviation is the percentage prediction sits above (positive) or below the baseline.
func Deviation(prediction, baseline float64) float64 {
	return common.PercentDeviation(prediction, baseline)
}

// PredictIsland predicts monthly accidents in Iceland from the current average temperature.
func (s *Service) PredictIsland(ctx context.Context) (res Result, err error) {
	defer func() { metrics.RecordPrediction(RegionIsland, res.Prediction, res.PercentageDeviation, err) }()

	w, err := s.weather.Current(ctx)
	if err != nil {
		return Result{}, err
	}

	pred, err := s.island.Predict(w.AverageTemperature)
	if err != nil {
		return Result{}, err
	}

	res = Result{
		Region:              RegionIsland,
		Temperature:         w.AverageTemperature,
		WindSpeed:           w.AverageWindSpeed,
		Prediction:          pred,
		PercentageDeviation: Deviation(pred, s.cal.Island.Baseline),
	}
	log.Printf("Predicted amount of accidents (%s): %.2f, deviation %.3f%%", RegionIsland, res.Prediction, res.PercentageDeviation)
	return res, nil
}

// PredictUsa predicts monthly accidents in the USA. Unless UseLiveWeather is
// set, the model is fed the fixed calibration weather while the response
// still reports the fetched averages.
func (s *Service) PredictUsa(ctx context.Context) (res Result, err error) {
	defer func() { metrics.RecordPrediction(RegionUsa, res.Prediction, res.PercentageDeviation, err) }()

	w, err := s.weather.Current(ctx)
	if err != nil {
		return Result{}, err
	}

	temp, wind := s.usa.Inputs(w.AverageTemperature, w.AverageWindSpeed)
	pred, err := s.usa.Predict(temp, wind)
	if err != nil {
		return Result{}, err
	}

	res = Result{
		Region:              RegionUsa,
		Temperature:         w.AverageTemperature,
		WindSpeed:           w.AverageWindSpeed,
		Prediction:          pred,
		PercentageDeviation: Deviation(pred, s.cal.Usa.Baseline),
	}
	log.Printf("Predicted amount of accidents (%s): %.2f, deviation %.3f%%", RegionUsa, res.Prediction, res.PercentageDeviation)
	return res, nil
}
