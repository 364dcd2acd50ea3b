package prediction

import (
	"fmt"
	"log"
	"math"

	"github.com/i474232898/accident-forecast/internal/model"
)

// UsaAdapter one-hot encodes binned weather for the USA model, which predicts in log space.
type UsaAdapter struct {
	model model.Predictor
	cal   UsaCalibration
}

// NewUsaAdapter wraps a predictor taking the 20-element encoded feature vector.
func NewUsaAdapter(m model.Predictor, cal UsaCalibration) (*UsaAdapter, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: usa model is nil", model.ErrModelLoad)
	}
	if m.Inputs() != 2*NumBins {
		return nil, fmt.Errorf("%w: usa model expects %d inputs, want %d", model.ErrModelLoad, m.Inputs(), 2*NumBins)
	}
	return &UsaAdapter{model: m, cal: cal}, nil
}

// Inputs picks the values to bin: the fetched averages, or the fixed calibration values.
func (a *UsaAdapter) Inputs(avgTemp, avgWind float64) (float64, float64) {
	if a.cal.UseLiveWeather {
		return avgTemp, avgWind
	}
	return a.cal.FixedTemperature, a.cal.FixedWindSpeed
}

// Predict returns the delogged accident count for the given temperature and wind speed.
func (a *UsaAdapter) Predict(temp, wind float64) (float64, error) {
	tBin, wBin := TemperatureBin(temp), WindSpeedBin(wind)
	log.Printf("DEBUG: usa features temperature=%s wind=%s", TemperatureLabel(tBin), WindSpeedLabel(wBin))

	raw, err := a.model.Predict(Encode(temp, wind))
	if err != nil {
		return 0, err
	}

	pred := math.Exp(raw) - a.cal.LogOffset
	if math.IsNaN(pred) || math.IsInf(pred, 0) {
		return 0, fmt.Errorf("%w: delogged prediction is not finite", model.ErrPrediction)
	}
	return pred, nil
}
