package prediction

import (
	"fmt"
	"math"

	"github.com/i474232898/accident-forecast/internal/model"
)

// IslandAdapter feeds the standardized average temperature to the Iceland model.
type IslandAdapter struct {
	model model.Predictor
	cal   IslandCalibration
}

// NewIslandAdapter wraps a single-input predictor.
func NewIslandAdapter(m model.Predictor, cal IslandCalibration) (*IslandAdapter, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: island model is nil", model.ErrModelLoad)
	}
	if m.Inputs() != 1 {
		return nil, fmt.Errorf("%w: island model expects %d inputs, want 1", model.ErrModelLoad, m.Inputs())
	}
	return &IslandAdapter{model: m, cal: cal}, nil
}

// Standardize maps a temperature onto the training distribution.
func (a *IslandAdapter) Standardize(avgTemp float64) float64 {
	return (avgTemp - a.cal.TemperatureMean) / a.cal.TemperatureStd
}

// Predict returns the raw model output for the given average temperature.
func (a *IslandAdapter) Predict(avgTemp float64) (float64, error) {
	x := a.Standardize(avgTemp)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("%w: standardized temperature is not finite", model.ErrPrediction)
	}
	return a.model.Predict([]float64{x})
}
