package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrModelLoad is returned when a model file cannot be read or is not a valid export.
	ErrModelLoad = errors.New("model load failed")
	// ErrPrediction is returned when features do not match the model's expected input.
	ErrPrediction = errors.New("prediction failed")
)

// Predictor is a loaded regression model producing one scalar per feature vector.
// Implementations are immutable after loading and safe for concurrent use.
type Predictor interface {
	Predict(features []float64) (float64, error)
	// Inputs is the expected feature vector length.
	Inputs() int
}

// Info describes a loaded model for health reporting.
type Info struct {
	Kind    string `json:"kind"`
	Version string `json:"version,omitempty"`
	Inputs  int    `json:"inputs"`
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrModelLoad, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrModelLoad, path, err)
	}
	return nil
}

func checkInputs(p Predictor, features []float64) error {
	if len(features) != p.Inputs() {
		return fmt.Errorf("%w: expected %d features, got %d", ErrPrediction, p.Inputs(), len(features))
	}
	return nil
}
