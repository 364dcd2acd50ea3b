package model

import (
	"fmt"
	"math"
)

// Linear is a single affine layer with one output: y = w·x + b.
type Linear struct {
	version string
	weights []float64
	bias    float64
}

// linearExport mirrors the state dict of a one-output linear layer.
type linearExport struct {
	Version string      `json:"version"`
	Weight  [][]float64 `json:"linear.weight"`
	Bias    []float64   `json:"linear.bias"`
}

// NewLinear builds a Linear model from explicit parameters.
func NewLinear(weights []float64, bias float64) (*Linear, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: linear model needs at least one weight", ErrModelLoad)
	}
	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: non-finite weight", ErrModelLoad)
		}
	}
	if math.IsNaN(bias) || math.IsInf(bias, 0) {
		return nil, fmt.Errorf("%w: non-finite bias", ErrModelLoad)
	}
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Linear{weights: w, bias: bias}, nil
}

// LoadLinear reads a linear model export from path.
func LoadLinear(path string) (*Linear, error) {
	var exp linearExport
	if err := readJSON(path, &exp); err != nil {
		return nil, err
	}
	if len(exp.Weight) != 1 {
		return nil, fmt.Errorf("%w: %s: expected 1 output row, got %d", ErrModelLoad, path, len(exp.Weight))
	}
	if len(exp.Bias) != 1 {
		return nil, fmt.Errorf("%w: %s: expected 1 bias, got %d", ErrModelLoad, path, len(exp.Bias))
	}

	m, err := NewLinear(exp.Weight[0], exp.Bias[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.version = exp.Version
	return m, nil
}

func (m *Linear) Inputs() int {
	return len(m.weights)
}

func (m *Linear) Predict(features []float64) (float64, error) {
	if err := checkInputs(m, features); err != nil {
		return 0, err
	}
	y := m.bias
	for i, x := range features {
		y += m.weights[i] * x
	}
	return y, nil
}

func (m *Linear) Info() Info {
	return Info{Kind: "linear", Version: m.version, Inputs: m.Inputs()}
}
