package prediction

import "math"

// NumBins is the number of categories per weather axis.
const NumBins = 10

var (
	// TemperatureEdges are the upper bin edges in °C.
	TemperatureEdges = []float64{math.Inf(-1), -5, 0, 5, 10, 15, 20, 25, 30, 35, math.Inf(1)}
	// WindSpeedEdges are the upper bin edges in m/s.
	WindSpeedEdges = []float64{0, 2, 4, 6, 8, 10, 12, 14, 16, 18, math.Inf(1)}

	temperatureLabels = [NumBins]string{
		"Extremely Cold",
		"Very Cold",
		"Cold",
		"Slightly Cold",
		"Moderate Cold",
		"Moderate Hot",
		"Slightly Hot",
		"Hot",
		"Very Hot",
		"Extremely Hot",
	}
	windSpeedLabels = [NumBins]string{
		"No Wind",
		"Very Low",
		"Low",
		"Slightly Low",
		"Moderate Low",
		"Moderate High",
		"Slightly High",
		"High",
		"Very High",
		"Extremely High",
	}
)

// BinIndex returns the index of the first edge v is <= to, defaulting to the
// last edge, clamped to the last of bins. Every input, NaN included, maps to
// exactly one bin in [0, bins).
func BinIndex(edges []float64, v float64, bins int) int {
	idx := len(edges) - 1
	for i, edge := range edges {
		if v <= edge {
			idx = i
			break
		}
	}
	if idx >= bins {
		idx = bins - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// TemperatureBin maps a temperature in °C to its bin.
func TemperatureBin(temp float64) int {
	return BinIndex(TemperatureEdges, temp, NumBins)
}

// WindSpeedBin maps a wind speed in m/s to its bin.
func WindSpeedBin(wind float64) int {
	return BinIndex(WindSpeedEdges, wind, NumBins)
}

// TemperatureLabel names a temperature bin.
func TemperatureLabel(bin int) string {
	return temperatureLabels[bin]
}

// WindSpeedLabel names a wind speed bin.
func WindSpeedLabel(bin int) string {
	return windSpeedLabels[bin]
}

// OneHot returns a vector of length n with a single 1 at index.
func OneHot(index, n int) []float64 {
	v := make([]float64, n)
	v[index] = 1
	return v
}

// Decode returns the index of the 1 in a one-hot vector, or -1 if v is not one-hot.
func Decode(v []float64) int {
	idx := -1
	for i, x := range v {
		switch x {
		case 0:
		case 1:
			if idx != -1 {
				return -1
			}
			idx = i
		default:
			return -1
		}
	}
	return idx
}

// Encode builds the 20-element feature vector: temperature one-hot followed by wind speed one-hot.
func Encode(temp, wind float64) []float64 {
	features := make([]float64, 0, 2*NumBins)
	features = append(features, OneHot(TemperatureBin(temp), NumBins)...)
	features = append(features, OneHot(WindSpeedBin(wind), NumBins)...)
	return features
}
