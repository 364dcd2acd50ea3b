package common

// Mean returns the arithmetic mean of values, or 0 when values is empty.
func Mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// PercentDeviation expresses how far observed sits from baseline, in percent.
func PercentDeviation(observed, baseline float64) float64 {
	return (observed - baseline) / baseline * 100
}
