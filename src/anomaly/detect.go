package anomaly

import (
	"errors"
	"math"
)

// ErrEmptyScores is returned when the evaluator is given an empty series;
// the standard deviation is undefined there.
var ErrEmptyScores = errors.New("anomaly: empty score series")

func Mean(xs []float64) float64 {
	total := 0.0
	for _, v := range xs {
		total += v
	}
	return total / float64(len(xs))
}

func StandardDeviation(xs []float64) float64 {
	if len(xs) == 0 {
		return 0.0
	}

	mean := Mean(xs)
	var varianceSum float64

	for _, v := range xs {
		varianceSum += math.Pow(v-mean, 2)
	}

	variance := varianceSum / float64(len(xs))
	return math.Sqrt(variance)
}

// FindAnomalousIndices classifies scores against a 2 sigma cutoff. The cutoff
// is mean + 2 * population standard deviation; a score is anomalous only when
// strictly above it. Returned indices are in ascending order.
func FindAnomalousIndices(scores []float64) ([]int, error) {
	if len(scores) == 0 {
		return nil, ErrEmptyScores
	}

	mean := Mean(scores)
	std := StandardDeviation(scores)
	cutoff := mean + 2*std

	var indices []int
	for i, score := range scores {
		if score > cutoff {
			indices = append(indices, i)
		}
	}
	return indices, nil
}

// IndicatorSeries maps an anomalous-index set onto a 0/1 series of length n.
func IndicatorSeries(indices []int, n int) []float64 {
	series := make([]float64, n)
	for _, i := range indices {
		series[i] = 1.0
	}
	return series
}
