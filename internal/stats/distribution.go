// Package stats reduces raw trial samples to distribution summaries.
package stats

import (
	"errors"
	"math"
	"sort"
)

// ErrEmptySample is returned when a summary is requested over zero values.
var ErrEmptySample = errors.New("empty sample")

// Distribution is the summary of one numeric sample.
type Distribution struct {
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes mean, population standard deviation, median, min and max
// over values. For an even-length sample the median is the lower-middle
// element of the ascending sort, so the median is always a member of the
// sample. The input slice is not modified.
func Summarize(values []float64, label string) (Distribution, error) {
	if len(values) == 0 {
		return Distribution{}, ErrEmptySample
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var acc float64
	for _, v := range sorted {
		d := v - mean
		acc += d * d
	}

	return Distribution{
		Label:  label,
		Count:  len(sorted),
		Mean:   mean,
		StdDev: math.Sqrt(acc / float64(len(sorted))),
		Median: sorted[(len(sorted)-1)/2],
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}, nil
}
