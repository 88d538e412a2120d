// Package obsstats summarizes observation values with gonum.
package obsstats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a set of observation values.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes count, mean, sample standard deviation, min and max.
// An empty slice yields a zero Summary; a single value has zero deviation.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}

	return Summary{
		Count:  len(values),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}
}

// Group summarizes values bucketed by key.
func Group(values map[string][]float64) map[string]Summary {
	out := make(map[string]Summary, len(values))
	for k, v := range values {
		out[k] = Summarize(v)
	}
	return out
}
