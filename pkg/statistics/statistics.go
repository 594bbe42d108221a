package statistics

import (
	"math"

	"github.com/nfvri/ris-simulator/pkg/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SnrStats summarizes the finite SNR values of a round, in dB
type SnrStats struct {
	Count int     `json:"count" yaml:"count"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
}

// RateValues extracts the bps values in user order.
func RateValues(rates []model.UserRate) []float64 {
	values := make([]float64, len(rates))
	for i, r := range rates {
		values[i] = r.RateBps
	}
	return values
}

// MeanRate calculates the mean per-user rate in bps.
func MeanRate(rates []model.UserRate) float64 {
	if len(rates) == 0 {
		return 0
	}
	return stat.Mean(RateValues(rates), nil)
}

// JainFairness calculates (sum x)^2 / (n * sum x^2). Zero when no user has a rate.
func JainFairness(rates []model.UserRate) float64 {
	values := RateValues(rates)
	sumSq := floats.Dot(values, values)
	if len(values) == 0 || sumSq == 0 {
		return 0
	}
	sum := floats.Sum(values)
	return sum * sum / (float64(len(values)) * sumSq)
}

// SnrSummary calculates count, mean, min and max over the finite entries.
func SnrSummary(m model.SnrMatrix) SnrStats {
	finite := []float64{}
	for _, row := range m {
		for _, snr := range row {
			if !math.IsInf(snr, 0) && !math.IsNaN(snr) {
				finite = append(finite, snr)
			}
		}
	}
	if len(finite) == 0 {
		return SnrStats{Mean: math.Inf(-1), Min: math.Inf(-1), Max: math.Inf(-1)}
	}
	return SnrStats{
		Count: len(finite),
		Mean:  stat.Mean(finite, nil),
		Min:   floats.Min(finite),
		Max:   floats.Max(finite),
	}
}

// SurfaceLoad counts the users served by each surface.
func SurfaceLoad(assignment model.Assignment, numSurfaces int) []int {
	load := make([]int, numSurfaces)
	for _, e := range assignment {
		if e.SurfaceID >= 0 && e.SurfaceID < numSurfaces {
			load[e.SurfaceID]++
		}
	}
	return load
}

// AssignedRatio calculates the fraction of users with a serving surface.
func AssignedRatio(assignment model.Assignment) float64 {
	if len(assignment) == 0 {
		return 0
	}
	assigned := 0
	for _, e := range assignment {
		if e.Assigned() {
			assigned++
		}
	}
	return float64(assigned) / float64(len(assignment))
}
