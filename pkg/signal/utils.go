package signal

import (
	"math"
)

const (
	// Boltzmann constant in J/K
	Boltzmann = 1.38e-23
	// Temperature is the reference noise temperature in Kelvin
	Temperature = 290.0
)

// DbmToMw converts dBm to mW
func DbmToMw(dbm float64) float64 {
	return math.Pow(10, dbm/10)
}

// MwToDbm converts mW to dBm
func MwToDbm(mw float64) float64 {
	return 10 * math.Log10(mw)
}

// DbToLinear converts a dB ratio to linear scale. -Inf maps to exactly 0.
func DbToLinear(db float64) float64 {
	if math.IsInf(db, -1) {
		return 0
	}
	return math.Pow(10, db/10)
}

// LinearToDb converts a linear ratio to dB
func LinearToDb(linear float64) float64 {
	return 10 * math.Log10(linear)
}

// ThermalNoiseW returns the kTB noise floor in watts
func ThermalNoiseW(bandwidthHz float64) float64 {
	return Boltzmann * Temperature * bandwidthHz
}
