package signal

import (
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// LogDistance is the log-distance path loss model
// PL(d) = RefLossDb + 10*Exponent*log10(d/RefDistance)
type LogDistance struct {
	RefDistance float64 // meters
	Exponent    float64
	RefLossDb   float64
}

// DefaultLogDistance returns d0 = 1 m, n = 2.7, PL0 = 40 dB
func DefaultLogDistance() LogDistance {
	return LogDistance{
		RefDistance: 1,
		Exponent:    2.7,
		RefLossDb:   40,
	}
}

// PathLossDb returns the loss at distance d. Non-positive distances yield
// math.MaxFloat64.
func (m LogDistance) PathLossDb(d float64) float64 {
	if d <= 0 {
		log.Warnf("Invalid distance %v for path loss, returning max loss", d)
		return math.MaxFloat64
	}
	return m.RefLossDb + 10*m.Exponent*math.Log10(d/m.RefDistance)
}

// PathLossBetween returns the loss between two positions
func (m LogDistance) PathLossBetween(a, b r3.Vec) float64 {
	return m.PathLossDb(Distance(a, b))
}

// ComputePathLossDb returns the default log-distance loss between two positions
func ComputePathLossDb(a, b r3.Vec) float64 {
	return DefaultLogDistance().PathLossBetween(a, b)
}

// ReceivedPowerDbm returns tx power minus the default path loss
func ReceivedPowerDbm(txPowerDbm float64, a, b r3.Vec) float64 {
	pl := ComputePathLossDb(a, b)
	if pl == math.MaxFloat64 {
		return math.Inf(-1)
	}
	return txPowerDbm - pl
}

// Distance is the 3D Euclidean distance in meters
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}
