package signal

import (
	"math"
	"math/cmplx"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultRiceanKDb is the K-factor used for NLOS-dominated links
const DefaultRiceanKDb = 9.0

// RicianRandom draws a complex Rician coefficient with non-centrality nu and
// per-component scale sigma.
func RicianRandom(nu, sigma float64, rnd *rand.Rand) complex128 {
	x := (sigma * rnd.NormFloat64()) + nu
	y := sigma * rnd.NormFloat64()
	return complex(x, y)
}

// Calculate nu and sigma from K-factor
func calculateNuSigma(K float64) (float64, float64) {
	// Assume total power P = 1
	sigma := math.Sqrt(1 / (2 * (K + 1)))
	nu := math.Sqrt(K / (K + 1))
	return nu, sigma
}

// RicianChannel draws h_i and g_i from a unit-power Rician distribution and
// constrains theta_i to a unit-magnitude phase rotation.
type RicianChannel struct {
	KFactorDb float64
}

// NewRicianChannel returns a Rician channel with the default K-factor
func NewRicianChannel() RicianChannel {
	return RicianChannel{KFactorDb: DefaultRiceanKDb}
}

// ComputeGain draws h, g, then the phase of theta per element
func (c RicianChannel) ComputeGain(_, _ r3.Vec, numElements int, rnd *rand.Rand) complex128 {
	nu, sigma := calculateNuSigma(DbToLinear(c.KFactorDb))
	var sum complex128
	for i := 0; i < numElements; i++ {
		h := RicianRandom(nu, sigma, rnd)
		g := RicianRandom(nu, sigma, rnd)
		theta := cmplx.Rect(1, 2*math.Pi*rnd.Float64())
		sum += h * theta * g
	}
	return sum
}

func (RicianChannel) Name() string {
	return "rician"
}
