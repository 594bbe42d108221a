package signal

import (
	"math"
	"math/rand"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// ChannelModel aggregates the cascaded user-surface-receiver response over
// the elements of a surface.
type ChannelModel interface {
	// ComputeGain returns sum_i h_i*theta_i*g_i drawn from rnd
	ComputeGain(user, surface r3.Vec, numElements int, rnd *rand.Rand) complex128
	// Name identifies the model in reports
	Name() string
}

// UniformChannel draws the real and imaginary part of every coefficient
// uniformly from [0,1). Positions are not used.
type UniformChannel struct{}

// ComputeGain draws h.re, h.im, g.re, g.im, theta.re, theta.im per element
func (UniformChannel) ComputeGain(_, _ r3.Vec, numElements int, rnd *rand.Rand) complex128 {
	var sum complex128
	for i := 0; i < numElements; i++ {
		h := complex(rnd.Float64(), rnd.Float64())
		g := complex(rnd.Float64(), rnd.Float64())
		theta := complex(rnd.Float64(), rnd.Float64())
		sum += h * theta * g
	}
	return sum
}

func (UniformChannel) Name() string {
	return "uniform"
}

// PowerGain returns |c|^2
func PowerGain(c complex128) float64 {
	return real(c)*real(c) + imag(c)*imag(c)
}

// SnrFromGainDb converts a power gain into SNR in dB for the given tx power
// and noise floor
func SnrFromGainDb(txPowerDbm, gain, noisePowerW float64) float64 {
	txPowerW := DbmToMw(txPowerDbm)
	return LinearToDb(txPowerW * gain / noisePowerW)
}

// ComputeSnrDb returns the SNR of one user-surface link with the uniform
// channel. Zero elements yield -Inf.
func ComputeSnrDb(txPowerDbm float64, user, surface r3.Vec, numElements int, noisePowerW float64, rnd *rand.Rand) float64 {
	return ComputeSnrDbWith(UniformChannel{}, txPowerDbm, user, surface, numElements, noisePowerW, rnd)
}

// ComputeSnrDbWith is ComputeSnrDb for an arbitrary channel model
func ComputeSnrDbWith(ch ChannelModel, txPowerDbm float64, user, surface r3.Vec, numElements int, noisePowerW float64, rnd *rand.Rand) float64 {
	if numElements <= 0 {
		log.Debugf("No elements between %v and %v", user, surface)
		return math.Inf(-1)
	}
	gain := PowerGain(ch.ComputeGain(user, surface, numElements, rnd))
	snr := SnrFromGainDb(txPowerDbm, gain, noisePowerW)
	log.Debugf("user %v surface %v: gain %v snr %v dB", user, surface, gain, snr)
	return snr
}
