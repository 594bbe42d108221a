package signal

import (
	"math"

	"github.com/davidkleiven/gononlin/nonlin"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// CoverageRadius returns the distance at which the path loss reaches
// maxLossDb. The solver works on x = log10(d).
func (m LogDistance) CoverageRadius(maxLossDb float64) (float64, error) {
	if m.Exponent <= 0 || m.RefDistance <= 0 {
		return 0, errors.NewInvalid("invalid log-distance parameters %+v", m)
	}

	problem := nonlin.Problem{
		F: func(out, x []float64) {
			out[0] = m.RefLossDb + 10*m.Exponent*(x[0]-math.Log10(m.RefDistance)) - maxLossDb
		},
	}

	solver := nonlin.NewtonKrylov{
		// Maximum number of Newton iterations
		Maxiter: 20,

		// Stepsize used to approximate jacobian with finite differences
		StepSize: 1e-4,

		// Tolerance for the solution
		Tol: 1e-9,
	}

	x0 := []float64{math.Log10(m.RefDistance)}
	res, err := solver.Solve(problem, x0)
	if err != nil {
		return 0, errors.NewInternal("coverage radius: %v", err)
	}
	log.Debugf("coverage solve: x0 %v res %v converged %v", x0, res.X, res.Converged)
	if !res.Converged {
		return 0, errors.NewInternal("coverage radius did not converge for %v dB", maxLossDb)
	}
	return math.Pow(10, res.X[0]), nil
}

// CoverageRadiusClosedForm inverts the log-distance model directly
func (m LogDistance) CoverageRadiusClosedForm(maxLossDb float64) float64 {
	return m.RefDistance * math.Pow(10, (maxLossDb-m.RefLossDb)/(10*m.Exponent))
}
