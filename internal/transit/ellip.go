package transit

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

const (
	// ellipticPiMaxIterations caps the Bulirsch iteration for Π.
	ellipticPiMaxIterations = 100

	// ellipticPiTolerance is the relative AGM gap at which Π is returned.
	ellipticPiTolerance = 1e-10
)

// ellipticKE returns the complete elliptic integrals of the first and
// second kind for modulus k.
func ellipticKE(k float64) (kk, ek float64) {
	m := k * k
	return mathext.CompleteK(m), mathext.CompleteE(m)
}

// ellipticPi returns the complete elliptic integral of the third kind in
// the form
//
//	Π(n, k) = ∫₀^{π/2} dφ / ((1 + n·sin²φ)·√(1 - k²·sin²φ))
//
// using Bulirsch's cel algorithm. n must satisfy n > -1.
func ellipticPi(n, k float64) (float64, error) {
	kc := math.Sqrt(1 - k*k)
	p := math.Sqrt(n + 1)
	m0 := 1.0
	c := 1.0
	d := 1 / p
	e := kc

	gap := math.Inf(1)
	for i := 0; i < ellipticPiMaxIterations; i++ {
		f := c
		c = d/p + c
		g := e / p
		d = 2 * (f*g + d)
		p = g + p
		g = m0
		m0 = kc + m0
		gap = math.Abs(1 - kc/g)
		if gap <= ellipticPiTolerance {
			return math.Pi / 2 * (c*m0 + d) / (m0 * (m0 + p)), nil
		}
		kc = 2 * math.Sqrt(e)
		e = kc * m0
	}
	return 0, &ConvergenceError{Solver: "elliptic-pi", Input: n, Iterations: ellipticPiMaxIterations, Residual: gap}
}
