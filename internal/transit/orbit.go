package transit

import "math"

const (
	// DefaultKeplerTolerance is the Newton-Raphson step size, in radians,
	// below which the eccentric anomaly is considered converged.
	DefaultKeplerTolerance = 1e-8

	// DefaultKeplerMaxIterations caps the Newton-Raphson solve.
	DefaultKeplerMaxIterations = 100

	// radicandTolerance is how far below zero a square-root argument may
	// drift from rounding before it is treated as a domain error.
	radicandTolerance = 1e-12
)

// InitialGuess selects the starting point of the Kepler solve.
type InitialGuess int

const (
	// GuessMeanAnomaly starts the solve at E0 = M.
	GuessMeanAnomaly InitialGuess = iota
	// GuessPi starts the solve at E0 = π, which converges for any e < 1
	// and is the usual fallback for orbits close to parabolic.
	GuessPi
)

// Geometry is the sky-projected configuration at one time value.
type Geometry struct {
	// Z is the center-to-center separation in stellar radii.
	Z float64
	// InFront is true when the planet is between star and observer.
	InFront bool
}

// Resolver converts time values into projected separations.
// The zero value is not ready for use; call NewResolver.
type Resolver struct {
	Tolerance     float64
	MaxIterations int
	Guess         InitialGuess
}

// NewResolver returns a Resolver with the default tolerance and iteration cap.
func NewResolver() Resolver {
	return Resolver{
		Tolerance:     DefaultKeplerTolerance,
		MaxIterations: DefaultKeplerMaxIterations,
		Guess:         GuessMeanAnomaly,
	}
}

// Resolve returns the projected separation and visibility of the planet at t.
// p is assumed to have passed Validate.
func (r Resolver) Resolve(p Params, t float64) (Geometry, error) {
	f, err := r.TrueAnomaly(p, t)
	if err != nil {
		return Geometry{}, err
	}

	w := p.W * math.Pi / 180
	inc := p.Inc * math.Pi / 180

	dist := p.A * (1 - p.Ecc*p.Ecc) / (1 + p.Ecc*math.Cos(f))
	sinWF := math.Sin(w + f)
	sinInc := math.Sin(inc)

	radicand := 1 - sinWF*sinWF*sinInc*sinInc
	if radicand < 0 {
		if radicand < -radicandTolerance {
			return Geometry{}, &NumericalDomainError{Op: "sqrt", Arg: radicand, Z: dist, Ratio: p.Rp}
		}
		radicand = 0
	}

	return Geometry{
		Z:       dist * math.Sqrt(radicand),
		InFront: sinWF > 0,
	}, nil
}

// TrueAnomaly returns the true anomaly, in radians, at time t.
func (r Resolver) TrueAnomaly(p Params, t float64) (float64, error) {
	m := meanAnomaly(p, t)
	if p.Ecc == 0 {
		return m, nil
	}
	e, err := r.SolveKepler(m, p.Ecc)
	if err != nil {
		return 0, err
	}
	return trueFromEccentric(e, p.Ecc), nil
}

// SolveKepler solves M = E - e·sin(E) for the eccentric anomaly E.
func (r Resolver) SolveKepler(m, ecc float64) (float64, error) {
	tol := r.Tolerance
	if tol <= 0 {
		tol = DefaultKeplerTolerance
	}
	maxIter := r.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultKeplerMaxIterations
	}

	e := m
	if r.Guess == GuessPi {
		e = math.Pi
	}

	step := math.Inf(1)
	for i := 0; i < maxIter; i++ {
		step = (e - ecc*math.Sin(e) - m) / (1 - ecc*math.Cos(e))
		e -= step
		if math.Abs(step) < tol {
			return e, nil
		}
	}
	return 0, &ConvergenceError{Solver: "kepler", Input: m, Iterations: maxIter, Residual: math.Abs(step)}
}

// meanAnomaly returns M in [0, 2π) measured from the time of periastron.
func meanAnomaly(p Params, t float64) float64 {
	m := 2 * math.Pi * (t - TimeOfPeriastron(p)) / p.Per
	m = math.Mod(m, 2*math.Pi)
	if m < 0 {
		m += 2 * math.Pi
	}
	return m
}

// TimeOfPeriastron returns the periastron passage preceding or at T0.
// T0 is the inferior conjunction, where the true anomaly is π/2 - ω.
func TimeOfPeriastron(p Params) float64 {
	return p.T0 - p.Per*conjunctionMeanAnomaly(p, math.Pi/2)/(2*math.Pi)
}

// TimeOfSecondaryEclipse returns the superior conjunction following T0,
// where the planet passes behind the star.
func TimeOfSecondaryEclipse(p Params) float64 {
	tp := TimeOfPeriastron(p)
	ts := tp + p.Per*conjunctionMeanAnomaly(p, 3*math.Pi/2)/(2*math.Pi)
	for ts < p.T0 {
		ts += p.Per
	}
	for ts >= p.T0+p.Per {
		ts -= p.Per
	}
	return ts
}

// conjunctionMeanAnomaly returns the mean anomaly, in [0, 2π), at which
// ω + f equals phase.
func conjunctionMeanAnomaly(p Params, phase float64) float64 {
	f := phase - p.W*math.Pi/180
	ecc := p.Ecc
	e := 2 * math.Atan2(math.Sqrt(1-ecc)*math.Sin(f/2), math.Sqrt(1+ecc)*math.Cos(f/2))
	m := e - ecc*math.Sin(e)
	m = math.Mod(m, 2*math.Pi)
	if m < 0 {
		m += 2 * math.Pi
	}
	return m
}

func trueFromEccentric(e, ecc float64) float64 {
	return 2 * math.Atan2(math.Sqrt(1+ecc)*math.Sin(e/2), math.Sqrt(1-ecc)*math.Cos(e/2))
}
