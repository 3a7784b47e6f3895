package transit

import "math"

// LimbDarkening maps a projected separation z and radius ratio p to the
// relative flux of the occulted star.
type LimbDarkening interface {
	Flux(z, p float64) (float64, error)
}

// Quadratic is the law I(μ) = 1 - U1(1-μ) - U2(1-μ)².
type Quadratic struct {
	U1, U2 float64
}

// Flux implements LimbDarkening.
func (q Quadratic) Flux(z, p float64) (float64, error) {
	return QuadraticFlux(z, p, q.U1, q.U2)
}

// Linear is the law I(μ) = 1 - U(1-μ).
type Linear struct {
	U float64
}

// Flux implements LimbDarkening.
func (l Linear) Flux(z, p float64) (float64, error) {
	return QuadraticFlux(z, p, l.U, 0)
}

// Uniform is an undarkened stellar disk.
type Uniform struct{}

// Flux implements LimbDarkening. Only the uniform-disk term of the closed
// form contributes, so the elliptic integrals are skipped.
func (Uniform) Flux(z, p float64) (float64, error) {
	if z < 0 {
		z = -z
	}
	if p == 0 || z >= 1+p {
		return 1, nil
	}
	if p >= 1 && z <= p-1 {
		return 0, nil
	}
	if p < 1 && z <= 1-p {
		return 1 - p*p, nil
	}
	kap1, err := safeAcos((1-p*p+z*z)/(2*z), z, p)
	if err != nil {
		return 0, err
	}
	kap0, err := safeAcos((p*p+z*z-1)/(2*p*z), z, p)
	if err != nil {
		return 0, err
	}
	chord, err := safeSqrt(4*z*z-(1+z*z-p*p)*(1+z*z-p*p), z, p)
	if err != nil {
		return 0, err
	}
	return 1 - (p*p*kap0+kap1-0.5*chord)/math.Pi, nil
}

// LawOf returns the LimbDarkening variant described by p.Law and p.U.
// p is assumed to have passed Validate.
func LawOf(p Params) LimbDarkening {
	switch p.Law {
	case LawLinear:
		return Linear{U: p.U[0]}
	case LawUniform:
		return Uniform{}
	default:
		return Quadratic{U1: p.U[0], U2: p.U[1]}
	}
}

// quadraticCoefficients expresses any supported law as quadratic (u1, u2).
func quadraticCoefficients(law Law, u []float64) (u1, u2 float64) {
	switch law {
	case LawQuadratic:
		return u[0], u[1]
	case LawLinear:
		return u[0], 0
	default:
		return 0, 0
	}
}
