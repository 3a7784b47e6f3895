package transit

import "math"

const (
	// domainTolerance bounds how far an acos or sqrt argument may stray
	// outside its domain from rounding before it is reported.
	domainTolerance = 1e-12

	// singularTolerance is the distance from z = p or z = 1 - p within
	// which the limiting closed form replaces the general one.
	singularTolerance = 1e-9
)

// QuadraticFlux returns the relative flux of a star with quadratic limb
// darkening I(μ) = 1 - u1(1-μ) - u2(1-μ)² occulted by an opaque disk of
// radius p (stellar radii) at center separation z. It follows the closed
// form of Mandel & Agol (2002).
func QuadraticFlux(z, p, u1, u2 float64) (float64, error) {
	if z < 0 {
		z = -z
	}
	if p == 0 || z >= 1+p {
		return 1, nil
	}
	if p >= 1 && z <= p-1 {
		return 0, nil
	}

	occ, err := occultQuadratic(z, p)
	if err != nil {
		return 0, err
	}

	theta := 0.0
	if occ.coversCenter {
		theta = 2.0 / 3.0
	}
	omega := 1 - u1/3 - u2/6
	flux := 1 - ((1-u1-2*u2)*occ.lambdaE+(u1+2*u2)*(occ.lambdaD+theta)+u2*occ.etaD)/omega
	return flux, nil
}

// occultation holds the Mandel & Agol λ and η terms for one (z, p).
type occultation struct {
	lambdaE      float64 // uniform-disk blocked fraction
	lambdaD      float64
	etaD         float64
	coversCenter bool // Θ(p - z)
}

func occultQuadratic(z, p float64) (occultation, error) {
	a := (z - p) * (z - p)
	b := (z + p) * (z + p)
	q := p*p - z*z

	var o occultation

	// Uniform-disk terms and η1 for a planet crossing the limb.
	var kap0, kap1 float64
	crossesLimb := z >= math.Abs(1-p) && z <= 1+p
	if crossesLimb {
		var err error
		kap1, err = safeAcos((1-p*p+z*z)/(2*z), z, p)
		if err != nil {
			return o, err
		}
		kap0, err = safeAcos((p*p+z*z-1)/(2*p*z), z, p)
		if err != nil {
			return o, err
		}
		chord, err := safeSqrt(4*z*z-(1+z*z-p*p)*(1+z*z-p*p), z, p)
		if err != nil {
			return o, err
		}
		o.lambdaE = (p*p*kap0 + kap1 - 0.5*chord) / math.Pi
	}
	eta1 := func() (float64, error) {
		s, err := safeSqrt((1-a)*(b-1), z, p)
		if err != nil {
			return 0, err
		}
		return (kap1 + p*p*(p*p+2*z*z)*kap0 - (1+5*p*p+z*z)/4*s) / (2 * math.Pi), nil
	}
	eta2 := p * p / 2 * (p*p + 2*z*z)

	// Planet edge passes through the stellar center: removable singularity.
	if math.Abs(z-p) <= singularTolerance {
		z = p
		switch {
		case p < 0.5:
			kk, ek := ellipticKE(2 * p)
			o.lambdaD = 1.0/3 + 2/(9*math.Pi)*(4*(2*p*p-1)*ek+(1-4*p*p)*kk)
			o.etaD = p * p / 2 * (p*p + 2*z*z)
			o.lambdaE = p * p
		case p > 0.5:
			kk, ek := ellipticKE(0.5 / p)
			o.lambdaD = 1.0/3 + 16*p/(9*math.Pi)*(2*p*p-1)*ek - (32*p*p*p*p-20*p*p+3)/(9*math.Pi*p)*kk
			eta, err := eta1()
			if err != nil {
				return o, err
			}
			o.etaD = eta
		default:
			o.lambdaD = 1.0/3 - 4/(9*math.Pi)
			o.etaD = 3.0 / 32
			o.lambdaE = p * p
		}
		return o, nil
	}

	// Planet touches the limb from inside.
	if p < 1 && math.Abs(z-(1-p)) <= singularTolerance {
		o.lambdaD = 2/(3*math.Pi)*math.Acos(1-2*p) - 4/(9*math.Pi)*math.Sqrt(p*(1-p))*(3+2*p-8*p*p)
		if p > 0.5 {
			o.lambdaD -= 2.0 / 3
		}
		o.etaD = eta2
		o.lambdaE = p * p
		o.coversCenter = p > z
		return o, nil
	}

	// Partial overlap across the limb.
	if crossesLimb && z > math.Abs(1-p) {
		k, err := safeSqrt((1-a)/(4*z*p), z, p)
		if err != nil {
			return o, err
		}
		if k > 1 {
			k = 1
		}
		kk, ek := ellipticKE(k)
		pk, err := ellipticPi(1/a-1, k)
		if err != nil {
			return o, err
		}
		o.lambdaD = 1 / (9 * math.Pi * math.Sqrt(p*z)) *
			(((1-b)*(2*b+a-3)-3*q*(b-2))*kk + 4*p*z*(z*z+7*p*p-4)*ek - 3*q/a*pk)
		eta, err := eta1()
		if err != nil {
			return o, err
		}
		o.etaD = eta
		o.coversCenter = p > z
		return o, nil
	}

	// Planet fully inside the stellar disk.
	k, err := safeSqrt((b-a)/(1-a), z, p)
	if err != nil {
		return o, err
	}
	if k > 1 {
		k = 1
	}
	kk, ek := ellipticKE(k)
	pk, err := ellipticPi(b/a-1, k)
	if err != nil {
		return o, err
	}
	o.lambdaD = 2 / (9 * math.Pi * math.Sqrt(1-a)) *
		((1-5*z*z+p*p+q*q)*kk + (1-a)*(z*z+7*p*p-4)*ek - 3*q/a*pk)
	o.etaD = eta2
	o.lambdaE = p * p
	o.coversCenter = p > z
	return o, nil
}

// safeAcos clamps x into [-1, 1] when it strays by less than the tolerance.
func safeAcos(x, z, p float64) (float64, error) {
	if x > 1 {
		if x-1 > domainTolerance*math.Max(1, math.Abs(x)) {
			return 0, &NumericalDomainError{Op: "acos", Arg: x, Z: z, Ratio: p}
		}
		x = 1
	} else if x < -1 {
		if -1-x > domainTolerance*math.Max(1, math.Abs(x)) {
			return 0, &NumericalDomainError{Op: "acos", Arg: x, Z: z, Ratio: p}
		}
		x = -1
	}
	return math.Acos(x), nil
}

// safeSqrt clamps small negative arguments to zero.
func safeSqrt(x, z, p float64) (float64, error) {
	if x < 0 {
		if x < -domainTolerance*math.Max(1, z+p) {
			return 0, &NumericalDomainError{Op: "sqrt", Arg: x, Z: z, Ratio: p}
		}
		return 0, nil
	}
	return math.Sqrt(x), nil
}
