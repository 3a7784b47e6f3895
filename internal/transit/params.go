package transit

import "strings"

// Law names a limb-darkening law.
type Law string

// Supported limb-darkening laws.
const (
	LawQuadratic Law = "quadratic"
	LawLinear    Law = "linear"
	LawUniform   Law = "uniform"
)

// ValidLaws contains all supported limb-darkening laws.
var ValidLaws = []Law{LawQuadratic, LawLinear, LawUniform}

// IsValid reports whether l is a supported limb-darkening law.
func (l Law) IsValid() bool {
	for _, v := range ValidLaws {
		if l == v {
			return true
		}
	}
	return false
}

// Coefficients returns how many limb-darkening coefficients the law takes,
// or -1 for an unsupported law.
func (l Law) Coefficients() int {
	switch l {
	case LawQuadratic:
		return 2
	case LawLinear:
		return 1
	case LawUniform:
		return 0
	default:
		return -1
	}
}

// ValidLawsString returns a comma-separated list of valid laws for error messages.
func ValidLawsString() string {
	names := make([]string, len(ValidLaws))
	for i, l := range ValidLaws {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

// Params holds the physical inputs of one transit model. It is a value
// type: build a new Params (or use the With* helpers) to change inputs.
type Params struct {
	T0  float64 // time of inferior conjunction
	Per float64 // orbital period, same unit as T0
	Rp  float64 // planet radius in stellar radii
	A   float64 // semi-major axis in stellar radii
	Inc float64 // orbital inclination in degrees
	Ecc float64 // eccentricity
	W   float64 // longitude of periastron in degrees

	U   []float64 // limb-darkening coefficients
	Law Law
}

// NewParams returns a Params owning a private copy of u.
func NewParams(t0, per, rp, a, inc, ecc, w float64, law Law, u ...float64) Params {
	return Params{
		T0:  t0,
		Per: per,
		Rp:  rp,
		A:   a,
		Inc: inc,
		Ecc: ecc,
		W:   w,
		U:   append([]float64(nil), u...),
		Law: law,
	}
}

// WithU returns a copy of p with new limb-darkening coefficients.
func (p Params) WithU(law Law, u ...float64) Params {
	p.Law = law
	p.U = append([]float64(nil), u...)
	return p
}

// clone returns p with a U slice that is not shared with the caller.
func (p Params) clone() Params {
	p.U = append([]float64(nil), p.U...)
	return p
}
