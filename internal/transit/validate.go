package transit

import (
	"fmt"
	"math"
)

// Validate checks p for physical and numerical validity. It returns an
// *InvalidParameterError naming the first offending field.
func Validate(p Params) error {
	finite := []struct {
		name string
		v    float64
	}{
		{"t0", p.T0}, {"per", p.Per}, {"rp", p.Rp}, {"a", p.A},
		{"inc", p.Inc}, {"ecc", p.Ecc}, {"w", p.W},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &InvalidParameterError{Param: f.name, Value: f.v, Reason: "must be finite"}
		}
	}

	if p.Per <= 0 {
		return &InvalidParameterError{Param: "per", Value: p.Per, Reason: "orbital period must be positive"}
	}
	if p.A <= 0 {
		return &InvalidParameterError{Param: "a", Value: p.A, Reason: "semi-major axis must be positive"}
	}
	if p.Rp <= 0 {
		return &InvalidParameterError{Param: "rp", Value: p.Rp, Reason: "radius ratio must be positive"}
	}
	if p.Ecc < 0 || p.Ecc >= 1 {
		return &InvalidParameterError{Param: "ecc", Value: p.Ecc, Reason: "eccentricity must be in [0, 1)"}
	}
	if p.Inc < 0 || p.Inc > 180 {
		return &InvalidParameterError{Param: "inc", Value: p.Inc, Reason: "inclination must be in [0, 180] degrees"}
	}

	if !p.Law.IsValid() {
		return &InvalidParameterError{
			Param:  "limb_dark",
			Value:  p.Law,
			Reason: fmt.Sprintf("unsupported law, expected one of: %s", ValidLawsString()),
		}
	}
	if want := p.Law.Coefficients(); len(p.U) != want {
		return &InvalidParameterError{
			Param:  "u",
			Value:  p.U,
			Reason: fmt.Sprintf("%s law takes %d coefficients, got %d", p.Law, want, len(p.U)),
		}
	}
	for i, u := range p.U {
		if math.IsNaN(u) || math.IsInf(u, 0) {
			return &InvalidParameterError{Param: fmt.Sprintf("u[%d]", i), Value: u, Reason: "must be finite"}
		}
	}
	u1, u2 := quadraticCoefficients(p.Law, p.U)
	if 1-u1/3-u2/6 == 0 {
		return &InvalidParameterError{Param: "u", Value: p.U, Reason: "coefficients give a disk of zero mean intensity"}
	}

	return nil
}
