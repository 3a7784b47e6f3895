package transit

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wasp50b returns the WASP-50 b parameter set used throughout the tests.
func wasp50b() Params {
	return NewParams(0, 1.955, 0.1368, 7.326, 84.74, 0.009, 44, LawQuadratic, 0.4, 0.26)
}

func TestValidate_Accepts(t *testing.T) {
	t.Parallel()

	cases := map[string]Params{
		"wasp50b":       wasp50b(),
		"circular":      NewParams(0, 3, 0.1, 10, 90, 0, 90, LawQuadratic, 0.3, 0.2),
		"linear":        wasp50b().WithU(LawLinear, 0.5),
		"uniform":       wasp50b().WithU(LawUniform),
		"grazing large": NewParams(0, 1, 1.5, 2, 0, 0.5, -120, LawQuadratic, 0.1, 0.1),
		"retrograde":    NewParams(0, 1, 0.1, 5, 180, 0, 0, LawQuadratic, 0.1, 0.1),
	}
	for name, p := range cases {
		p := p
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.NoError(t, Validate(p))
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		mod   func(p Params) Params
		param string
	}{
		{"ecc equal to one", func(p Params) Params { p.Ecc = 1.0; return p }, "ecc"},
		{"negative ecc", func(p Params) Params { p.Ecc = -0.1; return p }, "ecc"},
		{"negative rp", func(p Params) Params { p.Rp = -0.1; return p }, "rp"},
		{"zero rp", func(p Params) Params { p.Rp = 0; return p }, "rp"},
		{"zero period", func(p Params) Params { p.Per = 0; return p }, "per"},
		{"negative period", func(p Params) Params { p.Per = -1.955; return p }, "per"},
		{"negative a", func(p Params) Params { p.A = -7; return p }, "a"},
		{"inclination above 180", func(p Params) Params { p.Inc = 180.5; return p }, "inc"},
		{"negative inclination", func(p Params) Params { p.Inc = -1; return p }, "inc"},
		{"NaN t0", func(p Params) Params { p.T0 = math.NaN(); return p }, "t0"},
		{"infinite w", func(p Params) Params { p.W = math.Inf(1); return p }, "w"},
		{"one quadratic coefficient", func(p Params) Params { return p.WithU(LawQuadratic, 0.4) }, "u"},
		{"three quadratic coefficients", func(p Params) Params { return p.WithU(LawQuadratic, 0.4, 0.2, 0.1) }, "u"},
		{"coefficients for uniform", func(p Params) Params { return p.WithU(LawUniform, 0.4) }, "u"},
		{"unsupported law", func(p Params) Params { return p.WithU(Law("nonlinear"), 0.1, 0.2, 0.3, 0.4) }, "limb_dark"},
		{"NaN coefficient", func(p Params) Params { return p.WithU(LawQuadratic, 0.4, math.NaN()) }, "u[1]"},
		{"zero mean intensity", func(p Params) Params { return p.WithU(LawLinear, 3) }, "u"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tc.mod(wasp50b()))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameter))

			var ipe *InvalidParameterError
			require.True(t, errors.As(err, &ipe))
			assert.Equal(t, tc.param, ipe.Param)
			assert.Contains(t, err.Error(), tc.param)
		})
	}
}

func TestLaw(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, LawQuadratic.Coefficients())
	assert.Equal(t, 1, LawLinear.Coefficients())
	assert.Equal(t, 0, LawUniform.Coefficients())
	assert.Equal(t, -1, Law("power2").Coefficients())
	assert.False(t, Law("").IsValid())
	assert.Equal(t, "quadratic, linear, uniform", ValidLawsString())
}

func TestParams_CopiesCoefficients(t *testing.T) {
	t.Parallel()

	u := []float64{0.4, 0.26}
	p := NewParams(0, 1, 0.1, 5, 89, 0, 90, LawQuadratic, u...)
	u[0] = 99
	assert.Equal(t, 0.4, p.U[0])

	q := p.WithU(LawLinear, 0.6)
	assert.Equal(t, LawQuadratic, p.Law, "WithU must not modify the receiver")
	assert.Equal(t, []float64{0.4, 0.26}, p.U)
	assert.Equal(t, []float64{0.6}, q.U)
}
