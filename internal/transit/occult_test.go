package transit

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/integrate/quad"
)

// numericalFlux integrates the quadratic intensity profile over the part of
// the stellar disk covered by the planet. Only valid for z > p, where the
// planet does not cover the stellar center.
func numericalFlux(z, p, u1, u2 float64) float64 {
	lo, hi := z-p, math.Min(1, z+p)
	if hi <= lo {
		return 1
	}
	intensity := func(r float64) float64 {
		mu := math.Sqrt(math.Max(0, 1-r*r))
		return 1 - u1*(1-mu) - u2*(1-mu)*(1-mu)
	}
	// r = lo + (hi-lo)(1-cos s)/2 removes the square-root endpoints.
	integrand := func(s float64) float64 {
		r := lo + (hi-lo)*(1-math.Cos(s))/2
		dr := (hi - lo) * math.Sin(s) / 2
		c := (r*r + z*z - p*p) / (2 * r * z)
		var arc float64
		switch {
		case c <= -1:
			arc = math.Pi
		case c >= 1:
			arc = 0
		default:
			arc = math.Acos(c)
		}
		return intensity(r) * 2 * r * arc * dr
	}
	blocked := quad.Fixed(integrand, 0, math.Pi, 256, nil, 0)
	return 1 - blocked/(math.Pi*(1-u1/3-u2/6))
}

func TestQuadraticFlux_MatchesNumericalIntegration(t *testing.T) {
	t.Parallel()

	for _, p := range []float64{0.1, 0.1368, 0.2} {
		for _, z := range []float64{0.3, 0.5, 0.7, 0.95, 1.0, 1.05, 1.1} {
			t.Run(fmt.Sprintf("p=%g/z=%g", p, z), func(t *testing.T) {
				got, err := QuadraticFlux(z, p, 0.4, 0.26)
				require.NoError(t, err)
				assert.InDelta(t, numericalFlux(z, p, 0.4, 0.26), got, 1e-8)
			})
		}
	}
}

func TestQuadraticFlux_NoOverlapIsExactlyOne(t *testing.T) {
	t.Parallel()

	for _, p := range []float64{0.01, 0.1368, 0.5, 1.3} {
		for _, dz := range []float64{0, 1e-12, 0.1, 5, 1e6} {
			f, err := QuadraticFlux(1+p+dz, p, 0.4, 0.26)
			require.NoError(t, err)
			assert.Equal(t, 1.0, f, "p=%g z=%g", p, 1+p+dz)
		}
	}
}

func TestQuadraticFlux_NoPlanet(t *testing.T) {
	t.Parallel()

	for _, z := range []float64{0, 0.3, 1, 2} {
		f, err := QuadraticFlux(z, 0, 0.4, 0.26)
		require.NoError(t, err)
		assert.Equal(t, 1.0, f)
	}
}

func TestQuadraticFlux_TotalOcclusion(t *testing.T) {
	t.Parallel()

	for _, z := range []float64{0, 0.1, 0.5} {
		f, err := QuadraticFlux(z, 1.5, 0.4, 0.26)
		require.NoError(t, err)
		assert.Equal(t, 0.0, f)
	}
}

func TestQuadraticFlux_CentralTransit(t *testing.T) {
	t.Parallel()

	// At z = 0 the blocked light has a closed form:
	//   1 - [(1-u1-2u2)p² + (u1+2u2)·⅔(1-(1-p²)^{3/2}) + u2·p⁴/2] / Ω
	p, u1, u2 := 0.1368, 0.4, 0.26
	omega := 1 - u1/3 - u2/6
	want := 1 - ((1-u1-2*u2)*p*p+(u1+2*u2)*2.0/3*(1-math.Pow(1-p*p, 1.5))+u2*p*p*p*p/2)/omega

	got, err := QuadraticFlux(0, p, u1, u2)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
}

func TestQuadraticFlux_Continuity(t *testing.T) {
	t.Parallel()

	const eps = 1e-7
	for _, p := range []float64{0.01, 0.05, 0.1368, 0.3, 0.49, 0.5, 0.51, 0.7, 0.9, 1.0, 1.2} {
		boundaries := map[string]float64{
			"second contact": math.Abs(1 - p),
			"edge at center": p,
			"first contact":  1 + p,
		}
		for name, b := range boundaries {
			if b-eps < 0 {
				continue
			}
			t.Run(fmt.Sprintf("p=%g/%s", p, name), func(t *testing.T) {
				below, err := QuadraticFlux(b-eps, p, 0.4, 0.26)
				require.NoError(t, err)
				at, err := QuadraticFlux(b, p, 0.4, 0.26)
				require.NoError(t, err)
				above, err := QuadraticFlux(b+eps, p, 0.4, 0.26)
				require.NoError(t, err)

				assert.InDelta(t, below, above, 1e-6)
				assert.InDelta(t, below, at, 1e-6)
			})
		}
	}
}

func TestQuadraticFlux_RangeAndMonotonic(t *testing.T) {
	t.Parallel()

	// Flux rises monotonically from the center outwards for a darkened star.
	p := 0.1368
	prev := 0.0
	for i := 0; i <= 1200; i++ {
		z := float64(i) / 1000
		f, err := QuadraticFlux(z, p, 0.4, 0.26)
		require.NoError(t, err)
		assert.Greater(t, f, 0.0)
		assert.LessOrEqual(t, f, 1.0)
		assert.GreaterOrEqual(t, f, prev-1e-12, "z=%g", z)
		prev = f
	}
}

func TestLimbDarkeningVariants(t *testing.T) {
	t.Parallel()

	for _, p := range []float64{0.05, 0.1368, 0.5, 0.8} {
		for _, z := range []float64{0, 0.02, p, 0.6, 1 - p, 0.95, 1 + p/2} {
			uniform, err := Uniform{}.Flux(z, p)
			require.NoError(t, err)
			flat, err := QuadraticFlux(z, p, 0, 0)
			require.NoError(t, err)
			assert.InDelta(t, flat, uniform, 1e-12, "uniform p=%g z=%g", p, z)

			linear, err := Linear{U: 0.6}.Flux(z, p)
			require.NoError(t, err)
			quadratic, err := Quadratic{U1: 0.6}.Flux(z, p)
			require.NoError(t, err)
			assert.Equal(t, quadratic, linear, "linear p=%g z=%g", p, z)
		}
	}
}

func TestLawOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Quadratic{U1: 0.4, U2: 0.26}, LawOf(wasp50b()))
	assert.Equal(t, Linear{U: 0.5}, LawOf(wasp50b().WithU(LawLinear, 0.5)))
	assert.Equal(t, Uniform{}, LawOf(wasp50b().WithU(LawUniform)))
}

func TestSafeAcos(t *testing.T) {
	t.Parallel()

	v, err := safeAcos(1+1e-14, 0.5, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = safeAcos(-1-1e-14, 0.5, 0.1)
	require.NoError(t, err)
	assert.Equal(t, math.Pi, v)

	_, err = safeAcos(1.001, 0.5, 0.1)
	require.Error(t, err)
	var nde *NumericalDomainError
	require.True(t, errors.As(err, &nde))
	assert.Equal(t, "acos", nde.Op)
	assert.True(t, errors.Is(err, ErrNumericalDomain))
}

func TestSafeSqrt(t *testing.T) {
	t.Parallel()

	v, err := safeSqrt(-1e-15, 0.5, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = safeSqrt(-1e-6, 0.5, 0.1)
	assert.ErrorIs(t, err, ErrNumericalDomain)
}

func TestEllipticPi(t *testing.T) {
	t.Parallel()

	// Π(0, k) reduces to K(k).
	for _, k := range []float64{0, 0.3, 0.9} {
		pi, err := ellipticPi(0, k)
		require.NoError(t, err)
		kk, _ := ellipticKE(k)
		assert.InDelta(t, kk, pi, 1e-12, "k=%g", k)
	}

	// Π(n, 0) = π / (2·√(1+n)).
	pi, err := ellipticPi(3, 0)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/4, pi, 1e-12)

	// k = 1 never closes the AGM gap.
	_, err = ellipticPi(0.5, 1)
	assert.ErrorIs(t, err, ErrNoConvergence)
}
