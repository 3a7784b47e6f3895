// Package timegrid builds the evenly spaced time samples a light curve is
// evaluated on.
package timegrid

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// MaxSamples caps the size of a parsed grid.
const MaxSamples = 10_000_000

// Spec defines a closed interval sampled at N evenly spaced points.
type Spec struct {
	Start float64
	End   float64
	N     int
}

// ParseSpec parses a "start:end:n" string into a Spec.
func ParseSpec(s string) (Spec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Spec{}, fmt.Errorf("invalid grid format %q: expected start:end:n", s)
	}

	start, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid start value %q: %w", parts[0], err)
	}

	end, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid end value %q: %w", parts[1], err)
	}

	n, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return Spec{}, fmt.Errorf("invalid sample count %q: %w", parts[2], err)
	}

	spec := Spec{Start: start, End: end, N: n}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// Validate checks the bounds are finite and the count is usable.
func (s Spec) Validate() error {
	if math.IsNaN(s.Start) || math.IsInf(s.Start, 0) || math.IsNaN(s.End) || math.IsInf(s.End, 0) {
		return fmt.Errorf("grid bounds must be finite, got %g:%g", s.Start, s.End)
	}
	if s.N < 1 {
		return fmt.Errorf("sample count must be positive, got %d", s.N)
	}
	if s.N > MaxSamples {
		return fmt.Errorf("sample count %d exceeds limit of %d", s.N, MaxSamples)
	}
	if s.N == 1 && s.Start != s.End {
		return fmt.Errorf("a single sample needs start == end, got %g:%g", s.Start, s.End)
	}
	return nil
}

// Times returns the grid described by the spec.
func (s Spec) Times() []float64 {
	return Linspace(s.Start, s.End, s.N)
}

// String formats the spec the way ParseSpec reads it.
func (s Spec) String() string {
	return strconv.FormatFloat(s.Start, 'g', -1, 64) + ":" +
		strconv.FormatFloat(s.End, 'g', -1, 64) + ":" + strconv.Itoa(s.N)
}

// Linspace returns n evenly spaced values from start to end inclusive.
// n < 1 gives an empty grid and n == 1 gives {start}.
func Linspace(start, end float64, n int) []float64 {
	switch {
	case n < 1:
		return []float64{}
	case n == 1:
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, end)
}

// Around returns n samples spanning halfWidth either side of center, the
// usual window for a single transit.
func Around(center, halfWidth float64, n int) []float64 {
	return Linspace(center-halfWidth, center+halfWidth, n)
}
