// Package report renders synthesized light curves as PNG plots,
// interactive HTML charts, and CSV tables.
package report

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Series is one light curve: flux sampled at the given times.
type Series struct {
	Name  string
	Times []float64
	Flux  []float64
}

// Validate checks the series is non-empty and index aligned.
func (s Series) Validate() error {
	if len(s.Times) != len(s.Flux) {
		return fmt.Errorf("series %q: %d times but %d flux values", s.Name, len(s.Times), len(s.Flux))
	}
	if len(s.Times) == 0 {
		return fmt.Errorf("series %q is empty", s.Name)
	}
	return nil
}

// Summary describes the deepest point of a light curve.
type Summary struct {
	Samples int
	MinFlux float64
	MinTime float64
	Depth   float64 // 1 - MinFlux
}

// Summarize returns the transit minimum of s.
func Summarize(s Series) (Summary, error) {
	if err := s.Validate(); err != nil {
		return Summary{}, err
	}
	i := floats.MinIdx(s.Flux)
	return Summary{
		Samples: len(s.Flux),
		MinFlux: s.Flux[i],
		MinTime: s.Times[i],
		Depth:   1 - s.Flux[i],
	}, nil
}

func validateAll(series []Series) error {
	if len(series) == 0 {
		return fmt.Errorf("no series to render")
	}
	for _, s := range series {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
