package transit

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// SupersampleTimes expands every time value into n sub-times spread evenly
// across [t - expTime/2, t + expTime/2]. Sub-times for times[i] occupy
// indices [i*n, (i+1)*n) of the result. n <= 1 returns a copy of times.
func SupersampleTimes(times []float64, expTime float64, n int) ([]float64, error) {
	if n <= 1 {
		return append([]float64(nil), times...), nil
	}
	if expTime <= 0 {
		return nil, &InvalidParameterError{Param: "exp_time", Value: expTime, Reason: "exposure time must be positive when supersampling"}
	}

	offsets := floats.Span(make([]float64, n), -expTime/2, expTime/2)
	out := make([]float64, 0, len(times)*n)
	for _, t := range times {
		for _, off := range offsets {
			out = append(out, t+off)
		}
	}
	return out, nil
}

// BinAverage averages consecutive blocks of n values, undoing the
// expansion of SupersampleTimes.
func BinAverage(values []float64, n int) ([]float64, error) {
	if n <= 1 {
		return append([]float64(nil), values...), nil
	}
	if len(values)%n != 0 {
		return nil, fmt.Errorf("transit: %d values do not split into blocks of %d", len(values), n)
	}

	out := make([]float64, len(values)/n)
	for i := range out {
		out[i] = floats.Sum(values[i*n:(i+1)*n]) / float64(n)
	}
	return out, nil
}
