package transit

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below. Use errors.Is against these
// and errors.As against the typed errors when the context fields are needed.
var (
	// ErrInvalidParameter marks a parameter set rejected before synthesis.
	ErrInvalidParameter = errors.New("transit: invalid parameter")

	// ErrNoConvergence marks an iterative solver that ran out of iterations.
	ErrNoConvergence = errors.New("transit: solver did not converge")

	// ErrNumericalDomain marks a transcendental argument outside its domain
	// beyond the clamp tolerance.
	ErrNumericalDomain = errors.New("transit: argument outside numerical domain")

	// ErrCancelled is returned when a synthesis run is cancelled between samples.
	ErrCancelled = errors.New("transit: synthesis cancelled")
)

// InvalidParameterError reports the offending parameter and why it was rejected.
type InvalidParameterError struct {
	Param  string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("transit: invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool { return target == ErrInvalidParameter }

// ConvergenceError reports an iterative solve that hit its iteration cap.
type ConvergenceError struct {
	Solver     string // "kepler" or "elliptic-pi"
	Input      float64
	Iterations int
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("transit: %s solver did not converge for input %g after %d iterations (residual %.3g)",
		e.Solver, e.Input, e.Iterations, e.Residual)
}

func (e *ConvergenceError) Is(target error) bool { return target == ErrNoConvergence }

// NumericalDomainError reports a square-root or arccosine argument that fell
// outside its domain by more than the clamp tolerance.
type NumericalDomainError struct {
	Op    string
	Arg   float64
	Z     float64
	Ratio float64
}

func (e *NumericalDomainError) Error() string {
	return fmt.Sprintf("transit: %s argument %g out of domain (z=%g, p=%g)", e.Op, e.Arg, e.Z, e.Ratio)
}

func (e *NumericalDomainError) Is(target error) bool { return target == ErrNumericalDomain }

// SampleError attaches the failing sample to a per-sample error.
type SampleError struct {
	Index int
	Time  float64
	Err   error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("transit: sample %d (t=%g): %v", e.Index, e.Time, e.Err)
}

func (e *SampleError) Unwrap() error { return e.Err }
