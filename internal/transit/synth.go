package transit

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/lightcurve/internal/monitoring"
)

// AutoWorkers asks the synthesizer to use one worker per available CPU.
const AutoWorkers = -1

// Synthesizer evaluates light curves. It holds only configuration and is
// safe for concurrent use.
type Synthesizer struct {
	workers  int
	resolver Resolver
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithWorkers sets the number of parallel workers. Values of 0 or 1 run
// sequentially; AutoWorkers uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Synthesizer) {
		if n == AutoWorkers {
			n = runtime.GOMAXPROCS(0)
		}
		s.workers = n
	}
}

// WithResolver replaces the default orbital geometry resolver, e.g. to
// retry a pathological orbit with GuessPi or a looser tolerance.
func WithResolver(r Resolver) Option {
	return func(s *Synthesizer) {
		s.resolver = r
	}
}

// NewSynthesizer returns a sequential synthesizer with the default resolver
// unless overridden by opts.
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		workers:  1,
		resolver: NewResolver(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize returns the relative flux at each of times, index aligned.
// Parameters are validated first; any per-sample failure aborts the whole
// call and is returned as a *SampleError.
func (s *Synthesizer) Synthesize(ctx context.Context, p Params, times []float64) ([]float64, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	p = p.clone()
	law := LawOf(p)

	flux := make([]float64, len(times))
	err := s.forEach(ctx, times, func(i int) error {
		g, err := s.resolver.Resolve(p, times[i])
		if err != nil {
			return err
		}
		if !g.InFront {
			flux[i] = 1
			return nil
		}
		f, err := law.Flux(g.Z, p.Rp)
		if err != nil {
			return err
		}
		flux[i] = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return flux, nil
}

// Geometry returns the resolved sky geometry at each of times.
func (s *Synthesizer) Geometry(ctx context.Context, p Params, times []float64) ([]Geometry, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	p = p.clone()

	out := make([]Geometry, len(times))
	err := s.forEach(ctx, times, func(i int) error {
		g, err := s.resolver.Resolve(p, times[i])
		if err != nil {
			return err
		}
		out[i] = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SynthesizeExposure approximates finite exposures of length expTime by
// averaging n evaluations spread across each exposure window.
func (s *Synthesizer) SynthesizeExposure(ctx context.Context, p Params, times []float64, expTime float64, n int) ([]float64, error) {
	if n <= 1 {
		return s.Synthesize(ctx, p, times)
	}
	sub, err := SupersampleTimes(times, expTime, n)
	if err != nil {
		return nil, err
	}
	flux, err := s.Synthesize(ctx, p, sub)
	if err != nil {
		return nil, err
	}
	return BinAverage(flux, n)
}

// forEach calls fn for every index of times, sequentially or split into
// contiguous chunks across workers. Each index is visited exactly once and
// cancellation is only observed between samples.
func (s *Synthesizer) forEach(ctx context.Context, times []float64, fn func(i int) error) error {
	sample := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		if err := fn(i); err != nil {
			return &SampleError{Index: i, Time: times[i], Err: err}
		}
		return nil
	}

	workers := s.workers
	if workers > len(times) {
		workers = len(times)
	}

	if workers <= 1 {
		for i := range times {
			if err := sample(ctx, i); err != nil {
				monitoring.Logf("transit: synthesis aborted at sample %d of %d: %v", i, len(times), err)
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(times) + workers - 1) / workers
	for start := 0; start < len(times); start += chunk {
		lo, hi := start, min(start+chunk, len(times))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := sample(gctx, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		monitoring.Logf("transit: parallel synthesis of %d samples aborted: %v", len(times), err)
		return err
	}
	return nil
}
