package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Unit names one independent source file to run through RunSource. Units
// are otherwise unrelated: Luma has no import graph (SPEC_FULL.md §3), so
// the only shared state across a batch is each Context's own diagnostic
// buffer, symbol table, and type cache (spec.md §4.8's concurrency note) -
// nothing is shared between units, so every unit in a batch can run on its
// own goroutine.
type Unit struct {
	Path    string
	Content []byte
}

// RunBatch runs RunSource over every unit concurrently, capped at jobs
// goroutines (or GOMAXPROCS if jobs <= 0), adapted from the teacher's
// directory-wide errgroup fan-out (parallel.go's DiagnoseDirWithOptions)
// down to Luma's flat, import-free unit model: no module graph to resolve,
// so there is nothing to order units by and every unit can run independent
// of every other.
func RunBatch(ctx context.Context, units []Unit, jobs int, maxErrors uint) []Result {
	results := make([]Result, len(units))
	if len(units) == 0 {
		return results
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs > len(units) {
		jobs = len(units)
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			results[i] = RunSource(u.Path, u.Content, maxErrors)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
