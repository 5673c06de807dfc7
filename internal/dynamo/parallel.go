package dynamo

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelFor executes fn over [0, n) split into contiguous chunks.
// It returns only after every chunk is done, so callers can treat the
// call as a barrier between phases.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		s, e := start, end
		g.Go(func() error {
			fn(s, e)
			return nil
		})
	}
	_ = g.Wait()
}
