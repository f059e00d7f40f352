package dynamo

import (
	"golang.org/x/sync/errgroup"
)

// ParallelFor calls fn over disjoint sub-ranges covering [0, n). With
// workers <= 1, or when n is smaller than minChunk, fn runs once inline.
// Callers must only write to indices inside their own range.
func ParallelFor(n, workers, minChunk int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if workers <= 1 || n <= minChunk {
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
	g.Wait()
}
