// Package worker provides the static slab-partitioning scheme shared by
// every pipeline stage: round-robin index groups with disjoint write sets,
// run to a join barrier, with panics converted into a single worker fault.
package worker

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/MeKo-Tech/localthickness/internal/volume"
)

// Count resolves a requested worker count: a positive value is used as-is,
// zero or negative falls back to the host's hardware concurrency.
func Count(requested int) int {
	if requested > 0 {
		return requested
	}
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// Partition splits the half-open range [0, n) into `workers` round-robin
// groups: group g owns every index i where i % workers == g. Groups are
// disjoint by construction, so a worker that claims group g can write to
// the slices/rows/output-slabs it owns with no synchronization against the
// other groups.
func Partition(n, workers int) [][]int {
	if workers < 1 {
		workers = 1
	}
	groups := make([][]int, workers)
	for i := 0; i < n; i++ {
		g := i % workers
		groups[g] = append(groups[g], i)
	}
	return groups
}

// Run partitions [0, n) across `workers` goroutines and calls fn once per
// non-empty group, blocking until every goroutine returns (the join barrier
// the concurrency model requires between stages). A panic in any worker is
// recovered and reported as ErrWorkerFault; Run aborts the pipeline rather
// than returning a partial result.
func Run(n, workers int, fn func(indices []int)) error {
	return RunIndexed(n, workers, func(_ int, indices []int) {
		fn(indices)
	})
}

// RunIndexed is Run, but fn also receives the group number, so a caller can
// test whether an arbitrary index i belongs to its own slab
// (i % workers == group) rather than only walking the indices list it was
// handed. No stage uses it directly; Run is built on it.
func RunIndexed(n, workers int, fn func(group int, indices []int)) error {
	groups := Partition(n, workers)

	var wg sync.WaitGroup
	faults := make([]error, len(groups))

	for g, indices := range groups {
		if len(indices) == 0 {
			continue
		}
		wg.Add(1)
		go func(g int, indices []int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					faults[g] = fmt.Errorf("%w: %v", volume.ErrWorkerFault, r)
				}
			}()
			fn(g, indices)
		}(g, indices)
	}
	wg.Wait()

	for _, err := range faults {
		if err != nil {
			return err
		}
	}
	return nil
}
