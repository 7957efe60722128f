// Package edt computes the squared Euclidean distance transform of the
// background set of a BinaryVolume using the Saito-Toriwaki three-step
// separable algorithm: an x-axis nearest-background scan, followed by
// y-axis and z-axis 1D minimizations over the running squared-distance
// buffer. Each step owns disjoint slices/columns, so it parallelizes over
// the worker package's round-robin slab partitioning without locks — the
// same buffer-reuse discipline internal/mask.DistanceContext used for its
// 2D Felzenszwalb transform, generalized here to three stdlib passes since
// the exact Saito-Toriwaki rounding rule this algorithm specifies would be
// lost behind a general-purpose distance-transform library.
package edt

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/localthickness/internal/volume"
	"github.com/MeKo-Tech/localthickness/internal/worker"
)

// sentinel returns 3*(n+1)^2 where n = max(w,h,d): a squared-distance value
// that exceeds any achievable squared distance in the volume, used as +Inf
// in the nearest-background searches. Kept as int64, so the n<=26753
// int32-overflow boundary noted in the spec's design notes never applies.
func sentinel(w, h, d int) int64 {
	n := w
	if h > n {
		n = h
	}
	if d > n {
		n = d
	}
	n64 := int64(n)
	return 3 * (n64 + 1) * (n64 + 1)
}

// Compute runs the three-step squared EDT and returns the Euclidean
// distance (not squared) from every foreground voxel to the nearest
// background voxel; background voxels are 0. workers<=0 uses the host's
// hardware concurrency.
func Compute(input *volume.BinaryVolume, cfg volume.Config, workers int) (*volume.FloatVolume, error) {
	if input == nil {
		return nil, volume.ErrNullInput
	}
	if input.W <= 0 || input.H <= 0 || input.D <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", volume.ErrInvalidShape, input.W, input.H, input.D)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w, h, d := input.W, input.H, input.D
	workers = worker.Count(workers)
	inf := sentinel(w, h, d)

	s := make([]int64, w*h*d)
	idx := func(x, y, z int) int { return x + w*y + w*h*z }

	// Step 1: x-axis nearest-background scan, per (j,k) row.
	if err := worker.Run(d, workers, func(zs []int) {
		for _, z := range zs {
			for y := 0; y < h; y++ {
				stepX(input, cfg, s, idx, w, y, z, inf)
			}
		}
	}); err != nil {
		return nil, err
	}

	// Step 2: y-axis 1D minimization, per (i,k) column.
	if err := worker.Run(d, workers, func(zs []int) {
		tempS := make([]int64, h)
		for _, z := range zs {
			for x := 0; x < w; x++ {
				stepY(s, idx, tempS, w, h, x, z)
			}
		}
	}); err != nil {
		return nil, err
	}

	// Step 3: z-axis 1D minimization restricted to the observed nonzero
	// range, per (i,j) column, re-checking the original classification so
	// background voxels are left untouched.
	if err := worker.Run(h, workers, func(ys []int) {
		tempS := make([]int64, d)
		for _, y := range ys {
			for x := 0; x < w; x++ {
				stepZ(input, cfg, s, idx, tempS, w, d, x, y)
			}
		}
	}); err != nil {
		return nil, err
	}

	out, err := volume.NewFloatVolume(w, h, d)
	if err != nil {
		return nil, err
	}
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := idx(x, y, z)
				// s[i] can only still equal the sentinel if no background
				// voxel exists anywhere in the volume (the transform is
				// global, not local): the all-foreground case. Per the
				// background-empty convention, distance is 0 everywhere.
				if input.ForegroundAt(x, y, z, cfg) && s[i] < inf {
					out.Values[i] = float32(math.Sqrt(float64(s[i])))
				} else {
					out.Values[i] = 0
				}
			}
		}
	}
	return out, nil
}

// stepX fills one row (varying x, fixed y,z) with the squared distance to
// the nearest background voxel in that row, via a forward pass tracking the
// nearest background to the left and a backward pass combining it with the
// nearest background to the right.
func stepX(input *volume.BinaryVolume, cfg volume.Config, s []int64, idx func(x, y, z int) int, w, y, z int, inf int64) {
	leftDist := make([]int64, w)
	lastBg := -1
	for x := 0; x < w; x++ {
		i := idx(x, y, z)
		if !input.ForegroundAt(x, y, z, cfg) {
			s[i] = 0
			lastBg = x
			continue
		}
		if lastBg < 0 {
			leftDist[x] = inf
		} else {
			dx := int64(x - lastBg)
			leftDist[x] = dx * dx
		}
	}

	nextBg := -1
	for x := w - 1; x >= 0; x-- {
		i := idx(x, y, z)
		if !input.ForegroundAt(x, y, z, cfg) {
			nextBg = x
			continue
		}
		var rightDist int64
		if nextBg < 0 {
			rightDist = inf
		} else {
			dx := int64(nextBg - x)
			rightDist = dx * dx
		}
		if rightDist < leftDist[x] {
			s[i] = rightDist
		} else {
			s[i] = leftDist[x]
		}
	}
}

// stepY minimizes one column (varying y, fixed x,z) of the running squared
// distance, reusing the provided tempS scratch buffer.
func stepY(s []int64, idx func(x, y, z int) int, tempS []int64, w, h, x, z int) {
	allZero := true
	for y := 0; y < h; y++ {
		v := s[idx(x, y, z)]
		tempS[y] = v
		if v != 0 {
			allZero = false
		}
	}
	if allZero {
		return
	}
	for j := 0; j < h; j++ {
		best := tempS[j]
		for y := 0; y < h; y++ {
			if y == j {
				continue
			}
			delta := int64(j - y)
			test := tempS[y] + delta*delta
			if test < best {
				best = test
			}
		}
		s[idx(x, j, z)] = best
	}
}

// stepZ minimizes one column (varying z, fixed x,y) over the restricted
// [zStart, zStop] range, only for voxels the original classification still
// calls foreground.
func stepZ(input *volume.BinaryVolume, cfg volume.Config, s []int64, idx func(x, y, z int) int, tempS []int64, w, d, x, y int) {
	allZero := true
	firstNonzero, lastNonzero := -1, -1
	for z := 0; z < d; z++ {
		v := s[idx(x, y, z)]
		tempS[z] = v
		if v != 0 {
			allZero = false
			if firstNonzero < 0 {
				firstNonzero = z
			}
			lastNonzero = z
		}
	}
	if allZero {
		return
	}

	zStart := firstNonzero - 1
	if zStart < 0 {
		zStart = 0
	}
	zStop := lastNonzero + 1
	if zStop > d-1 {
		zStop = d - 1
	}

	for k := 0; k < d; k++ {
		if !input.ForegroundAt(x, y, k, cfg) {
			continue
		}
		lo, hi := zStart, zStop
		if k < lo {
			lo = k
		}
		if k > hi {
			hi = k
		}
		best := tempS[k]
		for z := lo; z <= hi; z++ {
			if z == k {
				continue
			}
			delta := int64(k - z)
			test := tempS[z] + delta*delta
			if test < best {
				best = test
			}
		}
		s[idx(x, y, k)] = best
	}
}
