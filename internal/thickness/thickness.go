// Package thickness computes the ball-covering local thickness pass: every
// ridge voxel "paints" its ball of radius R onto the output, each covered
// voxel keeping the largest R that reaches it. Doubling radius into diameter
// happens downstream in internal/cleanup, not here.
package thickness

import (
	"fmt"

	"github.com/MeKo-Tech/localthickness/internal/volume"
	"github.com/MeKo-Tech/localthickness/internal/worker"
)

// ridgeVoxel is one nonzero voxel of the DistanceRidge volume.
type ridgeVoxel struct {
	x, y, z int
	r       float32
}

// Compute paints every ridge voxel's ball onto a fresh output volume. Work
// is partitioned over OUTPUT z-slices: each worker claims a disjoint,
// round-robin set of z-slices and pulls every ridge voxel whose ball
// intersects one of them, so distinct workers never write the same voxel.
func Compute(ridgeOut *volume.FloatVolume, workers int) (*volume.FloatVolume, error) {
	if ridgeOut == nil {
		return nil, volume.ErrNullInput
	}
	if ridgeOut.W <= 0 || ridgeOut.H <= 0 || ridgeOut.D <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", volume.ErrInvalidShape, ridgeOut.W, ridgeOut.H, ridgeOut.D)
	}

	w, h, d := ridgeOut.W, ridgeOut.H, ridgeOut.D
	out, err := volume.NewFloatVolume(w, h, d)
	if err != nil {
		return nil, err
	}

	var ridges []ridgeVoxel
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r := ridgeOut.At(x, y, z)
				if r > 0 {
					ridges = append(ridges, ridgeVoxel{x: x, y: y, z: z, r: r})
				}
			}
		}
	}
	if len(ridges) == 0 {
		return out, nil
	}

	workers = worker.Count(workers)
	err = worker.Run(d, workers, func(zs []int) {
		owned := make(map[int]struct{}, len(zs))
		for _, z := range zs {
			owned[z] = struct{}{}
		}
		for _, rv := range ridges {
			ri := int(rv.r)
			if float32(ri) < rv.r {
				ri++
			}
			zLo, zHi := rv.z-ri, rv.z+ri
			if zLo < 0 {
				zLo = 0
			}
			if zHi > d-1 {
				zHi = d - 1
			}
			for z := zLo; z <= zHi; z++ {
				if _, ok := owned[z]; !ok {
					continue
				}
				paintLayer(out, rv, z, w, h)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// paintLayer updates out's z layer with ridge voxel rv's ball, restricted to
// the (x,y) extent the ball reaches at that z.
func paintLayer(out *volume.FloatVolume, rv ridgeVoxel, z, w, h int) {
	rSq := float64(rv.r) * float64(rv.r)
	dz := float64(z - rv.z)
	remaining := rSq - dz*dz
	if remaining < 0 {
		return
	}

	ri := int(rv.r)
	if float32(ri) < rv.r {
		ri++
	}
	yLo, yHi := rv.y-ri, rv.y+ri
	if yLo < 0 {
		yLo = 0
	}
	if yHi > h-1 {
		yHi = h - 1
	}
	xLo, xHi := rv.x-ri, rv.x+ri
	if xLo < 0 {
		xLo = 0
	}
	if xHi > w-1 {
		xHi = w - 1
	}

	for y := yLo; y <= yHi; y++ {
		dy := float64(y - rv.y)
		dySq := dy * dy
		if dySq > remaining {
			continue
		}
		for x := xLo; x <= xHi; x++ {
			dx := float64(x - rv.x)
			if dx*dx+dySq > remaining {
				continue
			}
			i := out.Index(x, y, z)
			if rv.r > out.Values[i] {
				out.Values[i] = rv.r
			}
		}
	}
}
