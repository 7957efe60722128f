// Package cleanup implements the CleanUp stage: replaces each jagged border
// voxel's value with the average of its interior neighbors, then doubles
// every radius into a diameter.
package cleanup

import (
	"fmt"

	"github.com/MeKo-Tech/localthickness/internal/volume"
	"github.com/MeKo-Tech/localthickness/internal/worker"
)

// border is the in-band marker Phase 1 uses for an unresolved border voxel.
// Phase 2 overwrites it with -mean (still negative, now resolved); Phase 3
// takes the absolute value of every voxel, so the sign is never observed
// outside this package.
const border = -1

// Compute runs CleanUp's three phases over a LocalThickness volume and
// returns a fresh diameter volume of the same shape.
func Compute(thicknessOut *volume.FloatVolume, workers int) (*volume.FloatVolume, error) {
	if thicknessOut == nil {
		return nil, volume.ErrNullInput
	}
	if thicknessOut.W <= 0 || thicknessOut.H <= 0 || thicknessOut.D <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", volume.ErrInvalidShape, thicknessOut.W, thicknessOut.H, thicknessOut.D)
	}

	w, h, d := thicknessOut.W, thicknessOut.H, thicknessOut.D
	out, err := volume.NewFloatVolume(w, h, d)
	if err != nil {
		return nil, err
	}
	workers = worker.Count(workers)

	// Phase 1: flag every voxel as background (0), border (border marker),
	// or interior (its own magnitude), reading only the input volume.
	err = worker.Run(d, workers, func(zs []int) {
		for _, z := range zs {
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					phase1(thicknessOut, out, x, y, z, w, h, d)
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}

	// Phase 2: resolve every border voxel to the (negated) mean of its
	// interior neighbors. Runs after the Phase 1 barrier; partitioned over
	// z, each worker reads only positive (already-resolved interior)
	// neighbor values, so cross-slab reads never race with another
	// worker's border resolution.
	err = worker.Run(d, workers, func(zs []int) {
		for _, z := range zs {
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					phase2(thicknessOut, out, x, y, z, w, h, d)
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}

	// Phase 3: absolute value and doubling, converting radius into diameter.
	for i, v := range out.Values {
		if v < 0 {
			v = -v
		}
		out.Values[i] = 2 * v
	}
	return out, nil
}

func phase1(in, out *volume.FloatVolume, x, y, z, w, h, d int) {
	i := in.Index(x, y, z)
	v := in.Values[i]
	if v == 0 {
		out.Values[i] = 0
		return
	}
	if hasBackgroundNeighbor(in, x, y, z, w, h, d) {
		out.Values[i] = border
		return
	}
	out.Values[i] = v
}

func hasBackgroundNeighbor(in *volume.FloatVolume, x, y, z, w, h, d int) bool {
	for dz := -1; dz <= 1; dz++ {
		nz := z + dz
		for dy := -1; dy <= 1; dy++ {
			ny := y + dy
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				nx := x + dx
				if nx < 0 || nx >= w || ny < 0 || ny >= h || nz < 0 || nz >= d {
					return true
				}
				if in.At(nx, ny, nz) == 0 {
					return true
				}
			}
		}
	}
	return false
}

func phase2(in, out *volume.FloatVolume, x, y, z, w, h, d int) {
	i := out.Index(x, y, z)
	if out.Values[i] != border {
		return
	}

	var sum float64
	var count int
	for dz := -1; dz <= 1; dz++ {
		nz := z + dz
		if nz < 0 || nz >= d {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			ny := y + dy
			if ny < 0 || ny >= h {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				nx := x + dx
				if nx < 0 || nx >= w {
					continue
				}
				nv := out.At(nx, ny, nz)
				if nv > 0 {
					sum += float64(nv)
					count++
				}
			}
		}
	}

	if count > 0 {
		out.Values[i] = float32(-(sum / float64(count)))
		return
	}
	out.Values[i] = -in.At(x, y, z)
}
