// Package synth generates synthetic BinaryVolumes for exercising the local
// thickness pipeline without requiring a real volumetric image loader:
// simple solids with known analytic thickness, and Perlin-noise fields for
// irregular foreground shapes.
package synth

import (
	"github.com/aquilax/go-perlin"

	"github.com/MeKo-Tech/localthickness/internal/volume"
)

// Sphere returns a BinaryVolume of the given shape with a single foreground
// ball of the given radius centered at (cx,cy,cz). Voxels inside the ball
// are set to 255, everything else to 0.
func Sphere(w, h, d int, cx, cy, cz, radius float64) (*volume.BinaryVolume, error) {
	bv, err := volume.NewBinaryVolume(w, h, d)
	if err != nil {
		return nil, err
	}
	rSq := radius * radius
	for z := 0; z < d; z++ {
		dz := float64(z) - cz
		for y := 0; y < h; y++ {
			dy := float64(y) - cy
			for x := 0; x < w; x++ {
				dx := float64(x) - cx
				if dx*dx+dy*dy+dz*dz <= rSq {
					bv.Bytes[bv.Index(x, y, z)] = 255
				}
			}
		}
	}
	return bv, nil
}

// Slab returns a BinaryVolume with a rectangular foreground block occupying
// [x0,x1) x [y0,y1) x [z0,z1), useful for a volume with a known, uniform
// interior thickness.
func Slab(w, h, d, x0, x1, y0, y1, z0, z1 int) (*volume.BinaryVolume, error) {
	bv, err := volume.NewBinaryVolume(w, h, d)
	if err != nil {
		return nil, err
	}
	for z := max(0, z0); z < min(d, z1); z++ {
		for y := max(0, y0); y < min(h, y1); y++ {
			for x := max(0, x0); x < min(w, x1); x++ {
				bv.Bytes[bv.Index(x, y, z)] = 255
			}
		}
	}
	return bv, nil
}

// NoiseField returns a BinaryVolume whose foreground is the set of voxels
// where 3D Perlin noise, sampled at 1/scale spacing, exceeds threshold. This
// produces an irregular, organic-looking foreground shape for stress-testing
// the pipeline on inputs that are not axis-aligned solids.
//
// alpha and beta follow the go-perlin convention (persistence and
// lacunarity); octaves is the number of summed noise layers.
func NoiseField(w, h, d int, scale float64, threshold float64, alpha, beta float64, octaves int32, seed int64) (*volume.BinaryVolume, error) {
	bv, err := volume.NewBinaryVolume(w, h, d)
	if err != nil {
		return nil, err
	}
	p := perlin.NewPerlin(alpha, beta, octaves, seed)

	for z := 0; z < d; z++ {
		nz := float64(z) / scale
		for y := 0; y < h; y++ {
			ny := float64(y) / scale
			for x := 0; x < w; x++ {
				nx := float64(x) / scale
				if p.Noise3D(nx, ny, nz) > threshold {
					bv.Bytes[bv.Index(x, y, z)] = 255
				}
			}
		}
	}
	return bv, nil
}
