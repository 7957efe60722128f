// Package trim implements the optional Mask Trim pass: zeroing every
// CleanUp voxel whose corresponding input voxel is background.
package trim

import (
	"github.com/MeKo-Tech/localthickness/internal/volume"
	"github.com/MeKo-Tech/localthickness/internal/worker"
)

// Compute returns a duplicate of cleanupOut with every voxel zeroed whose
// corresponding input voxel classifies as background under cfg. input and
// cleanupOut must have identical shape, or ErrShapeMismatch is returned.
// Neither argument is mutated.
func Compute(cleanupOut *volume.FloatVolume, input *volume.BinaryVolume, cfg volume.Config, workers int) (*volume.FloatVolume, error) {
	if cleanupOut == nil || input == nil {
		return nil, volume.ErrNullInput
	}
	if err := volume.RequireSameShape(input, cleanupOut); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w, h, d := cleanupOut.W, cleanupOut.H, cleanupOut.D
	out, err := volume.NewFloatVolume(w, h, d)
	if err != nil {
		return nil, err
	}
	workers = worker.Count(workers)

	err = worker.Run(d, workers, func(zs []int) {
		for _, z := range zs {
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					if input.ForegroundAt(x, y, z, cfg) {
						out.Set(x, y, z, cleanupOut.At(x, y, z))
					}
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
