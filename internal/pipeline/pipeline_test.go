package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/localthickness/internal/volume"
)

func fillBlock(v *volume.BinaryVolume, x0, x1, y0, y1, z0, z1 int, val byte) {
	for z := z0; z < z1; z++ {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				v.Bytes[v.Index(x, y, z)] = val
			}
		}
	}
}

func TestRunProducesNonNegativeDiameters(t *testing.T) {
	bv, err := volume.NewBinaryVolume(12, 12, 12)
	require.NoError(t, err)
	fillBlock(bv, 2, 10, 2, 10, 2, 10, 255)

	drv := New(2, nil)
	res, err := drv.Run(context.Background(), bv, volume.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, res.Stages, 4, "expected 4 recorded stages without mask trim")

	for _, v := range res.Thickness.Values {
		require.GreaterOrEqual(t, v, float32(0), "every output voxel must be >= 0")
	}

	// A voxel at the block's center should carry a positive diameter.
	center := res.Thickness.At(6, 6, 6)
	require.Greater(t, center, float32(0), "expected positive thickness at block center")
}

func TestRunWithMaskTrimZeroesBackground(t *testing.T) {
	bv, err := volume.NewBinaryVolume(10, 10, 10)
	require.NoError(t, err)
	fillBlock(bv, 2, 8, 2, 8, 2, 8, 255)

	cfg := volume.DefaultConfig()
	cfg.MaskTrim = true

	drv := New(3, nil)
	res, err := drv.Run(context.Background(), bv, cfg)
	require.NoError(t, err)
	require.Len(t, res.Stages, 5, "expected 5 recorded stages with mask trim")
	require.Equal(t, float32(0), res.Thickness.At(0, 0, 0), "background voxel should be trimmed to 0")
}

func TestRunRejectsCanceledContext(t *testing.T) {
	bv, err := volume.NewBinaryVolume(4, 4, 4)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	drv := New(1, nil)
	_, err = drv.Run(ctx, bv, volume.DefaultConfig())
	require.Error(t, err, "expected error for already-canceled context")
}

func TestRunRejectsNilInput(t *testing.T) {
	drv := New(1, nil)
	_, err := drv.Run(context.Background(), nil, volume.DefaultConfig())
	require.ErrorIs(t, err, volume.ErrNullInput)
}
