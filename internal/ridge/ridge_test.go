package ridge

import (
	"testing"

	"github.com/MeKo-Tech/localthickness/internal/volume"
)

// TestRidgeNoNeighborCovers asserts the defining ridge property: for every
// ridge voxel r with radius R, no 26-neighbor n has a radius-squared meeting
// r's template inclusion bound.
func TestRidgeNoNeighborCovers(t *testing.T) {
	w, h, d := 10, 10, 10
	edtOut, err := volume.NewFloatVolume(w, h, d)
	if err != nil {
		t.Fatalf("NewFloatVolume: %v", err)
	}

	// A synthetic pyramid-like distance field: distance grows toward the
	// center in every axis, roughly approximating a real EDT output.
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dx := minInt(x, w-1-x)
				dy := minInt(y, h-1-y)
				dz := minInt(z, d-1-z)
				m := dx
				if dy < m {
					m = dy
				}
				if dz < m {
					m = dz
				}
				edtOut.Set(x, y, z, float32(m)+1)
			}
		}
	}

	out, err := Compute(edtOut, 3)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	idx := BuildDistanceIndex(edtOut)
	tmpl := BuildTemplate(idx)

	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if out.At(x, y, z) == 0 {
					continue
				}
				if coveredByNeighbor(edtOut, tmpl, mustPos(t, idx, out.At(x, y, z)), x, y, z, w, h, d) {
					t.Fatalf("ridge voxel (%d,%d,%d) is covered by a neighbor", x, y, z)
				}
			}
		}
	}
}

func mustPos(t *testing.T, idx *DistanceIndex, d float32) int {
	t.Helper()
	pos, ok := idx.Pos(roundRSq(float64(d)))
	if !ok {
		t.Fatalf("distance %v not found in index", d)
	}
	return pos
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func TestComputeZeroesBackground(t *testing.T) {
	edtOut, err := volume.NewFloatVolume(4, 4, 4)
	if err != nil {
		t.Fatalf("NewFloatVolume: %v", err)
	}
	out, err := Compute(edtOut, 2)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, v := range out.Values {
		if v != 0 {
			t.Fatalf("expected all-zero ridge output for all-background input, got %v", v)
		}
	}
}

func TestComputeRejectsNilInput(t *testing.T) {
	if _, err := Compute(nil, 1); err == nil {
		t.Fatal("expected error for nil input")
	}
}
