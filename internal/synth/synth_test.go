package synth

import "testing"

func TestSphereCenterIsForeground(t *testing.T) {
	bv, err := Sphere(20, 20, 20, 10, 10, 10, 5)
	if err != nil {
		t.Fatalf("Sphere: %v", err)
	}
	if bv.At(10, 10, 10) == 0 {
		t.Fatal("expected sphere center to be foreground")
	}
	if bv.At(0, 0, 0) != 0 {
		t.Fatal("expected far corner to be background")
	}
}

func TestSlabFillsExactRange(t *testing.T) {
	bv, err := Slab(10, 10, 10, 2, 8, 2, 8, 2, 8)
	if err != nil {
		t.Fatalf("Slab: %v", err)
	}
	for z := 0; z < 10; z++ {
		for y := 0; y < 10; y++ {
			for x := 0; x < 10; x++ {
				inSlab := x >= 2 && x < 8 && y >= 2 && y < 8 && z >= 2 && z < 8
				got := bv.At(x, y, z) != 0
				if got != inSlab {
					t.Fatalf("(%d,%d,%d): got foreground=%v, want %v", x, y, z, got, inSlab)
				}
			}
		}
	}
}

func TestSlabClampsOutOfBoundsRange(t *testing.T) {
	if _, err := Slab(5, 5, 5, -3, 20, -3, 20, -3, 20); err != nil {
		t.Fatalf("Slab: %v", err)
	}
}

func TestNoiseFieldIsDeterministic(t *testing.T) {
	a, err := NoiseField(16, 16, 16, 8, 0, 2.0, 2.0, 3, 42)
	if err != nil {
		t.Fatalf("NoiseField: %v", err)
	}
	b, err := NoiseField(16, 16, 16, 8, 0, 2.0, 2.0, 3, 42)
	if err != nil {
		t.Fatalf("NoiseField: %v", err)
	}
	for i := range a.Bytes {
		if a.Bytes[i] != b.Bytes[i] {
			t.Fatalf("same seed produced different fields at voxel %d", i)
		}
	}
}

func TestNoiseFieldRejectsInvalidShape(t *testing.T) {
	if _, err := NoiseField(0, 8, 8, 4, 0, 2.0, 2.0, 3, 1); err == nil {
		t.Fatal("expected error for invalid shape")
	}
}
