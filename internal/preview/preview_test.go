package preview

import (
	"testing"

	"github.com/MeKo-Tech/localthickness/internal/volume"
)

func TestRenderSliceBackgroundIsBlack(t *testing.T) {
	vol, err := volume.NewFloatVolume(8, 8, 3)
	if err != nil {
		t.Fatalf("NewFloatVolume: %v", err)
	}
	img, err := RenderSlice(vol, Options{Z: 1})
	if err != nil {
		t.Fatalf("RenderSlice: %v", err)
	}
	c := img.NRGBAAt(3, 3)
	if c.R != 0 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Fatalf("expected opaque black background pixel, got %+v", c)
	}
}

func TestRenderSliceColorsForeground(t *testing.T) {
	vol, err := volume.NewFloatVolume(8, 8, 3)
	if err != nil {
		t.Fatalf("NewFloatVolume: %v", err)
	}
	vol.Set(4, 4, 1, 5)
	img, err := RenderSlice(vol, Options{Z: 1, Max: 5})
	if err != nil {
		t.Fatalf("RenderSlice: %v", err)
	}
	c := img.NRGBAAt(4, 4)
	if c.R == 0 && c.G == 0 && c.B == 0 {
		t.Fatal("expected a non-black color for a thick foreground voxel")
	}
}

func TestRenderSliceRejectsOutOfRangeZ(t *testing.T) {
	vol, err := volume.NewFloatVolume(4, 4, 4)
	if err != nil {
		t.Fatalf("NewFloatVolume: %v", err)
	}
	if _, err := RenderSlice(vol, Options{Z: 10}); err == nil {
		t.Fatal("expected error for out-of-range Z")
	}
}

func TestRenderSliceWithBorderDrawsFrame(t *testing.T) {
	vol, err := volume.NewFloatVolume(10, 10, 1)
	if err != nil {
		t.Fatalf("NewFloatVolume: %v", err)
	}
	img, err := RenderSlice(vol, Options{Z: 0, Border: true})
	if err != nil {
		t.Fatalf("RenderSlice: %v", err)
	}
	c := img.NRGBAAt(0, 0)
	if c.R == 0 && c.G == 0 && c.B == 0 {
		t.Fatal("expected the border frame to paint the top-left corner")
	}
}

func TestEncodePNGProducesValidHeader(t *testing.T) {
	vol, err := volume.NewFloatVolume(4, 4, 1)
	if err != nil {
		t.Fatalf("NewFloatVolume: %v", err)
	}
	img, err := RenderSlice(vol, Options{Z: 0})
	if err != nil {
		t.Fatalf("RenderSlice: %v", err)
	}
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	pngSig := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	if len(data) < len(pngSig) {
		t.Fatalf("encoded PNG too short: %d bytes", len(data))
	}
	for i, b := range pngSig {
		if data[i] != b {
			t.Fatalf("missing PNG signature at byte %d", i)
		}
	}
}
