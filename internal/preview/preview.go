// Package preview renders a single Z-slice of a thickness FloatVolume to a
// false-color PNG: thin regions map to the blue end of the hue ramp, thick
// regions to red, via integer-only HSL math. A border frame is drawn with a
// vector rasterizer and an optional soft blur with gift smooths the color
// bands.
package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/disintegration/gift"
	"golang.org/x/image/vector"

	"github.com/MeKo-Tech/localthickness/internal/volume"
)

// Options controls the slice rendering.
type Options struct {
	// Z is the slice index to render.
	Z int
	// Max caps the thickness-to-hue mapping; values at or above Max render
	// at the hottest end of the ramp. Zero selects the volume's own max.
	Max float32
	// Blur softens the color bands with a Gaussian blur of this sigma; zero
	// disables blurring.
	Blur float32
	// Border draws a one-pixel frame around the slice when true.
	Border bool
}

// RenderSlice rasterizes one Z-slice of vol into a false-color image; use
// EncodePNG to encode it.
func RenderSlice(vol *volume.FloatVolume, opts Options) (*image.NRGBA, error) {
	if vol == nil {
		return nil, volume.ErrNullInput
	}
	if opts.Z < 0 || opts.Z >= vol.D {
		return nil, volume.ErrInvalidShape
	}

	maxVal := opts.Max
	if maxVal <= 0 {
		for _, v := range vol.Values {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	img := image.NewNRGBA(image.Rect(0, 0, vol.W, vol.H))
	for y := 0; y < vol.H; y++ {
		for x := 0; x < vol.W; x++ {
			v := vol.At(x, y, opts.Z)
			img.SetNRGBA(x, y, thicknessColor(v, maxVal))
		}
	}

	var out image.Image = img
	if opts.Blur > 0 {
		g := gift.New(gift.GaussianBlur(opts.Blur))
		blurred := image.NewNRGBA(g.Bounds(img.Bounds()))
		g.Draw(blurred, img)
		out = blurred
	}

	result := toNRGBA(out)
	if opts.Border {
		drawBorder(result)
	}
	return result, nil
}

// thicknessColor maps a thickness value in [0,maxVal] to a hue ramp from
// blue (thin) through green and yellow to red (thick), using the
// integer-only HSL conversion: background (v==0) renders as opaque black.
func thicknessColor(v, maxVal float32) color.NRGBA {
	if v <= 0 {
		return color.NRGBA{A: 255}
	}
	t := float64(v) / float64(maxVal)
	if t > 1 {
		t = 1
	}
	// Hue sweeps from blue (1024 in the 0..1535 HSL-integer space) down to
	// red (0) as thickness increases.
	h := uint16(math.Round((1 - t) * 1024))
	r, g, b := hslToRGB(h, 255, 128)
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

// drawBorder rasterizes a one-pixel outline around img's bounds by filling
// two opposite-winding rectangle paths.
func drawBorder(img *image.NRGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 2 || h < 2 {
		return
	}

	ras := vector.NewRasterizer(w, h)
	outer := [][2]float32{
		{0, 0}, {float32(w), 0}, {float32(w), float32(h)}, {0, float32(h)},
	}
	inner := [][2]float32{
		{1, 1}, {1, float32(h - 1)}, {float32(w - 1), float32(h - 1)}, {float32(w - 1), 1},
	}

	tracePath(ras, outer)
	tracePath(ras, inner)

	src := image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	ras.Draw(img, b, src, image.Point{})
}

func tracePath(ras *vector.Rasterizer, pts [][2]float32) {
	ras.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		ras.LineTo(p[0], p[1])
	}
	ras.ClosePath()
}

// EncodePNG encodes img as a PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
