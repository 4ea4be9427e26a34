package surface

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
)

// Raster is an in-memory RGBA surface. Circles get the same two-tone radial
// highlight the browser front-end draws: a soft white glint toward the upper
// left and a darkened rim.
type Raster struct {
	Img        *image.NRGBA
	Background color.NRGBA
	Highlight  bool
}

func NewRaster(w, h int) *Raster {
	r := &Raster{
		Img:        image.NewNRGBA(image.Rect(0, 0, w, h)),
		Background: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Highlight:  true,
	}
	r.Clear()
	return r
}

func (r *Raster) Clear() {
	b := r.Img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r.Img.SetNRGBA(x, y, r.Background)
		}
	}
}

func (r *Raster) blend(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(r.Img.Bounds()) {
		return
	}
	r.Img.SetNRGBA(x, y, over(r.Img.NRGBAAt(x, y), c))
}

func (r *Raster) FillRect(left, top, right, bottom float64, c color.Color) {
	b := r.Img.Bounds()
	x0, x1 := clampPix(left, b.Min.X, b.Max.X), clampPix(right, b.Min.X, b.Max.X)
	y0, y1 := clampPix(top, b.Min.Y, b.Max.Y), clampPix(bottom, b.Min.Y, b.Max.Y)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r.blend(x, y, c)
		}
	}
}

func (r *Raster) FillCircle(cx, cy, rad float64, c color.Color) {
	if rad <= 0 {
		return
	}
	// Glint centre drifts toward the origin with radius; stop radius is 1.3r.
	gx, gy := cx*(1-rad/3000), cy*(1-rad/3000)
	gr := rad * 1.3

	x0, x1 := int(math.Floor(cx-rad)), int(math.Ceil(cx+rad))
	y0, y1 := int(math.Floor(cy-rad)), int(math.Ceil(cy+rad))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			if (px-cx)*(px-cx)+(py-cy)*(py-cy) > rad*rad {
				continue
			}
			r.blend(x, y, c)
			if !r.Highlight {
				continue
			}
			t := math.Hypot(px-gx, py-gy) / gr
			switch {
			case t < 0.49:
				r.blend(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: alpha8(0.3 * (1 - t/0.49))})
			case t >= 0.5:
				r.blend(x, y, color.NRGBA{A: alpha8(0.3 * math.Min(1, (t-0.5)/0.5))})
			}
		}
	}
}

func (r *Raster) WritePNG(w io.Writer) error {
	return png.Encode(w, r.Img)
}

func clampPix(v float64, lo, hi int) int {
	i := int(math.Round(v))
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}
