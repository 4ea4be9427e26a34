package surface

import (
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
)

// GIF accumulates raster frames into an animation.
type GIF struct {
	anim  gif.GIF
	delay int
}

// NewGIF records frames shown for delay hundredths of a second each.
func NewGIF(delay int) *GIF {
	if delay < 1 {
		delay = 2
	}
	return &GIF{delay: delay}
}

func (g *GIF) AddFrame(r *Raster) {
	b := r.Img.Bounds()
	frame := image.NewPaletted(b, palette.Plan9)
	draw.Draw(frame, b, r.Img, b.Min, draw.Src)
	g.anim.Image = append(g.anim.Image, frame)
	g.anim.Delay = append(g.anim.Delay, g.delay)
}

func (g *GIF) Len() int { return len(g.anim.Image) }

func (g *GIF) Encode(w io.Writer) error {
	return gif.EncodeAll(w, &g.anim)
}
