package surface

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrBadColor = errors.New("surface: unrecognised colour")

// ParseColor accepts #rgb, #rrggbb, rgb(r,g,b) and rgba(r,g,b,a) with a in
// [0,1], the forms a canvas fillStyle takes.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		r, g, b := c.Clamped().RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
	case strings.HasPrefix(s, "rgba("):
		var r, g, b uint8
		var a float64
		if _, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		return color.NRGBA{R: r, G: g, B: b, A: alpha8(a)}, nil
	case strings.HasPrefix(s, "rgb("):
		var r, g, b uint8
		if _, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
	}
	return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
}

// Hex formats the opaque part of c as #rrggbb.
func Hex(c color.NRGBA) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// CSS formats c as rgba() when translucent and #rrggbb otherwise.
func CSS(c color.NRGBA) string {
	if c.A == 0xff {
		return Hex(c)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.3g)", c.R, c.G, c.B, float64(c.A)/255)
}

// RandomColor picks a saturated, bright opaque colour.
func RandomColor(rng *rand.Rand) color.NRGBA {
	c := colorful.Hsv(rng.Float64()*360, 0.45+rng.Float64()*0.5, 0.55+rng.Float64()*0.45)
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// over composites src onto an opaque dst.
func over(dst color.NRGBA, src color.Color) color.NRGBA {
	s := color.NRGBAModel.Convert(src).(color.NRGBA)
	if s.A == 0xff {
		return s
	}
	a := float64(s.A) / 255
	mix := func(d, s uint8) uint8 {
		return uint8(float64(d)*(1-a) + float64(s)*a + 0.5)
	}
	return color.NRGBA{R: mix(dst.R, s.R), G: mix(dst.G, s.G), B: mix(dst.B, s.B), A: 0xff}
}

func alpha8(a float64) uint8 {
	switch {
	case a <= 0:
		return 0
	case a >= 1:
		return 0xff
	}
	return uint8(a*255 + 0.5)
}
