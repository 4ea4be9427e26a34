package surface

import (
	"fmt"
	"image/color"
	"io"
	"strings"
)

type ShapeKind uint8

const (
	KindRect ShapeKind = iota
	KindCircle
)

// Shape is one recorded drawing call, in world units.
type Shape struct {
	Kind       ShapeKind
	X, Y, W, H float64
	R          float64
	Color      color.NRGBA
}

// SVG records drawing calls and serialises them as a vector document.
type SVG struct {
	Width, Height float64
	Shapes        []Shape
}

func NewSVG(w, h float64) *SVG {
	return &SVG{Width: w, Height: h}
}

func (s *SVG) FillRect(left, top, right, bottom float64, c color.Color) {
	s.Shapes = append(s.Shapes, Shape{
		Kind: KindRect, X: left, Y: top, W: right - left, H: bottom - top,
		Color: color.NRGBAModel.Convert(c).(color.NRGBA),
	})
}

func (s *SVG) FillCircle(cx, cy, r float64, c color.Color) {
	s.Shapes = append(s.Shapes, Shape{
		Kind: KindCircle, X: cx, Y: cy, R: r,
		Color: color.NRGBAModel.Convert(c).(color.NRGBA),
	})
}

func (s *SVG) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, s.Width, s.Height, s.Width, s.Height))

	for _, sh := range s.Shapes {
		switch sh.Kind {
		case KindRect:
			sb.WriteString(fmt.Sprintf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>
`, sh.X, sh.Y, sh.W, sh.H, CSS(sh.Color)))
		case KindCircle:
			sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>
`, sh.X, sh.Y, sh.R, CSS(sh.Color)))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}
