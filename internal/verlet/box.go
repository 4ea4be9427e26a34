package verlet

import "image/color"

// Box keeps its members inside an axis-aligned rectangle. A wall crossing is
// reflected by 2*K*overflow and the outgoing per-step displacement is the
// incoming one reversed and scaled by K.
type Box struct {
	Group
	Left, Top, Right, Bottom float64
	K                        float64
	Fill                     color.NRGBA
}

func NewBox(left, top, right, bottom, k float64) *Box {
	return &Box{Left: left, Top: top, Right: right, Bottom: bottom, K: k}
}

func (b *Box) Width() float64  { return b.Right - b.Left }
func (b *Box) Height() float64 { return b.Bottom - b.Top }

func (b *Box) SetWidth(w float64)  { b.Right = b.Left + w }
func (b *Box) SetHeight(h float64) { b.Bottom = b.Top + h }

func (b *Box) Resolve(dt float64, bodies []Body) {
	for _, h := range b.Members {
		if p := at(bodies, h); p != nil {
			b.reflect(p)
		}
	}
}

func (b *Box) reflect(p *Body) {
	r := p.Radius()
	x, vx := p.CX, p.CX-p.PX
	y, vy := p.CY, p.CY-p.PY

	if overflow, hit := wallOverflow(x, r, b.Left, b.Right); hit {
		x += 2 * b.K * overflow
		p.CX = x
		p.PX = x + vx*b.K
	}
	if overflow, hit := wallOverflow(y, r, b.Top, b.Bottom); hit {
		y += 2 * b.K * overflow
		p.CY = y
		p.PY = y + vy*b.K
	}
}

// wallOverflow reports how far the span [c-r, c+r] crosses the low or high
// wall, positive past the low wall and negative past the high one.
func wallOverflow(c, r, low, high float64) (float64, bool) {
	if overflow := low - c + r; overflow > 0 {
		return overflow, true
	}
	if overflow := high - c - r; overflow < 0 {
		return overflow, true
	}
	return 0, false
}

func (b *Box) Render(s Surface) {
	s.FillRect(b.Left, b.Top, b.Right, b.Bottom, b.Fill)
}

// DamperBox is a Box whose members lose all velocity on every call, wall
// contact or not.
type DamperBox struct {
	Box
}

func NewDamperBox(left, top, right, bottom, k float64) *DamperBox {
	return &DamperBox{Box: Box{Left: left, Top: top, Right: right, Bottom: bottom, K: k}}
}

func (d *DamperBox) Resolve(dt float64, bodies []Body) {
	d.Box.Resolve(dt, bodies)
	for _, h := range d.Members {
		if p := at(bodies, h); p != nil {
			p.Stop()
		}
	}
}
