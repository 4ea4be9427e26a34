package verlet

import (
	"image/color"
	"math"
)

var black = color.NRGBA{A: 0xff}

type Handle int

const NoHandle Handle = -1

type Shape uint8

const (
	ShapePoint Shape = iota
	ShapeCircle
)

// Body is a particle with Verlet position history. Velocity is never stored;
// it is derived from (C - P) / Dt on demand.
type Body struct {
	CX, CY float64
	PX, PY float64
	// Dt is the timestep of the last integration, zero before the first one.
	Dt    float64
	R     float64
	Shape Shape
	Color color.NRGBA
}

func NewPoint(x, y float64) Body {
	return Body{CX: x, CY: y, PX: x, PY: y, Shape: ShapePoint, Color: black}
}

func NewBall(x, y, r float64) Body {
	return Body{CX: x, CY: y, PX: x, PY: y, R: r, Shape: ShapeCircle, Color: black}
}

// Integrate advances the body by dt using time-corrected Verlet: the previous
// displacement is rescaled by dt/prevDt so velocity survives uneven frames.
func (b *Body) Integrate(dt float64) {
	if dt <= 0 {
		return
	}
	prev := b.Dt
	if prev == 0 {
		prev = dt
	}
	cdt := dt / prev
	b.Dt = dt

	oldX, oldY := b.PX, b.PY
	b.PX, b.PY = b.CX, b.CY
	b.CX += (b.CX - oldX) * cdt
	b.CY += (b.CY - oldY) * cdt
}

func (b *Body) Radius() float64 {
	if b.Shape != ShapeCircle || b.R < 0 {
		return 0
	}
	return b.R
}

func (b *Body) Velocity() (vx, vy float64) {
	if b.Dt == 0 {
		return 0, 0
	}
	return (b.CX - b.PX) / b.Dt, (b.CY - b.PY) / b.Dt
}

// SetVelocity rewrites the previous position so the derived velocity equals
// (vx, vy). Before the first integration Dt is zero and the body stays at rest.
func (b *Body) SetVelocity(vx, vy float64) {
	b.PX = b.CX - vx*b.Dt
	b.PY = b.CY - vy*b.Dt
}

func (b *Body) Speed() float64 {
	vx, vy := b.Velocity()
	return math.Hypot(vx, vy)
}

// Stop zeroes the implied velocity.
func (b *Body) Stop() {
	b.PX, b.PY = b.CX, b.CY
}

func (b *Body) Contains(x, y float64) bool {
	dx, dy := x-b.CX, y-b.CY
	r := b.Radius()
	return dx*dx+dy*dy < r*r
}

func (b *Body) IsValid() bool {
	for _, v := range [...]float64{b.CX, b.CY, b.PX, b.PY, b.Dt, b.R} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
