package verlet

// Attraction blends member positions toward (X, Y) by K on every call. With
// Relaxation sweeps per frame the approach decays exponentially instead of
// snapping.
type Attraction struct {
	Group
	X, Y float64
	K    float64
}

func NewAttraction(k float64) *Attraction {
	return &Attraction{K: k}
}

func (a *Attraction) SetTarget(x, y float64) {
	a.X, a.Y = x, y
}

func (a *Attraction) Resolve(dt float64, bodies []Body) {
	for _, h := range a.Members {
		p := at(bodies, h)
		if p == nil {
			continue
		}
		p.CX = p.CX*(1-a.K) + a.X*a.K
		p.CY = p.CY*(1-a.K) + a.Y*a.K
	}
}

func (a *Attraction) Render(Surface) {}
