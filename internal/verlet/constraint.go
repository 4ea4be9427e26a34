package verlet

import "image/color"

// Surface is the drawing target for a render pass.
type Surface interface {
	FillRect(left, top, right, bottom float64, c color.Color)
	FillCircle(cx, cy, r float64, c color.Color)
}

// Constraint moves the bodies it holds toward satisfying one restriction.
// Each call corrects only part of a violation; Scene repeats it Relaxation
// times per frame.
type Constraint interface {
	Resolve(dt float64, bodies []Body)
	Render(s Surface)
}

// Group is the membership list of a constraint. It refers to bodies by handle
// and never owns them.
type Group struct {
	Members []Handle
}

func (g *Group) Add(h Handle) {
	if h < 0 || g.Contains(h) {
		return
	}
	g.Members = append(g.Members, h)
}

func (g *Group) Remove(h Handle) bool {
	for i, m := range g.Members {
		if m == h {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return true
		}
	}
	return false
}

func (g *Group) Contains(h Handle) bool {
	for _, m := range g.Members {
		if m == h {
			return true
		}
	}
	return false
}

func (g *Group) Set(hs ...Handle) {
	g.Members = append(g.Members[:0], hs...)
}

func (g *Group) Clear() { g.Members = g.Members[:0] }

func (g *Group) Len() int { return len(g.Members) }

func at(bodies []Body, h Handle) *Body {
	if h < 0 || int(h) >= len(bodies) {
		return nil
	}
	return &bodies[h]
}
