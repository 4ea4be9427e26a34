package verlet

import "math"

// DegenerateDistance is the centre separation below which a pair is skipped:
// coincident centres have no separating axis.
const DegenerateDistance = 1e-9

// Collision separates overlapping member pairs and exchanges the normal
// component of their velocities scaled by K (1 elastic, 0 no impulse).
type Collision struct {
	Group
	K float64
}

func NewCollision(k float64, members ...Handle) *Collision {
	c := &Collision{K: k}
	c.Set(members...)
	return c
}

func (c *Collision) Resolve(dt float64, bodies []Body) {
	for i := 0; i < len(c.Members); i++ {
		one := at(bodies, c.Members[i])
		if one == nil {
			continue
		}
		for j := i + 1; j < len(c.Members); j++ {
			two := at(bodies, c.Members[j])
			if two == nil || two == one {
				continue
			}
			c.resolvePair(one, two)
		}
	}
}

func (c *Collision) resolvePair(one, two *Body) {
	dx := one.CX - two.CX
	dy := one.CY - two.CY
	dr := math.Hypot(dx, dy)
	intDr := dr - one.Radius() - two.Radius()
	if intDr >= 0 || dr < DegenerateDistance {
		return
	}

	v1x, v1y := one.Velocity()
	v2x, v2y := two.Velocity()

	m := 0.5 * intDr / dr
	one.CX -= dx * m
	one.CY -= dy * m
	two.CX += dx * m
	two.CY += dy * m

	// dot > 0 means the pair is closing; a separating pair keeps its velocity
	// so repeated sweeps within a frame do not swap it back.
	dot := dx*(v2x-v1x) + dy*(v2y-v1y)
	if dot > 0 && c.K != 0 {
		vm := c.K * dot / (dr * dr)
		v1x += dx * vm
		v1y += dy * vm
		v2x -= dx * vm
		v2y -= dy * vm
	}
	one.SetVelocity(v1x, v1y)
	two.SetVelocity(v2x, v2y)
}

func (c *Collision) Render(Surface) {}
