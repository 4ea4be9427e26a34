package verlet

const DefaultRelaxation = 10

// Scene owns the body arena and the ordered constraint list. Constraints only
// hold handles into Bodies, so bodies are created and dropped here alone.
type Scene struct {
	Bodies      []Body
	Constraints []Constraint
	Relaxation  int
}

func NewScene(constraints ...Constraint) *Scene {
	return &Scene{
		Constraints: constraints,
		Relaxation:  DefaultRelaxation,
	}
}

func (s *Scene) Add(b Body) Handle {
	s.Bodies = append(s.Bodies, b)
	return Handle(len(s.Bodies) - 1)
}

func (s *Scene) Body(h Handle) *Body {
	return at(s.Bodies, h)
}

func (s *Scene) Len() int { return len(s.Bodies) }

// Reset replaces the whole arena. Handles issued before are invalid after it.
func (s *Scene) Reset(bodies []Body) {
	s.Bodies = bodies
}

// Handles lists every live handle in arena order.
func (s *Scene) Handles() []Handle {
	hs := make([]Handle, len(s.Bodies))
	for i := range hs {
		hs[i] = Handle(i)
	}
	return hs
}

// Update integrates every body once and then runs Relaxation sweeps over the
// constraints in declaration order.
func (s *Scene) Update(dt float64) {
	for i := range s.Bodies {
		s.Bodies[i].Integrate(dt)
	}
	for j := 0; j < s.Relaxation; j++ {
		for _, c := range s.Constraints {
			if c != nil {
				c.Resolve(dt, s.Bodies)
			}
		}
	}
}

// Render paints constraints first so chamber fills sit under the bodies, then
// bodies in arena order.
func (s *Scene) Render(surf Surface) {
	if surf == nil {
		return
	}
	for _, c := range s.Constraints {
		if c != nil {
			c.Render(surf)
		}
	}
	for i := range s.Bodies {
		b := &s.Bodies[i]
		if b.Shape == ShapeCircle {
			surf.FillCircle(b.CX, b.CY, b.Radius(), b.Color)
		}
	}
}

// Valid reports whether every body holds finite state.
func (s *Scene) Valid() bool {
	for i := range s.Bodies {
		if !s.Bodies[i].IsValid() {
			return false
		}
	}
	return true
}
