package sandbox

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/ballbox/internal/config"
	"github.com/san-kum/ballbox/internal/surface"
	"github.com/san-kum/ballbox/internal/verlet"
)

type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
)

// Sandbox is the two-chamber demo: a damped left chamber and an undamped
// right one, a cursor attraction for dragging and pairwise collision over all
// balls. It is not safe for concurrent use.
type Sandbox struct {
	cfg        config.SandboxConfig
	scene      *verlet.Scene
	damper     *verlet.DamperBox
	box        *verlet.Box
	attraction *verlet.Attraction
	collision  *verlet.Collision

	width, height float64
	rng           *rand.Rand

	grabbed        verlet.Handle
	inspected      verlet.Handle
	showSystemInfo bool
	showHelp       bool

	prevT  time.Time
	frames int
}

// New builds an empty sandbox of the given size. Call Populate or Load to
// fill it.
func New(cfg config.SandboxConfig, width, height float64, seed int64) (*Sandbox, error) {
	damperFill, err := surface.ParseColor(cfg.DamperColor)
	if err != nil {
		return nil, fmt.Errorf("sandbox: damper colour: %w", err)
	}
	boxFill, err := surface.ParseColor(cfg.BoxColor)
	if err != nil {
		return nil, fmt.Errorf("sandbox: box colour: %w", err)
	}
	if !finiteSize(width, height) {
		return nil, fmt.Errorf("sandbox: invalid size %gx%g", width, height)
	}

	s := &Sandbox{
		cfg:        cfg,
		damper:     verlet.NewDamperBox(0, 0, 0, 0, cfg.DamperK),
		box:        verlet.NewBox(0, 0, 0, 0, cfg.BoxK),
		attraction: verlet.NewAttraction(cfg.AttractionK),
		collision:  verlet.NewCollision(cfg.CollisionK),
		width:      width,
		height:     height,
		rng:        rand.New(rand.NewSource(seed)),
		grabbed:    verlet.NoHandle,
		inspected:  verlet.NoHandle,
		showHelp:   true,
	}
	s.damper.Fill = damperFill
	s.box.Fill = boxFill
	s.scene = verlet.NewScene(s.damper, s.box, s.attraction, s.collision)
	s.scene.Relaxation = cfg.Relaxation
	s.layout()
	return s, nil
}

func (s *Sandbox) layout() {
	half := s.width / 2
	s.damper.Left, s.damper.Top = 0, 0
	s.damper.SetWidth(half)
	s.damper.SetHeight(s.height)
	s.box.Left, s.box.Top = half, 0
	s.box.SetWidth(half)
	s.box.SetHeight(s.height)
}

// Populate drops random balls into the left chamber until FillRatio of its
// area is covered, then runs the stabilising updates so the first frame shows
// a settled pile.
func (s *Sandbox) Populate() {
	width, height := s.damper.Width(), s.damper.Height()
	minSize := math.Min(width, height)
	minR, maxR := minSize*s.cfg.MinBall, minSize*s.cfg.MaxBall
	area := width * height

	var bodies []verlet.Body
	used := 0.0
	for used < area*s.cfg.FillRatio {
		r := s.rng.Float64()*(maxR-minR) + minR
		b := verlet.NewBall(
			r+s.rng.Float64()*(width-2*r),
			r+s.rng.Float64()*(height-2*r),
			r,
		)
		b.Color = surface.RandomColor(s.rng)
		bodies = append(bodies, b)
		used += math.Pi * r * r
	}

	s.scene.Reset(bodies)
	all := s.scene.Handles()
	s.collision.Set(all...)
	s.damper.Set(all...)
	s.box.Clear()
	s.attraction.Clear()
	s.grabbed, s.inspected = verlet.NoHandle, verlet.NoHandle

	for i := 0; i < s.cfg.Stabilize; i++ {
		s.scene.Update(1)
	}
}

// Reset discards every ball and populates afresh.
func (s *Sandbox) Reset() {
	s.Populate()
	s.prevT = time.Time{}
}

func (s *Sandbox) Step(dt float64) {
	s.scene.Update(dt)
	s.frames++
}

// Tick steps by the wall-clock time since the previous tick. The first tick
// after construction or PauseClock only records the time.
func (s *Sandbox) Tick(now time.Time) bool {
	if s.prevT.IsZero() {
		s.prevT = now
		return false
	}
	dt := now.Sub(s.prevT)
	s.prevT = now
	if dt <= 0 {
		return false
	}
	s.Step(dt.Seconds())
	return true
}

// PauseClock forgets the last tick time so a resumed clock does not feed the
// pause length into one step.
func (s *Sandbox) PauseClock() { s.prevT = time.Time{} }

func (s *Sandbox) Render(surf verlet.Surface) {
	s.scene.Render(surf)
}

// finiteSize reports whether both extents are positive and finite.
func finiteSize(w, h float64) bool {
	return w > 0 && h > 0 && !math.IsInf(w, 0) && !math.IsInf(h, 0)
}

// Resize rescales positions by the linear ratio and radii by its square root
// per axis, then moves the chamber split to the new midline.
func (s *Sandbox) Resize(width, height float64) {
	if !finiteSize(width, height) {
		return
	}
	if width != s.width {
		m := width / s.width
		sm := math.Sqrt(m)
		for i := range s.scene.Bodies {
			b := &s.scene.Bodies[i]
			b.CX *= m
			b.PX *= m
			b.R *= sm
		}
		s.attraction.X *= m
	}
	if height != s.height {
		m := height / s.height
		sm := math.Sqrt(m)
		for i := range s.scene.Bodies {
			b := &s.scene.Bodies[i]
			b.CY *= m
			b.PY *= m
			b.R *= sm
		}
		s.attraction.Y *= m
	}
	s.width, s.height = width, height
	s.layout()
}

// Press grabs (left) or toggles inspection of (right) the topmost ball under
// the cursor.
func (s *Sandbox) Press(x, y float64, button Button) bool {
	h := s.HitTest(x, y)
	if h == verlet.NoHandle {
		return false
	}
	switch button {
	case ButtonLeft:
		s.Release()
		s.grabbed = h
		s.damper.Remove(h)
		s.box.Remove(h)
		s.attraction.Set(h)
		s.attraction.SetTarget(x, y)
	case ButtonRight:
		if s.inspected == h {
			s.inspected = verlet.NoHandle
		} else {
			s.inspected = h
		}
	}
	return true
}

func (s *Sandbox) Move(x, y float64) {
	s.attraction.SetTarget(x, y)
}

// Release drops the dragged ball into the chamber its left edge is in.
func (s *Sandbox) Release() {
	if s.grabbed == verlet.NoHandle {
		return
	}
	s.landing(s.grabbed).Add(s.grabbed)
	s.attraction.Clear()
	s.grabbed = verlet.NoHandle
}

func (s *Sandbox) landing(h verlet.Handle) *verlet.Group {
	if b := s.scene.Body(h); b != nil && b.CX-b.Radius() > s.damper.Right {
		return &s.box.Group
	}
	return &s.damper.Group
}

// HitTest returns the last (topmost drawn) ball containing the point.
func (s *Sandbox) HitTest(x, y float64) verlet.Handle {
	for i := len(s.scene.Bodies) - 1; i >= 0; i-- {
		if s.scene.Bodies[i].Contains(x, y) {
			return verlet.Handle(i)
		}
	}
	return verlet.NoHandle
}

func (s *Sandbox) ToggleHelp()       { s.showHelp = !s.showHelp }
func (s *Sandbox) ToggleSystemInfo() { s.showSystemInfo = !s.showSystemInfo }

func (s *Sandbox) ShowHelp() bool       { return s.showHelp }
func (s *Sandbox) ShowSystemInfo() bool { return s.showSystemInfo }

func (s *Sandbox) Scene() *verlet.Scene         { return s.scene }
func (s *Sandbox) Damper() *verlet.DamperBox    { return s.damper }
func (s *Sandbox) Box() *verlet.Box             { return s.box }
func (s *Sandbox) Grabbed() verlet.Handle       { return s.grabbed }
func (s *Sandbox) Inspected() verlet.Handle     { return s.inspected }
func (s *Sandbox) Size() (w, h float64)         { return s.width, s.height }
func (s *Sandbox) Frames() int                  { return s.frames }
func (s *Sandbox) Config() config.SandboxConfig { return s.cfg }
