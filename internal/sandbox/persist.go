package sandbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/ballbox/internal/snapshot"
	"github.com/san-kum/ballbox/internal/surface"
	"github.com/san-kum/ballbox/internal/verlet"
)

// Snapshot captures the sandbox. A ball being dragged is recorded in the
// chamber it would drop into.
func (s *Sandbox) Snapshot() *snapshot.Snapshot {
	snap := &snapshot.Snapshot{
		Width:          s.width,
		Height:         s.height,
		Points:         make([]snapshot.Point, len(s.scene.Bodies)),
		DamperIndices:  handlesToIndices(s.damper.Members),
		BoxIndices:     handlesToIndices(s.box.Members),
		InspectedIndex: int(s.inspected),
		ShowSystemInfo: s.showSystemInfo,
	}
	for i := range s.scene.Bodies {
		b := &s.scene.Bodies[i]
		p := snapshot.Point{CX: b.CX, CY: b.CY, PX: b.PX, PY: b.PY, Dt: b.Dt, Color: surface.Hex(b.Color)}
		if b.Shape == verlet.ShapeCircle {
			p.R = snapshot.Radius(b.R)
		}
		snap.Points[i] = p
	}
	if s.grabbed != verlet.NoHandle {
		if s.landing(s.grabbed) == &s.box.Group {
			snap.BoxIndices = append(snap.BoxIndices, int(s.grabbed))
		} else {
			snap.DamperIndices = append(snap.DamperIndices, int(s.grabbed))
		}
	}
	return snap
}

// Restore replaces the sandbox with snap, taking its size too. An invalid
// snapshot leaves the sandbox untouched.
func (s *Sandbox) Restore(snap *snapshot.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	bodies := make([]verlet.Body, len(snap.Points))
	for i, p := range snap.Points {
		col, err := surface.ParseColor(p.Color)
		if err != nil {
			return fmt.Errorf("%w: point %d: %v", snapshot.ErrInvalid, i, err)
		}
		var b verlet.Body
		if p.R != nil {
			b = verlet.NewBall(p.CX, p.CY, *p.R)
		} else {
			b = verlet.NewPoint(p.CX, p.CY)
		}
		b.PX, b.PY, b.Dt, b.Color = p.PX, p.PY, p.Dt, col
		bodies[i] = b
	}

	s.scene.Reset(bodies)
	s.collision.Set(s.scene.Handles()...)
	s.damper.Set(indicesToHandles(snap.DamperIndices)...)
	s.box.Set(indicesToHandles(snap.BoxIndices)...)
	s.attraction.Clear()
	s.grabbed = verlet.NoHandle
	s.inspected = verlet.Handle(snap.InspectedIndex)
	s.showSystemInfo = snap.ShowSystemInfo
	s.width, s.height = snap.Width, snap.Height
	s.layout()
	return nil
}

func (s *Sandbox) Save(ctx context.Context, st snapshot.Store) error {
	s.Release()
	return st.Save(ctx, s.Snapshot())
}

// Load restores the stored snapshot scaled to the current size. On any
// failure the sandbox is populated afresh; the error is returned unless the
// store was simply empty.
func (s *Sandbox) Load(ctx context.Context, st snapshot.Store) error {
	w, h := s.width, s.height
	snap, err := st.Load(ctx)
	if err == nil {
		err = s.Restore(snap)
	}
	if err != nil {
		s.Populate()
		if errors.Is(err, snapshot.ErrNotFound) {
			return nil
		}
		return err
	}
	s.Resize(w, h)
	return nil
}

func handlesToIndices(hs []verlet.Handle) []int {
	out := make([]int, len(hs))
	for i, h := range hs {
		out[i] = int(h)
	}
	return out
}

func indicesToHandles(is []int) []verlet.Handle {
	out := make([]verlet.Handle, len(is))
	for i, idx := range is {
		out[i] = verlet.Handle(idx)
	}
	return out
}
