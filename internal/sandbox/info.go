package sandbox

import (
	"fmt"

	"github.com/san-kum/ballbox/internal/metrics"
	"github.com/san-kum/ballbox/internal/surface"
)

// Inspection is the derived, read-only view of one ball.
type Inspection struct {
	Color  string
	Mass   float64
	Radius float64
	X, Y   float64
	VX, VY float64
	Speed  float64
	Energy metrics.Energy
}

// Overlay is the kinetic energy of each chamber's members.
type Overlay struct {
	Left  metrics.Energy
	Right metrics.Energy
}

func (o Overlay) Total() metrics.Energy { return o.Left.Add(o.Right) }

func (s *Sandbox) Inspect() (Inspection, bool) {
	b := s.scene.Body(s.inspected)
	if b == nil {
		return Inspection{}, false
	}
	vx, vy := b.Velocity()
	return Inspection{
		Color:  surface.Hex(b.Color),
		Mass:   1,
		Radius: b.Radius(),
		X:      b.CX,
		Y:      b.CY,
		VX:     vx,
		VY:     vy,
		Speed:  b.Speed(),
		Energy: metrics.BodyEnergy(b),
	}, true
}

func (s *Sandbox) Energy() Overlay {
	return Overlay{
		Left:  metrics.Kinetic(s.scene.Bodies, s.damper.Members),
		Right: metrics.Kinetic(s.scene.Bodies, s.box.Members),
	}
}

func (s *Sandbox) Reading() metrics.Reading {
	o := s.Energy()
	return metrics.Reading{
		Time:  float64(s.frames),
		Left:  o.Left,
		Right: o.Right,
		Valid: s.scene.Valid(),
	}
}

// InfoLines is the text of the info panel; empty when nothing is selected and
// system info is off.
func (s *Sandbox) InfoLines() []string {
	var lines []string
	if in, ok := s.Inspect(); ok {
		lines = append(lines,
			"Color: "+in.Color,
			"Mass: 1",
			fmt.Sprintf("Radius: %.2f", in.Radius),
			fmt.Sprintf("Position: (%.2f; %.2f)", in.X, in.Y),
			fmt.Sprintf("Velocity: %.2f (%.2f; %.2f)", in.Speed, in.VX, in.VY),
			fmt.Sprintf("Energy: %.2f (%.2f; %.2f)", in.Energy.Total(), in.Energy.X, in.Energy.Y),
		)
	}
	if s.showSystemInfo {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		o := s.Energy()
		lines = append(lines,
			energyLine("Left part energy", o.Left),
			energyLine("Right part energy", o.Right),
			energyLine("Full energy", o.Total()),
		)
	}
	return lines
}

func energyLine(label string, e metrics.Energy) string {
	return fmt.Sprintf("%s: %.2f (%.2f; %.2f)", label, e.Total(), e.X, e.Y)
}

func HelpLines() []string {
	return []string{
		"LMB: drag ball",
		"RMB: toggle ball info",
		"F1: toggle help window",
		"F2: show system info",
		"F3: reset",
	}
}
