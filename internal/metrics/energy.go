package metrics

import (
	"math"

	"github.com/san-kum/ballbox/internal/verlet"
)

// Energy is kinetic energy of unit-mass bodies split by axis.
type Energy struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (e Energy) Total() float64 { return e.X + e.Y }

func (e Energy) Add(o Energy) Energy { return Energy{X: e.X + o.X, Y: e.Y + o.Y} }

// BodyEnergy is vx²/2 and vy²/2 for a single body of mass 1.
func BodyEnergy(b *verlet.Body) Energy {
	vx, vy := b.Velocity()
	return Energy{X: vx * vx / 2, Y: vy * vy / 2}
}

// Kinetic sums BodyEnergy over the given handles; stale handles are skipped.
func Kinetic(bodies []verlet.Body, handles []verlet.Handle) Energy {
	var e Energy
	for _, h := range handles {
		if h < 0 || int(h) >= len(bodies) {
			continue
		}
		e = e.Add(BodyEnergy(&bodies[h]))
	}
	return e
}

// Reading is one observation of the two chambers.
type Reading struct {
	Time  float64
	Left  Energy
	Right Energy
	Valid bool
}

func (r Reading) Total() float64 { return r.Left.Total() + r.Right.Total() }

type Metric interface {
	Name() string
	Observe(r Reading)
	Value() float64
	Reset()
}

type MeanEnergy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewMeanEnergy() *MeanEnergy {
	return &MeanEnergy{name: "mean_energy"}
}

func (e *MeanEnergy) Name() string { return e.name }

func (e *MeanEnergy) Observe(r Reading) {
	e.totalEnergy += r.Total()
	e.samples++
}

func (e *MeanEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *MeanEnergy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative change of the right chamber energy
// from its first non-zero reading. The right chamber only loses energy at its
// walls and in collisions, so drift measures dissipation there.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(r Reading) {
	energy := r.Right.Total()
	if e.initialEnergy == 0 {
		e.initialEnergy = energy
		return
	}
	drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
}
