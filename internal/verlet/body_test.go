package verlet

import (
	"math"
	"testing"
)

func TestBodyRestIsFixedPoint(t *testing.T) {
	b := NewBall(12.5, -3, 2)

	for i := 0; i < 50; i++ {
		b.Integrate(0.016)
	}

	if b.CX != 12.5 || b.CY != -3 {
		t.Errorf("expected body at rest at (12.5, -3), got (%f, %f)", b.CX, b.CY)
	}
	if vx, vy := b.Velocity(); vx != 0 || vy != 0 {
		t.Errorf("expected zero velocity, got (%f, %f)", vx, vy)
	}
}

func TestBodyVelocityRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		vx, vy float64
		dt     float64
	}{
		{"slow", 3, -4, 0.02},
		{"fast", 250, 10, 0.015},
		{"unit", -1, 1, 1},
	}

	for _, tt := range tests {
		b := NewBall(0, 0, 1)
		b.Integrate(tt.dt)
		b.SetVelocity(tt.vx, tt.vy)

		x0, y0 := b.CX, b.CY
		b.Integrate(tt.dt)

		if math.Abs((b.CX-x0)-tt.vx*tt.dt) > 1e-9 || math.Abs((b.CY-y0)-tt.vy*tt.dt) > 1e-9 {
			t.Errorf("%s: expected displacement (%f, %f), got (%f, %f)",
				tt.name, tt.vx*tt.dt, tt.vy*tt.dt, b.CX-x0, b.CY-y0)
		}
		vx, vy := b.Velocity()
		if math.Abs(vx-tt.vx) > 1e-9 || math.Abs(vy-tt.vy) > 1e-9 {
			t.Errorf("%s: expected velocity preserved, got (%f, %f)", tt.name, vx, vy)
		}
	}
}

func TestBodyVariableTimestepKeepsVelocity(t *testing.T) {
	b := NewPoint(0, 0)
	b.Integrate(0.01)
	b.SetVelocity(10, 0)

	dts := []float64{0.03, 0.005, 0.02, 0.011}
	for _, dt := range dts {
		x0 := b.CX
		b.Integrate(dt)
		if math.Abs((b.CX-x0)-10*dt) > 1e-9 {
			t.Errorf("dt=%f: expected displacement %f, got %f", dt, 10*dt, b.CX-x0)
		}
	}
}

func TestBodyZeroDtIsAtRest(t *testing.T) {
	b := NewBall(5, 5, 1)
	b.PX = 0

	if vx, vy := b.Velocity(); vx != 0 || vy != 0 {
		t.Errorf("expected zero velocity before first integration, got (%f, %f)", vx, vy)
	}

	b.Integrate(0)
	if b.Dt != 0 || b.CX != 5 {
		t.Error("expected non-positive dt to be ignored")
	}
}

func TestBodyRadius(t *testing.T) {
	p := NewPoint(0, 0)
	p.R = 4
	if p.Radius() != 0 {
		t.Errorf("expected point mass radius 0, got %f", p.Radius())
	}

	b := NewBall(0, 0, 4)
	if b.Radius() != 4 {
		t.Errorf("expected radius 4, got %f", b.Radius())
	}
	if !b.Contains(3, 0) || b.Contains(4, 1) {
		t.Error("unexpected hit test result")
	}
}

func TestBodyIsValid(t *testing.T) {
	b := NewBall(1, 1, 1)
	if !b.IsValid() {
		t.Error("expected valid body")
	}
	b.CX = math.NaN()
	if b.IsValid() {
		t.Error("expected NaN position to be invalid")
	}
}
