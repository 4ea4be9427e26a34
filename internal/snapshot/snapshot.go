package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalid marks a snapshot that must not be loaded.
	ErrInvalid = errors.New("snapshot: invalid snapshot")

	// ErrNotFound indicates the store holds no snapshot.
	ErrNotFound = errors.New("snapshot: not found")
)

// Point is a serialised body. R is nil for point masses.
type Point struct {
	CX    float64  `json:"cx"`
	CY    float64  `json:"cy"`
	PX    float64  `json:"px"`
	PY    float64  `json:"py"`
	Dt    float64  `json:"dt,omitempty"`
	Color string   `json:"color"`
	R     *float64 `json:"r,omitempty"`
}

// Snapshot is the persisted sandbox. Index lists refer to positions in
// Points, so point order is load-bearing.
type Snapshot struct {
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Points         []Point `json:"points"`
	DamperIndices  []int   `json:"damperIndices"`
	BoxIndices     []int   `json:"boxIndices"`
	InspectedIndex int     `json:"inspectedIndex"`
	ShowSystemInfo bool    `json:"showSystemInfo"`
}

func Radius(r float64) *float64 { return &r }

// Validate rejects anything that would load as partial or inconsistent state.
func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil", ErrInvalid)
	}
	if !finite(s.Width, s.Height) || s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: size %gx%g", ErrInvalid, s.Width, s.Height)
	}
	for i, p := range s.Points {
		if !finite(p.CX, p.CY, p.PX, p.PY, p.Dt) || p.Dt < 0 {
			return fmt.Errorf("%w: point %d has non-finite state", ErrInvalid, i)
		}
		if p.R != nil && (!finite(*p.R) || *p.R < 0) {
			return fmt.Errorf("%w: point %d radius %g", ErrInvalid, i, *p.R)
		}
	}

	seen := make(map[int]string, len(s.Points))
	for _, group := range []struct {
		name    string
		indices []int
	}{{"damper", s.DamperIndices}, {"box", s.BoxIndices}} {
		for _, idx := range group.indices {
			if idx < 0 || idx >= len(s.Points) {
				return fmt.Errorf("%w: %s index %d out of range", ErrInvalid, group.name, idx)
			}
			if prev, dup := seen[idx]; dup {
				return fmt.Errorf("%w: point %d in both %s and %s", ErrInvalid, idx, prev, group.name)
			}
			seen[idx] = group.name
		}
	}

	if s.InspectedIndex < -1 || s.InspectedIndex >= len(s.Points) {
		return fmt.Errorf("%w: inspected index %d", ErrInvalid, s.InspectedIndex)
	}
	return nil
}

func Encode(s *Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// Decode parses and validates data.
func Decode(data []byte) (*Snapshot, error) {
	s := &Snapshot{InspectedIndex: -1}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
