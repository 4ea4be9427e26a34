package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/san-kum/ballbox/internal/metrics"
	"github.com/san-kum/ballbox/internal/sandbox"
	"github.com/san-kum/ballbox/internal/snapshot"
	"github.com/san-kum/ballbox/internal/surface"
)

var (
	ErrBadPointer = errors.New("server: bad pointer event")
	ErrBadSize    = errors.New("server: bad size")
	ErrNoStore    = errors.New("server: no snapshot store")
)

type BodyView struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	R     float64 `json:"r"`
	Color string  `json:"color"`
}

type EnergyView struct {
	Left  metrics.Energy `json:"left"`
	Right metrics.Energy `json:"right"`
	Total metrics.Energy `json:"total"`
}

// Frame is what a client needs to draw one step.
type Frame struct {
	Tick      int        `json:"tick"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Bodies    []BodyView `json:"bodies"`
	Energy    EnergyView `json:"energy"`
	Grabbed   int        `json:"grabbed"`
	Inspected int        `json:"inspected"`
}

// Pointer is a mouse event in world coordinates.
type Pointer struct {
	Action string  `json:"action"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button,omitempty"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Runner owns the served sandbox. Every access goes through its lock.
type Runner struct {
	mu    sync.Mutex
	sb    *sandbox.Sandbox
	store snapshot.Store
	hub   *Hub
	every time.Duration
}

// NewRunner wires sb to hub. store may be nil.
func NewRunner(sb *sandbox.Sandbox, store snapshot.Store, hub *Hub, every time.Duration) *Runner {
	r := &Runner{sb: sb, store: store, hub: hub, every: every}
	hub.OnMessage = r.handleMessage
	return r
}

func (r *Runner) Hub() *Hub { return r.hub }

// Run steps the sandbox on wall-clock time and broadcasts a frame per tick.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			r.Advance(now)
		}
	}
}

// Advance feeds one clock reading to the sandbox and broadcasts the result.
func (r *Runner) Advance(now time.Time) {
	r.mu.Lock()
	r.sb.Tick(now)
	f := r.frame()
	r.mu.Unlock()
	r.hub.Broadcast(f)
}

func (r *Runner) Frame() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame()
}

func (r *Runner) frame() Frame {
	scene := r.sb.Scene()
	w, h := r.sb.Size()
	o := r.sb.Energy()
	f := Frame{
		Tick:      r.sb.Frames(),
		Width:     w,
		Height:    h,
		Bodies:    make([]BodyView, len(scene.Bodies)),
		Energy:    EnergyView{Left: o.Left, Right: o.Right, Total: o.Total()},
		Grabbed:   int(r.sb.Grabbed()),
		Inspected: int(r.sb.Inspected()),
	}
	for i := range scene.Bodies {
		b := &scene.Bodies[i]
		f.Bodies[i] = BodyView{X: b.CX, Y: b.CY, R: b.Radius(), Color: surface.Hex(b.Color)}
	}
	return f
}

func (r *Runner) Pointer(p Pointer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch p.Action {
	case "press":
		switch p.Button {
		case "", "left":
			r.sb.Press(p.X, p.Y, sandbox.ButtonLeft)
		case "right":
			r.sb.Press(p.X, p.Y, sandbox.ButtonRight)
		default:
			return fmt.Errorf("%w: button %q", ErrBadPointer, p.Button)
		}
	case "move":
		r.sb.Move(p.X, p.Y)
	case "release":
		r.sb.Release()
	default:
		return fmt.Errorf("%w: action %q", ErrBadPointer, p.Action)
	}
	return nil
}

func (r *Runner) Resize(s Size) error {
	if !(s.Width > 0 && s.Height > 0) || math.IsInf(s.Width, 0) || math.IsInf(s.Height, 0) {
		return fmt.Errorf("%w: %gx%g", ErrBadSize, s.Width, s.Height)
	}
	r.mu.Lock()
	r.sb.Resize(s.Width, s.Height)
	r.mu.Unlock()
	return nil
}

func (r *Runner) Reset() {
	r.mu.Lock()
	r.sb.Reset()
	r.mu.Unlock()
}

func (r *Runner) ToggleSystemInfo() {
	r.mu.Lock()
	r.sb.ToggleSystemInfo()
	r.mu.Unlock()
}

func (r *Runner) Inspect() (sandbox.Inspection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sb.Inspect()
}

func (r *Runner) Energy() EnergyView {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.sb.Energy()
	return EnergyView{Left: o.Left, Right: o.Right, Total: o.Total()}
}

func (r *Runner) Snapshot() *snapshot.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sb.Snapshot()
}

// Restore loads snap and scales it to the served viewport.
func (r *Runner) Restore(snap *snapshot.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, h := r.sb.Size()
	if err := r.sb.Restore(snap); err != nil {
		return err
	}
	r.sb.Resize(w, h)
	return nil
}

func (r *Runner) Save(ctx context.Context) error {
	if r.store == nil {
		return ErrNoStore
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sb.Save(ctx, r.store)
}

func (r *Runner) Load(ctx context.Context) error {
	if r.store == nil {
		return ErrNoStore
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sb.Load(ctx, r.store)
}

func (r *Runner) handleMessage(msg Message) {
	var err error
	switch msg.Type {
	case "pointer":
		var p Pointer
		if err = json.Unmarshal(msg.Data, &p); err == nil {
			err = r.Pointer(p)
		}
	case "resize":
		var s Size
		if err = json.Unmarshal(msg.Data, &s); err == nil {
			err = r.Resize(s)
		}
	case "reset":
		r.Reset()
	case "system_info":
		r.ToggleSystemInfo()
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}
	if err != nil {
		log.Printf("[WS] %s: %v", msg.Type, err)
	}
}
