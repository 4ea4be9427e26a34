package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/ballbox/internal/config"
	"github.com/san-kum/ballbox/internal/sandbox"
	"github.com/san-kum/ballbox/internal/snapshot"
	"github.com/san-kum/ballbox/internal/verlet"
)

func newTestModel(t *testing.T, store snapshot.Store) Model {
	t.Helper()
	sb, err := sandbox.New(config.DefaultConfig().Sandbox, 160, 88, 7)
	if err != nil {
		t.Fatal(err)
	}
	sb.Populate()
	return NewModel(sb, store, 60)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", next)
	}
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// cellOf finds the terminal cell whose braille centre lies inside ball h.
func cellOf(t *testing.T, m Model, h verlet.Handle) (int, int) {
	t.Helper()
	b := m.Sandbox().Scene().Body(h)
	for row := 0; row < m.canvas.Height; row++ {
		for col := 0; col < m.canvas.Width; col++ {
			x, y := cellToWorld(col, row)
			if m.Sandbox().HitTest(x, y) == h && b.Contains(x, y) {
				return col, row
			}
		}
	}
	t.Fatalf("no cell hits ball %d", h)
	return 0, 0
}

func TestCellToWorld(t *testing.T) {
	x, y := cellToWorld(0, 0)
	if x != 1 || y != 2 {
		t.Errorf("expected (1, 2), got (%v, %v)", x, y)
	}
	x, y = cellToWorld(10, 3)
	if x != 21 || y != 14 {
		t.Errorf("expected (21, 14), got (%v, %v)", x, y)
	}
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100 + panelWidth, Height: 31})
	if m.canvas.Width != 100 || m.canvas.Height != 30 {
		t.Fatalf("expected 100x30 canvas, got %dx%d", m.canvas.Width, m.canvas.Height)
	}
	w, h := m.Sandbox().Size()
	if w != 200 || h != 120 {
		t.Errorf("expected 200x120 world, got %vx%v", w, h)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 1, Height: 1})
	if m.canvas.Width != minCols || m.canvas.Height != minRows {
		t.Errorf("expected minimum canvas, got %dx%d", m.canvas.Width, m.canvas.Height)
	}
}

func TestFunctionKeys(t *testing.T) {
	m := newTestModel(t, nil)
	sb := m.Sandbox()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyF1})
	if sb.ShowHelp() {
		t.Error("expected F1 to hide help")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyF2})
	if !sb.ShowSystemInfo() {
		t.Error("expected F2 to show system info")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.Running() {
		t.Error("expected space to pause")
	}
	m, _ = update(t, m, runes("t"))
	if m.theme != 1 {
		t.Errorf("expected theme 1, got %d", m.theme)
	}

	sb.Scene().Bodies = sb.Scene().Bodies[:1]
	update(t, m, tea.KeyMsg{Type: tea.KeyF3})
	if sb.Scene().Len() <= 1 {
		t.Error("expected F3 to repopulate")
	}
}

func TestPausedTickDoesNotStep(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	now := time.Now()
	m, cmd := update(t, m, TickMsg(now))
	m, _ = update(t, m, TickMsg(now.Add(time.Second)))
	if cmd == nil {
		t.Fatal("expected the tick to be rescheduled")
	}
	if m.Sandbox().Frames() != 0 {
		t.Errorf("expected no frames while paused, got %d", m.Sandbox().Frames())
	}
}

func TestTickRecordsEnergy(t *testing.T) {
	m := newTestModel(t, nil)
	now := time.Now()
	m, _ = update(t, m, TickMsg(now))
	m, _ = update(t, m, TickMsg(now.Add(16*time.Millisecond)))
	m, _ = update(t, m, TickMsg(now.Add(32*time.Millisecond)))
	if m.Sandbox().Frames() != 2 {
		t.Errorf("expected 2 frames, got %d", m.Sandbox().Frames())
	}
	if m.energy.Len() != 2 {
		t.Errorf("expected 2 energy samples, got %d", m.energy.Len())
	}
}

func TestMouseDrag(t *testing.T) {
	m := newTestModel(t, nil)
	col, row := cellOf(t, m, 0)
	h := m.Sandbox().HitTest(cellToWorld(col, row))

	m, _ = update(t, m, tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.Sandbox().Grabbed() != h {
		t.Fatalf("expected ball %d grabbed, got %d", h, m.Sandbox().Grabbed())
	}
	m, _ = update(t, m, tea.MouseMsg{X: col + 1, Y: row, Action: tea.MouseActionMotion})
	m, _ = update(t, m, tea.MouseMsg{X: col + 1, Y: row, Action: tea.MouseActionRelease})
	if m.Sandbox().Grabbed() != verlet.NoHandle {
		t.Error("expected release to drop the ball")
	}
	if !m.Sandbox().Damper().Contains(h) {
		t.Error("expected the ball back in the left chamber")
	}
}

func TestMouseInspect(t *testing.T) {
	m := newTestModel(t, nil)
	col, row := cellOf(t, m, 0)
	h := m.Sandbox().HitTest(cellToWorld(col, row))
	m, _ = update(t, m, tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	if m.Sandbox().Inspected() != h {
		t.Fatalf("expected ball %d inspected, got %d", h, m.Sandbox().Inspected())
	}
	if !strings.Contains(m.View(), "Mass: 1") {
		t.Error("expected the inspector in the panel")
	}
}

func TestPressOnPanelIgnored(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = update(t, m, tea.MouseMsg{X: m.canvas.Width + 2, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.Sandbox().Grabbed() != verlet.NoHandle {
		t.Error("expected no grab outside the canvas")
	}
}

func TestQuitSaves(t *testing.T) {
	store := snapshot.NewFileStore(t.TempDir())
	m := newTestModel(t, store)
	_, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("expected a saved snapshot, got %v", err)
	}
	if len(snap.Points) != m.Sandbox().Scene().Len() {
		t.Errorf("expected %d points, got %d", m.Sandbox().Scene().Len(), len(snap.Points))
	}
}

func TestViewShowsHelp(t *testing.T) {
	m := newTestModel(t, nil)
	v := m.View()
	if !strings.Contains(v, "LMB: drag ball") {
		t.Error("expected help text in view")
	}
	if !strings.Contains(v, "RUNNING") {
		t.Error("expected run status in view")
	}
}
