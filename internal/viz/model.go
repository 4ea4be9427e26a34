package viz

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ballbox/internal/metrics"
	"github.com/san-kum/ballbox/internal/sandbox"
	"github.com/san-kum/ballbox/internal/snapshot"
	"github.com/san-kum/ballbox/internal/surface"
)

const (
	panelWidth      = 42
	minCols         = 8
	minRows         = 4
	historyCapacity = 600
)

type TickMsg time.Time

// Model drives a sandbox from terminal events. The sandbox is shared between
// copies of the model, as bubbletea passes models by value.
type Model struct {
	sb      *sandbox.Sandbox
	store   snapshot.Store
	canvas  *surface.Canvas
	fps     int
	running bool
	energy  *metrics.History
	theme   int
	styles  styles
	status  string

	recording *surface.GIF
	raster    *surface.Raster
}

// NewModel wraps sb. store may be nil, in which case nothing is saved.
func NewModel(sb *sandbox.Sandbox, store snapshot.Store, fps int) Model {
	if fps <= 0 {
		fps = 60
	}
	w, h := sb.Size()
	cols, rows := max(int(w)/2, minCols), max(int(h)/4, minRows)
	return Model{
		sb:      sb,
		store:   store,
		canvas:  surface.NewCanvas(cols, rows),
		fps:     fps,
		running: true,
		energy:  metrics.NewHistory(historyCapacity),
		styles:  newStyles(Themes[0]),
	}
}

func (m Model) Sandbox() *sandbox.Sandbox { return m.sb }

func (m Model) Running() bool { return m.running }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width-panelWidth, msg.Height-1)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.save()
			return m, tea.Quit
		case " ":
			m.running = !m.running
			m.sb.PauseClock()
		case "f1":
			m.sb.ToggleHelp()
		case "f2":
			m.sb.ToggleSystemInfo()
		case "f3":
			m.sb.Reset()
			m.energy.Reset()
		case "s":
			m.save()
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = newStyles(Themes[m.theme])
		case "g":
			m.toggleRecording()
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case TickMsg:
		if m.running && m.sb.Tick(time.Time(msg)) {
			m.energy.Push(m.sb.Energy().Total().Total())
		}
		if m.recording != nil {
			m.raster.Clear()
			m.sb.Render(m.raster)
			m.recording.AddFrame(m.raster)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) resize(cols, rows int) {
	cols, rows = max(cols, minCols), max(rows, minRows)
	if cols == m.canvas.Width && rows == m.canvas.Height {
		return
	}
	m.canvas = surface.NewCanvas(cols, rows)
	m.sb.Resize(m.canvas.Bounds())
	if m.recording != nil {
		m.finishRecording()
	}
}

// cellToWorld maps a terminal cell to the centre of its braille block.
func cellToWorld(col, row int) (float64, float64) {
	return float64(col*2 + 1), float64(row*4 + 2)
}

func (m *Model) mouse(msg tea.MouseMsg) {
	x, y := cellToWorld(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.X >= m.canvas.Width {
			return
		}
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.sb.Press(x, y, sandbox.ButtonLeft)
		case tea.MouseButtonRight:
			m.sb.Press(x, y, sandbox.ButtonRight)
		}
	case tea.MouseActionMotion:
		m.sb.Move(x, y)
	case tea.MouseActionRelease:
		m.sb.Release()
	}
}

func (m *Model) save() {
	if m.store == nil {
		return
	}
	if err := m.sb.Save(context.Background(), m.store); err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	m.status = "snapshot saved"
}

func (m *Model) toggleRecording() {
	if m.recording != nil {
		m.finishRecording()
		return
	}
	w, h := m.canvas.Bounds()
	m.raster = surface.NewRaster(int(w), int(h))
	m.recording = surface.NewGIF(100 / m.fps)
	m.status = "recording"
}

func (m *Model) finishRecording() {
	rec := m.recording
	m.recording, m.raster = nil, nil
	if rec.Len() == 0 {
		m.status = ""
		return
	}
	name := fmt.Sprintf("ballbox_%d.gif", time.Now().Unix())
	f, err := os.Create(name)
	if err != nil {
		m.status = "recording failed: " + err.Error()
		return
	}
	defer f.Close()
	if err := rec.Encode(f); err != nil {
		m.status = "recording failed: " + err.Error()
		return
	}
	m.status = "saved " + name
}

func (m Model) View() string {
	m.canvas.Clear()
	m.sb.Render(m.canvas)
	return lipgloss.JoinHorizontal(lipgloss.Top, m.canvas.Render(), m.panel())
}

func (m Model) panel() string {
	st := m.styles
	var s strings.Builder
	s.WriteString(st.title.Render("BALLBOX") + "\n")
	switch {
	case m.recording != nil:
		s.WriteString(st.paused.Render("● REC") + "\n")
	case m.running:
		s.WriteString(st.running.Render("RUNNING") + "\n")
	default:
		s.WriteString(st.paused.Render("PAUSED") + "\n")
	}
	if m.status != "" {
		s.WriteString(st.muted.Render(m.status) + "\n")
	}
	s.WriteString("\n")

	if lines := m.sb.InfoLines(); len(lines) > 0 {
		s.WriteString(st.text.Render(strings.Join(lines, "\n")) + "\n\n")
	}
	if m.sb.ShowSystemInfo() && m.energy.Len() > 1 {
		chart := asciigraph.Plot(m.energy.Values(), asciigraph.Height(5), asciigraph.Width(panelWidth-12), asciigraph.Caption("Energy"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}
	if m.sb.ShowHelp() {
		s.WriteString(st.muted.Render(strings.Join(sandbox.HelpLines(), "\n")) + "\n")
		s.WriteString(st.muted.Render("SP: pause  S: save  G: record\nT: theme   Q: quit") + "\n")
	}
	return st.panel.Render(s.String())
}
