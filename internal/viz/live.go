package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/lattice"
)

const (
	plotCols        = 60
	plotRows        = 20
	historyCapacity = 600
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model tracks a bunch through a ring turn by turn and renders the
// phase space live.
type Model struct {
	lat     *lattice.Lattice
	initial beam.Bunch
	ps      beam.Bunch
	turn    int
	plane   Plane
	running bool
	hr, vr  float64
	alive   []float64
}

// NewModel takes ownership of ps; the caller should pass a clone if it
// needs the bunch afterwards.
func NewModel(lat *lattice.Lattice, ps beam.Bunch) Model {
	m := Model{
		lat:     lat,
		initial: ps.Clone(),
		ps:      ps,
		plane:   PlaneXPX,
		running: true,
	}
	m.fitWindow()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and advances the tracking.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.plane = m.plane.Next()
			m.fitWindow()
		case "s":
			m.step()
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// step tracks one turn.
func (m *Model) step() {
	m.lat.Propagate(m.ps)
	m.turn++

	m.alive = append(m.alive, float64(m.ps.Alive()))
	if len(m.alive) > historyCapacity {
		m.alive = m.alive[1:]
	}
	m.growWindow()
}

func (m *Model) reset() {
	m.ps = m.initial.Clone()
	m.turn = 0
	m.alive = m.alive[:0]
	m.fitWindow()
}

// fitWindow sizes the plot window to the current bunch, with headroom
// so betatron motion stays inside it.
func (m *Model) fitWindow() {
	hs, vs := Project(m.ps, m.plane)
	m.hr = 4 * HalfRange(hs)
	m.vr = 4 * HalfRange(vs)
}

// growWindow widens the window when the bunch outgrows it. The window
// never shrinks between resets, so the plot does not breathe.
func (m *Model) growWindow() {
	hs, vs := Project(m.ps, m.plane)
	if r := HalfRange(hs); r > m.hr {
		m.hr = r
	}
	if r := HalfRange(vs); r > m.vr {
		m.vr = r
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	hs, vs := Project(m.ps, m.plane)
	plot := ScatterRange(hs, vs, m.hr, m.vr, plotCols, plotRows)
	caption := fmt.Sprintf("%s  (±%.3g, ±%.3g)", m.plane, m.hr, m.vr)
	canvasView := canvasStyle.Render(plot + caption)

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.lat.Name())) + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if len(m.alive) > 1 {
		chart := asciigraph.Plot(m.alive, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Alive"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Turn") + valueStyle.Render(fmt.Sprintf("%d", m.turn)) + "\n")
	s.WriteString(labelStyle.Render("Plane") + valueStyle.Render(m.plane.String()) + "\n")
	s.WriteString(labelStyle.Render("Alive") + valueStyle.Render(fmt.Sprintf("%d / %d", m.ps.Alive(), len(m.ps))) + "\n")
	s.WriteString(labelStyle.Render("Elements") + valueStyle.Render(fmt.Sprintf("%d", m.lat.Len())) + "\n")
	s.WriteString(labelStyle.Render("Length") + valueStyle.Render(fmt.Sprintf("%.3f m", m.lat.Length())) + "\n")
	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset S:Step\nTab:Plane Q:Quit"))
	statsView := statsStyle.Render(s.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
