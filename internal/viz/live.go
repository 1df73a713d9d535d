package viz

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlesim/internal/constraint"
	"github.com/san-kum/particlesim/internal/scene"
	"github.com/san-kum/particlesim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	frameRate       = 60
	autoOrbit       = 0.01
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

type TickMsg time.Time

// Model steps a scene once per frame tick and renders it to a braille canvas.
type Model struct {
	name     string
	build    func() (*scene.Scene, error)
	scene    *scene.Scene
	dt       float64
	frame    int
	canvas   *Canvas
	camera   *Camera
	viewport Viewport
	theme    int
	running  bool
	showHelp bool
	history  []float64
	tracked  sim.Sampler
	err      error
}

// NewModel builds the scene and prepares the view. build is kept so the
// scene can be rebuilt from scratch on reset.
func NewModel(name string, build func() (*scene.Scene, error), dt float64) (Model, error) {
	m := Model{
		name:    name,
		build:   build,
		dt:      dt,
		canvas:  NewCanvas(width, height),
		camera:  NewCamera(),
		running: true,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// WithTheme selects the starting theme by name. Unknown names select the
// first theme.
func (m Model) WithTheme(name string) Model {
	m.theme = themeIndex(name)
	return m
}

// Theme is the palette currently in use.
func (m Model) Theme() Theme { return Themes[m.theme] }

func (m *Model) reset() error {
	sc, err := m.build()
	if err != nil {
		return fmt.Errorf("build %s: %w", m.name, err)
	}
	m.scene = sc
	m.frame = 0
	m.err = nil
	m.history = make([]float64, 0, historyCapacity)
	m.tracked = nil
	for _, metric := range sc.Metrics {
		if s, ok := metric.(sim.Sampler); ok {
			m.tracked = s
			break
		}
	}
	if sc.Chain != nil {
		m.viewport = chainViewport(sc)
	}
	return nil
}

// chainViewport frames the anchor with room for the chain to swing through a
// full circle, so the view never rescales mid-run.
func chainViewport(sc *scene.Scene) Viewport {
	var reach float64
	sc.Chain.Constraints().Each(func(_ int, d constraint.Distance) {
		reach += d.RestLength
	})
	anchor, err := sc.Chain.Position(sc.Handles[0])
	if err != nil || reach == 0 {
		return FitViewport(sc.Chain.Positions(), 0.1)
	}
	return Viewport{anchor.X - reach, anchor.Y - reach, anchor.X + reach, anchor.Y + reach}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "?":
			m.showHelp = !m.showHelp
		case "left", "h":
			m.camera.Orbit(-0.1, 0)
		case "right", "l":
			m.camera.Orbit(0.1, 0)
		case "up", "k":
			m.camera.Orbit(0, 0.1)
		case "down", "j":
			m.camera.Orbit(0, -0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-":
			m.camera.ZoomOut()
		case "a":
			if m.scene.Sphere != nil {
				m.scene.Sphere.AddElectron()
			}
		case "x":
			if m.scene.Sphere != nil {
				m.scene.Sphere.RemoveElectron()
			}
		}
		return m, nil

	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	if err := m.scene.Stepper.Step(m.dt); err != nil {
		log.Printf("live %s: frame %d: %v", m.name, m.frame, err)
		m.err = err
		return
	}
	m.frame++
	t := float64(m.frame) * m.dt
	for _, metric := range m.scene.Metrics {
		metric.Observe(m.frame, t)
	}
	if m.tracked != nil {
		if len(m.history) == historyCapacity {
			copy(m.history, m.history[1:])
			m.history = m.history[:historyCapacity-1]
		}
		m.history = append(m.history, m.tracked.Sample())
	}
	if m.scene.Sphere != nil {
		m.camera.Orbit(autoOrbit, 0)
	}
}

func (m Model) View() string {
	m.draw()
	th := Themes[m.theme]
	canvasView := canvasStyle.Foreground(th.Primary).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(th.Accent).Render(strings.ToUpper(m.name)) + "\n\n")
	switch {
	case m.err != nil:
		s.WriteString(StatusFailed.Foreground(th.Error).Render("FAILED") + "\n")
		s.WriteString(Subtle.Render(wrap(m.err.Error(), 38)) + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Foreground(th.Warning).Render("PAUSED") + "\n\n")
	}

	s.WriteString(MetricLabel.Render("Time") + MetricValue.Render(fmt.Sprintf("%.2fs", float64(m.frame)*m.dt)) + "\n")
	s.WriteString(MetricLabel.Render("Frame") + MetricValue.Render(fmt.Sprintf("%d", m.frame)) + "\n")
	if sc := m.scene; sc.Chain != nil {
		s.WriteString(MetricLabel.Render("Particles") + MetricValue.Render(fmt.Sprintf("%d", sc.Chain.Len())) + "\n")
		s.WriteString(MetricLabel.Render("Links") + MetricValue.Render(fmt.Sprintf("%d", sc.Chain.Constraints().Len())) + "\n")
		s.WriteString(MetricLabel.Render("Substeps") + MetricValue.Render(fmt.Sprintf("%d", sc.Chain.Config().Substeps)) + "\n")
	} else if sc.Sphere != nil {
		s.WriteString(MetricLabel.Render("Electrons") + MetricValue.Render(fmt.Sprintf("%d", sc.Sphere.Len())) + "\n")
		s.WriteString(MetricLabel.Render("Strength") + MetricValue.Render(fmt.Sprintf("%g", sc.Strength)) + "\n")
	}

	s.WriteString("\n" + Separator(38) + "\n\n")
	for _, metric := range m.scene.Metrics {
		s.WriteString(MetricLabel.Render(metric.Name()) + MetricValue.Render(fmt.Sprintf("%.4g", metric.Value())) + "\n")
	}

	if len(m.history) > 1 {
		s.WriteString("\n" + Sparkline(m.history, 36) + "\n")
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption(m.tracked.Name()))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\n" + KeyHint.Foreground(th.Muted).Render("SP:Pause R:Reset T:Theme Q:Quit ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Rebuild the scene        ║
║  T        - Cycle themes             ║
║  ←→↑↓     - Orbit the sphere camera  ║
║  + / -    - Zoom                     ║
║  A / X    - Add / remove an electron ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func (m *Model) draw() {
	m.canvas.Clear()
	switch {
	case m.scene.Chain != nil:
		m.drawChain()
	case m.scene.Sphere != nil:
		m.drawSphere()
	}
}

func (m *Model) drawChain() {
	space := m.scene.Chain
	space.Constraints().Each(func(_ int, d constraint.Distance) {
		a, errA := space.Position(d.A)
		b, errB := space.Position(d.B)
		if errA != nil || errB != nil {
			return
		}
		x0, y0 := m.viewport.Project(a, m.canvas)
		x1, y1 := m.viewport.Project(b, m.canvas)
		m.canvas.DrawLine(x0, y0, x1, y1)
	})
	for _, h := range m.scene.Handles {
		p := space.Particles().At(h)
		if p == nil {
			continue
		}
		x, y := m.viewport.Project(p.Position, m.canvas)
		if p.Pinned() {
			m.canvas.Disc(x, y, 3)
		} else {
			m.canvas.Disc(x, y, 1)
		}
	}
}

func (m *Model) drawSphere() {
	m.camera.DrawOutline(m.canvas, 96)
	for _, p := range m.scene.Sphere.Positions() {
		x, y, depth := m.camera.Project(p, m.canvas)
		if depth >= 0 {
			m.canvas.Disc(x, y, 2)
		} else {
			m.canvas.Set(x, y)
		}
	}
}

// wrap breaks s into lines of at most n runes.
func wrap(s string, n int) string {
	r := []rune(s)
	var b strings.Builder
	for len(r) > n {
		b.WriteString(string(r[:n]) + "\n")
		r = r[n:]
	}
	b.WriteString(string(r))
	return b.String()
}

func (m Model) Err() error { return m.err }
