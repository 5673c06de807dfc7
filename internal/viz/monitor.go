package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/dynamo"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	historyCapacity = 600
	frameInterval   = time.Second / 60
)

// snapshot is one recorded frame for replay.
type snapshot struct {
	positions []mgl64.Vec3
	time      float64
	energy    float64
}

type TickMsg time.Time

// Monitor is a Bubble Tea model that steps a cloth in real time and draws it
// as a wireframe next to live statistics.
type Monitor struct {
	params     cloth.Params
	pending    cloth.Params
	paramKeys  []string
	selected   int
	integrator dynamo.Integrator
	sim        *cloth.Simulation
	dt         float64
	substeps   int

	canvas   *Canvas
	camera   *Camera
	theme    Theme
	styles   styles
	running  bool
	showHelp bool
	notice   string
	err      error

	energyHistory []float64
	speedHistory  []float64
	history       []snapshot
	playHead      int
	recorder      *Recorder
	recording     bool
}

// NewMonitor builds the cloth and a monitor around it. Each frame advances
// the cloth by enough dt steps to keep pace with real time.
func NewMonitor(params cloth.Params, integ dynamo.Integrator, dt float64, gifPath string) (Monitor, error) {
	sim, err := cloth.New(params, cloth.WithIntegrator(integ))
	if err != nil {
		return Monitor{}, err
	}
	if !(dt > 0) {
		return Monitor{}, fmt.Errorf("%w: got %g", dynamo.ErrInvalidStep, dt)
	}

	keys := make([]string, 0)
	for k := range params.GetParams() {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := Monitor{
		params:        params,
		pending:       params,
		paramKeys:     keys,
		integrator:    integ,
		sim:           sim,
		dt:            dt,
		substeps:      max(1, int(math.Round(frameInterval.Seconds()/dt))),
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		camera:        NewCamera(),
		theme:         ThemeCyberpunk,
		styles:        newStyles(ThemeCyberpunk),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		speedHistory:  make([]float64, 0, historyCapacity),
		history:       make([]snapshot, 0, historyCapacity),
		playHead:      -1,
		recorder:      NewRecorder(gifPath),
	}
	m.camera.Fit(sim.Particles().Positions())
	m.record()
	return m, nil
}

func (m Monitor) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.err = m.recorder.Save()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.running {
				m.playHead = -1
				m.advance()
			}
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.selected = (m.selected + 1) % len(m.paramKeys)
		case "up", "k":
			m.adjustPending(1.05)
		case "down", "j":
			m.adjustPending(0.95)
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "t":
			m.theme = m.theme.Next()
			m.styles = newStyles(m.theme)
		case "g":
			if m.recording {
				m.err = m.recorder.Save()
			}
			m.recording = !m.recording
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.advance()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		if m.recording {
			m.draw()
			m.recorder.Capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

// advance runs one frame worth of steps. A step error pauses the monitor.
func (m *Monitor) advance() {
	if m.err != nil {
		return
	}
	for i := 0; i < m.substeps; i++ {
		if _, err := m.sim.Step(m.dt); err != nil {
			m.err = err
			m.running = false
			return
		}
	}
	m.record()
}

func (m *Monitor) record() {
	energy := m.sim.Energy(m.sim.State())
	m.energyHistory = pushBounded(m.energyHistory, energy)

	vel := m.sim.Particles().Velocities()
	speed := 0.0
	for _, v := range vel {
		speed += v.Len()
	}
	m.speedHistory = pushBounded(m.speedHistory, speed/float64(len(vel)))

	m.history = append(m.history, snapshot{
		positions: m.sim.Particles().Positions(),
		time:      m.sim.Time(),
		energy:    energy,
	})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func pushBounded(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *Monitor) adjustPending(factor float64) {
	key := m.paramKeys[m.selected]
	p, err := m.pending.With(key, m.pending.GetParams()[key]*factor)
	if err == nil {
		m.pending = p
	}
}

// scrub changes the playback position in history.
func (m *Monitor) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset rebuilds the cloth from the pending parameters. Invalid pending
// parameters are reported and the previous set is kept.
func (m *Monitor) reset() {
	sim, err := cloth.New(m.pending, cloth.WithIntegrator(m.integrator))
	if err != nil {
		m.notice = err.Error()
		m.pending = m.params
		return
	}
	m.sim, m.params, m.err, m.notice = sim, m.pending, nil, ""
	m.camera.Fit(sim.Particles().Positions())
	m.energyHistory = m.energyHistory[:0]
	m.speedHistory = m.speedHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.record()
}

// Simulation exposes the cloth being monitored.
func (m Monitor) Simulation() *cloth.Simulation { return m.sim }

func (m Monitor) Err() error { return m.err }

func (m *Monitor) positions() ([]mgl64.Vec3, float64) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		snap := m.history[m.playHead]
		return snap.positions, snap.time
	}
	return m.sim.Particles().Positions(), m.sim.Time()
}

func (m *Monitor) draw() {
	pos, _ := m.positions()
	m.canvas.Clear()
	Render3D(m.canvas, ClothWireframe(m.sim.Topology(), pos), m.camera)
}

func (m Monitor) status() string {
	st := m.styles
	switch {
	case m.err != nil:
		return st.fault.Render("ERROR " + m.err.Error())
	case m.notice != "":
		return st.fault.Render(m.notice)
	case m.playHead >= 0:
		back := m.history[m.playHead].time - m.history[len(m.history)-1].time
		if m.running {
			return st.paused.Render(fmt.Sprintf("REPLAYING (%.1fs)", back))
		}
		return st.paused.Render(fmt.Sprintf("REPLAY PAUSED (%.1fs)", back))
	case !m.running:
		return st.paused.Render("PAUSED")
	}
	if m.recording {
		return st.running.Render(fmt.Sprintf("RUNNING ● REC %d", m.recorder.Len()))
	}
	return st.running.Render("RUNNING")
}

// View renders the TUI interface.
func (m Monitor) View() string {
	m.draw()
	st := m.styles
	_, t := m.positions()

	var s strings.Builder
	p := m.params
	s.WriteString(st.header.Render(fmt.Sprintf("CLOTH %dx%d", p.Rows, p.Cols)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", t))
	row("Steps", fmt.Sprintf("%d", m.sim.Steps()))
	row("dt", fmt.Sprintf("%g x%d", m.dt, m.substeps))
	if n := len(m.energyHistory); n > 0 {
		row("Energy", fmt.Sprintf("%.4f", m.energyHistory[n-1]))
	}
	if len(m.speedHistory) > 0 {
		row("Speed", Sparkline(m.speedHistory, 24))
	}
	if m.playHead >= 0 && len(m.history) > 1 {
		row("Replay", ProgressBar(float64(m.playHead)/float64(len(m.history)-1), 24))
	}

	s.WriteString("\nPARAMETERS (applied on reset)\n")
	current, pending := m.params.GetParams(), m.pending.GetParams()
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-12s %8.4f", k, current[k])
		if pending[k] != current[k] {
			line += fmt.Sprintf(" → %.4f", pending[k])
		}
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.label.UnsetWidth().Render(line) + "\n")
		}
	}

	s.WriteString(st.help.Render("SP:Pause S:Step R:Reset Q:Quit\nT:Theme G:Record ?:Help\n[ ]:Replay ↑↓:Tune XY±:Camera"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + view
	}
	return view
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  S        - Single frame when paused ║
║  R        - Reset with tuned params  ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  [ / ]    - Rewind / forward         ║
║  X Y      - Rotate camera            ║
║  + / -    - Zoom                     ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// RunMonitor takes over the terminal until the monitor quits.
func RunMonitor(m Monitor) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Monitor); ok {
		return fm.Err()
	}
	return nil
}
