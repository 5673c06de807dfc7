package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/integrators"
)

var presetInfo = map[string]string{
	"default": "14x14 sheet, light breeze",
	"calm":    "no wind, heavier damping",
	"gust":    "strong angled wind",
	"stiff":   "stiff springs, small dt",
	"large":   "32x32 fine mesh",
}

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSubtle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// Menu lets the user pick a preset and then hands over to a Monitor.
type Menu struct {
	presets []string
	cursor  int
	gifPath string
	monitor *Monitor
	err     error
}

func NewMenu(gifPath string) Menu {
	return Menu{presets: config.ListPresets(), gifPath: gifPath}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.monitor != nil {
		next, cmd := m.monitor.Update(msg)
		mon := next.(Monitor)
		m.monitor = &mon
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m.start()
	}
	return m, nil
}

func (m Menu) start() (tea.Model, tea.Cmd) {
	cfg := config.GetPreset(m.presets[m.cursor])
	integ, err := integrators.Get(cfg.Run.Integrator)
	if err != nil {
		m.err = err
		return m, nil
	}
	mon, err := NewMonitor(cfg.Params(), integ, cfg.Run.Dt, m.gifPath)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.monitor = &mon
	return m, mon.Init()
}

func (m Menu) View() string {
	if m.monitor != nil {
		return m.monitor.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("CLOTHSIM") + "\n    " + menuSubtle.Render("mass-spring cloth") + "\n    " + menuSubtle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-10s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-10s", name)), menuSubtle.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + menuDesc.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuIdle.Render(" navigate  ") + menuKey.Render("enter") + menuIdle.Render(" select  ") + menuKey.Render("q") + menuIdle.Render(" quit") + "\n")
	return b.String()
}

// RunMenu shows the preset picker, then the monitor for the chosen preset.
func RunMenu(gifPath string) error {
	_, err := tea.NewProgram(NewMenu(gifPath), tea.WithAltScreen()).Run()
	return err
}
