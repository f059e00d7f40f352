package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/sphindex/internal/config"
	"github.com/san-kum/sphindex/internal/experiment"
)

var presetInfo = map[string]string{
	"default":      "fluid settling under gravity",
	"dense":        "packed, high pressure",
	"zero_gravity": "free expansion",
	"whirlpool":    "pointer pulls at the centre",
	"grid":         "uniform grid, radius 10",
	"hilbert":      "hilbert curve index",
}

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuActDesc  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuItem     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuItemDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateIndex
	stateSim
)

// app picks a preset and an index, then hands over to the live Model.
type app struct {
	state, cursor int
	reg           *experiment.Registry
	presets       []string
	indexes       []string
	preset        string
	width, height int
	liveModel     Model
	err           error
}

func NewInteractiveApp(reg *experiment.Registry) *app {
	return &app{
		state:   stateMenu,
		reg:     reg,
		presets: config.ListPresets(),
		indexes: reg.ListIndexes(),
	}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			m.liveModel.resize(msg.Width, msg.Height)
		}
		return m, nil
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m app) handleKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateIndex:
		return m.indexKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
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
		m.preset = m.presets[m.cursor]
		m.state, m.cursor, m.err = stateIndex, 0, nil
		// Start on the preset's own index.
		want := config.GetPreset(m.preset).Index
		for i, name := range m.indexes {
			if name == want {
				m.cursor = i
			}
		}
	}
	return m, nil
}

func (m app) indexKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.state, m.cursor = stateMenu, 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.indexes)-1 {
			m.cursor++
		}
	case "enter", " ", "s":
		cmd := m.start()
		return m, cmd
	}
	return m, nil
}

func (m *app) start() tea.Cmd {
	cfg := config.GetPreset(m.preset)
	cfg.Index = m.indexes[m.cursor]
	live, err := NewModel(cfg, m.reg)
	if err != nil {
		m.err = err
		return nil
	}
	if m.width > 0 {
		live.resize(m.width, m.height)
	}
	m.liveModel = live
	m.state = stateSim
	return m.liveModel.Init()
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		items := make([][2]string, len(m.presets))
		for i, name := range m.presets {
			items[i] = [2]string{name, presetInfo[name]}
		}
		return menu("SPHINDEX", "particle fluid on spatial indexes", items, m.cursor, "enter select  q quit", nil)
	case stateIndex:
		items := make([][2]string, len(m.indexes))
		for i, name := range m.indexes {
			items[i] = [2]string{name, m.reg.Describe(name)}
		}
		return menu(strings.ToUpper(m.preset), presetInfo[m.preset], items, m.cursor, "enter start  esc back", m.err)
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func menu(title, sub string, items [][2]string, cursor int, keys string, err error) string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(title) + "\n    " + menuSub.Render(sub) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, it := range items {
		desc := it[1]
		if len(desc) > 36 {
			desc = desc[:33] + "..."
		}
		if i == cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-18s", it[0])), menuActDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuItem.Render(fmt.Sprintf("  %-18s", it[0])), menuItemDesc.Render(desc)))
		}
	}
	if err != nil {
		b.WriteString("\n    " + SparkLow.Render(err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuItem.Render(" navigate  ") + menuItem.Render(keys) + "\n")
	return b.String()
}

// RunInteractive opens the preset and index menus, then the live view.
func RunInteractive(reg *experiment.Registry) error {
	_, err := tea.NewProgram(NewInteractiveApp(reg), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
