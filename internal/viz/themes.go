package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Particle  lipgloss.Color
	Structure lipgloss.Color
	Pointer   lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Particle:  lipgloss.Color("#00ffff"),
		Structure: lipgloss.Color("#ff00ff"),
		Pointer:   lipgloss.Color("#ffff00"),
		Accent:    lipgloss.Color("#ff00ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Particle:  lipgloss.Color("#00ff00"),
		Structure: lipgloss.Color("#005500"),
		Pointer:   lipgloss.Color("#88ff88"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Particle:  lipgloss.Color("#00a8cc"),
		Structure: lipgloss.Color("#4488aa"),
		Pointer:   lipgloss.Color("#ffd700"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
	}

	// Default theme
	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
}

// Compose merges the particle and structure layers cell by cell. Cells
// with particles take the particle color, cells with only structure take
// the structure color. Runs of equally colored cells share one style.
// Both canvases must have the same size.
func Compose(particles, structure *Canvas, th Theme) string {
	pStyle := lipgloss.NewStyle().Foreground(th.Particle)
	sStyle := lipgloss.NewStyle().Foreground(th.Structure)

	var b strings.Builder
	var run strings.Builder
	for row := 0; row < particles.Height; row++ {
		kind := -1
		flush := func() {
			switch kind {
			case 1:
				b.WriteString(pStyle.Render(run.String()))
			case 2:
				b.WriteString(sStyle.Render(run.String()))
			default:
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for col := 0; col < particles.Width; col++ {
			k := 0
			r := particles.Grid[row][col]
			switch {
			case particles.IsSet(col, row):
				k = 1
				r |= structure.Grid[row][col]
			case structure.IsSet(col, row):
				k = 2
				r = structure.Grid[row][col]
			}
			if k != kind && run.Len() > 0 {
				flush()
			}
			kind = k
			run.WriteRune(r)
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}
