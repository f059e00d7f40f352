package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sphindex/internal/config"
	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/experiment"
	"github.com/san-kum/sphindex/internal/export"
	"github.com/san-kum/sphindex/internal/metrics"
	"github.com/san-kum/sphindex/internal/physics"
	"github.com/san-kum/sphindex/internal/sim"
	"github.com/san-kum/sphindex/internal/spatial/overlay"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	statsWidth      = 48

	// canvasStyle padding, in cells.
	padLeft = 2
	padTop  = 1
)

// GIFPath is where recordings are written.
var GIFPath = "sphindex.gif"

// SVGPath is where the s key writes the current frame.
var SVGPath = "sphindex.svg"

type TickMsg time.Time

// Model drives a physics.World at a fixed tick rate and renders it.
type Model struct {
	world *physics.World
	cfg   *config.Config
	reg   *experiment.Registry

	particles, overlay *Canvas
	width, height      int

	indexNames []string
	indexPos   int

	running   bool
	overlayOn bool
	showHelp  bool
	substeps  int
	frame     int
	message   string

	pointer dynamo.Vec2
	pressed bool
	hover   bool

	params    map[string]float64
	paramKeys []string
	selected  int

	energy   []float64
	load     []float64
	history  []sim.Snapshot
	playHead int

	recording bool
	frames    []*image.Paletted
}

// NewModel builds the world described by cfg. cfg is copied; the model
// never writes through the caller's pointer.
func NewModel(cfg *config.Config, reg *experiment.Registry) (Model, error) {
	c := *cfg
	w, err := experiment.NewWorld(&c, reg)
	if err != nil {
		return Model{}, err
	}

	names := reg.ListIndexes()
	pos := sort.SearchStrings(names, c.Index)

	m := Model{
		world:      w,
		cfg:        &c,
		reg:        reg,
		particles:  NewCanvas(width, height),
		overlay:    NewCanvas(width, height),
		width:      width,
		height:     height,
		indexNames: names,
		indexPos:   pos,
		running:    true,
		substeps:   max(c.SubSteps, 1),
		energy:     make([]float64, 0, historyCapacity),
		load:       make([]float64, 0, historyCapacity),
		history:    make([]sim.Snapshot, 0, historyCapacity),
		playHead:   -1,
	}
	if p, ok, pressed := w.Pointer(); ok {
		m.pointer, m.pressed, m.hover = p, pressed, true
	}
	m.loadParams()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// World exposes the simulated world.
func (m Model) World() *physics.World { return m.world }

// Update handles input events and steps the simulation.
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
		case "o":
			m.overlayOn = !m.overlayOn
		case "i":
			m.cycleIndex()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "g":
			m.toggleRecording()
		case "s":
			m.saveSVG(SVGPath)
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		if m.recording {
			m.draw()
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

// step advances the world by one frame of sub-steps.
func (m *Model) step() {
	m.world.Evolve(m.substeps)
	m.frame++

	ps := m.world.Particles()
	m.energy = append(m.energy, metrics.MeanKinetic(ps))
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
	m.load = append(m.load, m.neighborLoad())
	if len(m.load) > historyCapacity {
		m.load = m.load[1:]
	}
	m.history = append(m.history, sim.Snapshot{Frame: m.frame, Time: m.world.Time(), Particles: ps})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// mouse maps terminal cells onto the world and feeds the pointer.
func (m *Model) mouse(msg tea.MouseMsg) {
	pos, ok := m.toWorld(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if !ok || msg.Button != tea.MouseButtonLeft {
			return
		}
		m.pointer, m.pressed, m.hover = pos, true, true
	case tea.MouseActionRelease:
		m.pressed = false
		if ok {
			m.pointer = pos
		}
	case tea.MouseActionMotion:
		if !ok {
			m.hover = m.pressed
			break
		}
		m.pointer, m.hover = pos, true
	}
	if m.hover {
		p := m.pointer
		m.world.SetPointer(&p, m.pressed)
	} else {
		m.world.SetPointer(nil, false)
	}
}

// toWorld converts a terminal cell to the world position at the centre of
// the matching canvas cell. ok is false outside the canvas.
func (m Model) toWorld(x, y int) (dynamo.Vec2, bool) {
	col, row := x-padLeft, y-padTop
	if col < 0 || row < 0 || col >= m.particles.Width || row >= m.particles.Height {
		return dynamo.Vec2{}, false
	}
	p := m.particles.Projection(m.world.Width(), m.world.Height())
	return p.World(col*2+1, row*4+2), true
}

func (m *Model) resize(w, h int) {
	cols := max(w-statsWidth-padLeft*2, 20)
	rows := max(h-padTop*2, 8)
	if cols == m.width && rows == m.height {
		return
	}
	m.width, m.height = cols, rows
	m.particles = NewCanvas(cols, rows)
	m.overlay = NewCanvas(cols, rows)
	m.frames = nil
}

func (m *Model) cycleIndex() {
	if len(m.indexNames) == 0 {
		return
	}
	next := (m.indexPos + 1) % len(m.indexNames)
	name := m.indexNames[next]
	build, err := m.reg.GetIndex(name)
	if err != nil {
		m.message = err.Error()
		return
	}
	m.world.SetIndex(build)
	m.indexPos = next
	m.cfg.Index = name
	m.message = ""
}

func (m *Model) loadParams() {
	m.params = m.world.GetParams()
	m.paramKeys = m.paramKeys[:0]
	for k := range m.params {
		m.paramKeys = append(m.paramKeys, k)
	}
	sort.Strings(m.paramKeys)
	if m.selected >= len(m.paramKeys) {
		m.selected = 0
	}
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

// adjustParam scales the selected parameter. Zero values move by one unit
// in the direction of factor.
func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key]
	next := val * factor
	if val == 0 {
		next = math.Copysign(1, factor-1)
	}
	if err := m.world.SetParam(key, next); err != nil {
		m.message = err.Error()
		return
	}
	m.params[key] = next
	m.message = ""
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
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

// reset rebuilds the world from the configuration, keeping the index
// currently selected.
func (m *Model) reset() {
	w, err := experiment.NewWorld(m.cfg, m.reg)
	if err != nil {
		m.message = err.Error()
		return
	}
	if m.hover {
		p := m.pointer
		w.SetPointer(&p, m.pressed)
	}
	m.world = w
	m.frame = 0
	m.energy = m.energy[:0]
	m.load = m.load[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.message = ""
	m.loadParams()
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		return
	}
	if err := m.saveGIF(GIFPath); err != nil {
		m.message = err.Error()
	} else if len(m.frames) > 0 {
		m.message = fmt.Sprintf("saved %d frames to %s", len(m.frames), GIFPath)
	}
	m.recording = false
	m.frames = nil
}

// shown returns the particles on screen: the replayed snapshot or the
// live state.
func (m Model) shown() (sim.Snapshot, bool) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead], true
	}
	return sim.Snapshot{Frame: m.frame, Time: m.world.Time(), Particles: m.world.Particles()}, false
}

// draw renders particles and, when enabled, the index structure of the
// live world. Replayed frames have no structure.
func (m *Model) draw() {
	m.particles.Clear()
	m.overlay.Clear()

	snap, replay := m.shown()
	proj := m.particles.Projection(m.world.Width(), m.world.Height())
	DrawParticles(m.particles, proj, snap.Particles)

	if m.overlayOn && !replay {
		idx := m.world.Index()
		DrawRects(m.overlay, proj, overlay.Clip(overlay.Rects(idx), m.world.Width(), m.world.Height()))
		DrawPath(m.overlay, proj, overlay.Path(idx))
	}
	if m.hover {
		x, y := proj.Dot(m.pointer)
		m.overlay.DrawLine(x-2, y, x+2, y)
		m.overlay.DrawLine(x, y-2, x, y+2)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	snap, replay := m.shown()

	canvasView := canvasStyle.Render(Compose(m.particles, m.overlay, CurrentTheme))

	var s strings.Builder
	s.WriteString(headerStyle.Render("SPHINDEX · "+strings.ToUpper(m.cfg.Index)) + "\n")
	s.WriteString(m.status(replay) + "\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	stats := m.world.LastStats()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", snap.Time))
	row("Frame", fmt.Sprintf("%d", snap.Frame))
	row("Particles", fmt.Sprintf("%d", len(snap.Particles)))
	row("Energy", fmt.Sprintf("%.2f", metrics.MeanKinetic(snap.Particles)))
	row("Neighbors", fmt.Sprintf("%.1f/particle", m.neighborLoad()))
	s.WriteString(labelStyle.Render("") + Sparkline(m.load, 24) + "\n")
	row("Dropped", fmt.Sprintf("%d", stats.Dropped))
	s.WriteString(labelStyle.Render("History") + m.historyBar(24) + "\n")
	if m.hover {
		state := "hover"
		if m.pressed {
			state = "pull"
		}
		row("Pointer", fmt.Sprintf("%.0f,%.0f %s", m.pointer.X, m.pointer.Y, state))
	}

	s.WriteString("\nPARAMETERS\n")
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-14s %10.3f", k, m.params[k])
		if i == m.selected {
			s.WriteString(activeStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Width(0).Render(line) + "\n")
		}
	}
	if m.message != "" {
		s.WriteString("\n" + Subtle.Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause R:Reset Q:Quit\nI:Index O:Overlay T:Theme\nG:Record S:SVG ?:Help\n[ ]:Time-Travel ↑↓:Tune"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

// neighborLoad is the mean number of neighbours found per particle in the
// last sub-step.
func (m Model) neighborLoad() float64 {
	n := m.world.Len()
	if n == 0 {
		return 0
	}
	return float64(m.world.LastStats().Neighbors) / float64(n)
}

// historyBar shows the replay position, or how full the history buffer is
// while live.
func (m Model) historyBar(w int) string {
	if m.playHead >= 0 && len(m.history) > 0 {
		return Bar(float64(m.playHead+1)/float64(len(m.history)), w)
	}
	return Bar(float64(len(m.history))/historyCapacity, w)
}

func (m Model) status(replay bool) string {
	var status string
	switch {
	case replay && m.running:
		status = StatusPaused.Render(fmt.Sprintf("REPLAYING (%d/%d)", m.playHead+1, len(m.history)))
	case replay:
		status = StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED (%d/%d)", m.playHead+1, len(m.history)))
	case m.running:
		status = StatusRunning.Render("RUNNING")
	default:
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " " + StatusRecording.Render("● REC")
	}
	return status
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  I        - Next spatial index       ║
║  O        - Toggle index overlay     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  G        - Toggle GIF recording     ║
║  S        - Save frame as SVG        ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Mouse    - Hold left button to pull ║
╚══════════════════════════════════════╝`

// captureFrame rasterises the particle canvas, one 4x4 block per dot.
func (m *Model) captureFrame() {
	const dot = 4
	dw, dh := m.particles.Dots()
	img := image.NewPaletted(image.Rect(0, 0, dw*dot, dh*dot), color.Palette{color.Black, color.White})
	for row := 0; row < m.particles.Height; row++ {
		for col := 0; col < m.particles.Width; col++ {
			cell := m.particles.Grid[row][col]
			if cell == brailleBlank {
				continue
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if cell&pixelMap[dy][dx] == 0 {
						continue
					}
					x0, y0 := (col*2+dx)*dot, (row*4+dy)*dot
					for py := 0; py < dot; py++ {
						for px := 0; px < dot; px++ {
							img.SetColorIndex(x0+px, y0+py, 1)
						}
					}
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF(path string) error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

// saveSVG writes the frame on screen, with the index overlay when it is
// toggled on. Replayed frames carry no overlay.
func (m *Model) saveSVG(path string) {
	snap, replay := m.shown()
	ov := export.WorldOverlay(m.world, m.overlayOn && !replay)
	svg := export.FrameToSVG(snap.Particles, m.world.Width(), m.world.Height(), 1, ov)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		m.message = fmt.Sprintf("save svg: %v", err)
		return
	}
	m.message = "saved frame to " + path
}

// Run starts the live view for cfg.
func Run(cfg *config.Config, reg *experiment.Registry) error {
	m, err := NewModel(cfg, reg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
