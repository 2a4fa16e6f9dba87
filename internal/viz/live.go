// Package viz renders live simulations as a braille wireframe TUI.
package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/positional"
	"github.com/san-kum/rigidsim/internal/rollout"
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

const (
	canvasWidth  = 80
	canvasHeight = 24
	historyCap   = 600
	trailCap     = 200
	frameRate    = 30
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type TickMsg time.Time

// Viewer is the bubbletea model driving a live simulation.
type Viewer struct {
	sys    *system.System
	st     *positional.State
	policy rollout.Policy
	name   string

	q0, qd0 []float64

	cam    *Camera
	canvas *Canvas
	wire   *Wireframe

	t            float64
	stepsPerTick int
	steps        int
	maxSteps     int

	running  bool
	showHelp bool
	err      error

	energyHist []float64
	trail      []spatial.Vec3
	prog       progress.Model
}

// NewViewer initializes the scene at (q, qd). maxSteps of zero runs
// without a step budget.
func NewViewer(sys *system.System, name string, q, qd []float64, policy rollout.Policy, maxSteps int) (*Viewer, error) {
	st, err := positional.Init(sys, q, qd)
	if err != nil {
		return nil, err
	}

	center := spatial.Vec3{}
	for i := range st.XI {
		center = center.Add(st.XI[i].Pos)
	}
	if len(st.XI) > 0 {
		center = center.Scale(1 / float64(len(st.XI)))
	}

	spt := int(1.0/(frameRate*sys.Opts.Timestep) + 0.5)
	if spt < 1 {
		spt = 1
	}

	v := &Viewer{
		sys:          sys,
		st:           st,
		policy:       policy,
		name:         name,
		q0:           append([]float64(nil), q...),
		qd0:          append([]float64(nil), qd...),
		cam:          NewCamera(center),
		canvas:       NewCanvas(canvasWidth, canvasHeight),
		wire:         &Wireframe{},
		stepsPerTick: spt,
		maxSteps:     maxSteps,
		running:      true,
		energyHist:   make([]float64, 0, historyCap),
		trail:        make([]spatial.Vec3, 0, trailCap),
		prog:         progress.New(progress.WithDefaultGradient()),
	}
	v.prog.Width = 30
	return v, nil
}

// Run drives the viewer until quit or failure.
func Run(sys *system.System, name string, q, qd []float64, policy rollout.Policy, maxSteps int) error {
	v, err := NewViewer(sys, name, q, qd, policy, maxSteps)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(v).Run()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (v *Viewer) Init() tea.Cmd {
	return tick()
}

func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return v, tea.Quit
		case " ":
			if v.err == nil {
				v.running = !v.running
			}
		case "r":
			v.reset()
		case "left", "h":
			v.cam.Orbit(-0.1, 0)
		case "right", "l":
			v.cam.Orbit(0.1, 0)
		case "up", "k":
			v.cam.Orbit(0, 0.1)
		case "down", "j":
			v.cam.Orbit(0, -0.1)
		case "+", "=":
			v.cam.ZoomIn()
		case "-", "_":
			v.cam.ZoomOut()
		case "?":
			v.showHelp = !v.showHelp
		}
	case TickMsg:
		if v.running {
			v.advance()
		}
		return v, tick()
	}
	return v, nil
}

func (v *Viewer) reset() {
	st, err := positional.Init(v.sys, v.q0, v.qd0)
	if err != nil {
		return
	}
	v.st = st
	v.t = 0
	v.steps = 0
	v.err = nil
	v.running = true
	v.energyHist = v.energyHist[:0]
	v.trail = v.trail[:0]
}

func (v *Viewer) advance() {
	for i := 0; i < v.stepsPerTick; i++ {
		if v.maxSteps > 0 && v.steps >= v.maxSteps {
			v.running = false
			return
		}
		var act []float64
		if v.policy != nil {
			act = v.policy.Act(v.st, v.t)
		}
		next, err := positional.Step(v.sys, v.st, act)
		if err != nil {
			v.err = err
			v.running = false
			return
		}
		v.st = next
		v.t += v.sys.Opts.Timestep
		v.steps++
	}

	v.energyHist = append(v.energyHist, metrics.Total(v.sys, v.st))
	if len(v.energyHist) > historyCap {
		v.energyHist = v.energyHist[1:]
	}

	if n := len(v.st.XI); n > 0 {
		v.trail = append(v.trail, v.st.XI[n-1].Pos)
		if len(v.trail) > trailCap {
			v.trail = v.trail[1:]
		}
	}
}

func (v *Viewer) draw() {
	SceneFrame(v.sys, v.st, v.wire)
	v.canvas.Clear()
	v.cam.Render(v.canvas, v.wire)

	pw, ph := v.canvas.Width*2, v.canvas.Height*4
	for _, p := range v.trail {
		if x, y, ok := v.cam.Project(p, pw, ph); ok {
			v.canvas.Set(x, y)
		}
	}
}

func (v *Viewer) status() string {
	switch {
	case v.err != nil:
		return errStyle.Render(fmt.Sprintf("DIVERGED: %v", v.err))
	case v.maxSteps > 0 && v.steps >= v.maxSteps:
		return "DONE"
	case !v.running:
		return "PAUSED"
	default:
		return "RUNNING"
	}
}

func (v *Viewer) View() string {
	v.draw()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(v.name)) + "\n")
	s.WriteString(v.status() + "\n")

	if len(v.energyHist) > 1 {
		chart := asciigraph.Plot(v.energyHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", v.t)) + "\n")
	energy := 0.0
	if len(v.energyHist) > 0 {
		energy = v.energyHist[len(v.energyHist)-1]
	}
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.3f", energy)) + "\n")
	s.WriteString(labelStyle.Render("Links") + valueStyle.Render(fmt.Sprintf("%d", v.sys.NumLinks())) + "\n")
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d", v.steps)) + "\n")
	if v.maxSteps > 0 {
		s.WriteString("\n" + v.prog.ViewAs(float64(v.steps)/float64(v.maxSteps)) + "\n")
	}

	s.WriteString(helpStyle.Render("\nSP:Pause R:Reset Q:Quit ?:Help\n←→↑↓:Orbit +/-:Zoom"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(v.canvas.String()), statsStyle.Render(s.String()))
	if v.showHelp {
		return helpOverlay + "\n" + main
	}
	return main
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space       - Pause/Resume          ║
║  R           - Reset to start        ║
║  Q           - Quit                  ║
║  Left/Right  - Orbit around scene    ║
║  Up/Down     - Tilt view             ║
║  +/-         - Zoom                  ║
║  ?           - Toggle this help      ║
╚══════════════════════════════════════╝`
