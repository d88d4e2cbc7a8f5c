package cli

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/sim"
)

const (
	defaultCanvasCols = 80
	defaultCanvasRows = 24
	previewChrome     = 5 // header, status and help lines around the canvas
)

// Canvas glyphs.
const (
	glyphRoot     = '@'
	glyphMulti    = '%'
	glyphNode     = 'o'
	glyphEdge     = '.'
	glyphCircular = ':'
)

var (
	previewRootStyle  = lipgloss.NewStyle().Foreground(colorOrange).Bold(true)
	previewMultiStyle = lipgloss.NewStyle().Foreground(colorRed)
	previewNodeStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	previewEdgeStyle  = lipgloss.NewStyle().Foreground(colorDim)
	previewCanvas     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

type previewKeyMap struct {
	Pause   key.Binding
	Step    key.Binding
	Restart key.Binding
	Nodes   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var previewKeys = previewKeyMap{
	Pause: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space", "pause"),
	),
	Step: key.NewBinding(
		key.WithKeys("n", "right"),
		key.WithHelp("n", "step"),
	),
	Restart: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reseed"),
	),
	Nodes: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "nodes"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k previewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Restart, k.Nodes, k.Quit}
}

func (k previewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Step, k.Restart},
		{k.Nodes, k.Help, k.Quit},
	}
}

type previewTickMsg time.Time

func previewTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return previewTickMsg(t) })
}

// previewModel runs one simulation in the terminal.
type previewModel struct {
	data     graph.GraphData
	index    map[string]int
	viewport graph.Viewport
	simOpts  []sim.Option
	seed     uint64
	interval time.Duration

	run    *sim.Simulation
	frame  sim.Frame
	paused bool

	keys      previewKeyMap
	help      help.Model
	nodes     table.Model
	showNodes bool
	cols      int
	rows      int
}

func newPreviewModel(data graph.GraphData, vp graph.Viewport, seed uint64, interval time.Duration, opts ...sim.Option) (previewModel, error) {
	m := previewModel{
		data:     data,
		index:    make(map[string]int, len(data.Nodes)),
		viewport: vp,
		simOpts:  opts,
		seed:     seed,
		interval: interval,
		keys:     previewKeys,
		help:     help.New(),
		cols:     defaultCanvasCols,
		rows:     defaultCanvasRows,
	}
	for i, n := range data.Nodes {
		m.index[n.ID] = i
	}
	m.nodes = table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 28},
			{Title: "Version", Width: 12},
			{Title: "Depth", Width: 6},
			{Title: "X", Width: 8},
			{Title: "Y", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(defaultCanvasRows),
	)
	if err := m.restart(); err != nil {
		return previewModel{}, err
	}
	return m, nil
}

// restart begins a new run with the current seed.
func (m *previewModel) restart() error {
	run, err := sim.New(m.data, m.viewport, append(slices.Clip(m.simOpts), sim.WithSeed(m.seed))...)
	if err != nil {
		return err
	}
	m.run = run
	m.frame = run.Frame()
	m.refreshNodes()
	return nil
}

func (m *previewModel) refreshNodes() {
	rows := make([]table.Row, 0, len(m.data.Nodes))
	for i, n := range m.data.Nodes {
		if i >= len(m.frame.Positions) {
			break
		}
		p := m.frame.Positions[i]
		rows = append(rows, table.Row{n.Name, n.Version, fmt.Sprint(n.Depth), fmt.Sprintf("%.1f", p.X), fmt.Sprintf("%.1f", p.Y)})
	}
	m.nodes.SetRows(rows)
}

func (m previewModel) Init() tea.Cmd {
	return previewTick(m.interval)
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case previewTickMsg:
		if !m.paused && m.frame.State != sim.Settled {
			m.frame = m.run.Tick()
			m.refreshNodes()
		}
		return m, previewTick(m.interval)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Step):
			m.frame = m.run.Tick()
			m.refreshNodes()
		case key.Matches(msg, m.keys.Restart):
			m.seed++
			if err := m.restart(); err != nil {
				m.seed--
			}
		case key.Matches(msg, m.keys.Nodes):
			m.showNodes = !m.showNodes
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		default:
			if m.showNodes {
				var cmd tea.Cmd
				m.nodes, cmd = m.nodes.Update(msg)
				return m, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.cols = max(msg.Width-2, 10)
		m.rows = max(msg.Height-previewChrome-2, 5)
		m.help.Width = msg.Width
		m.nodes.SetHeight(m.rows)
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("depforce preview"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.status()))
	b.WriteString("\n")
	if m.showNodes {
		b.WriteString(m.nodes.View())
	} else {
		b.WriteString(previewCanvas.Render(strings.Join(m.canvas(), "\n")))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m previewModel) status() string {
	state := m.frame.State.String()
	if m.paused {
		state = "paused"
	}
	return fmt.Sprintf("%d nodes · tick %d · alpha %.4f · %s · seed %d",
		len(m.data.Nodes), m.frame.Tick, m.frame.Alpha, state, m.seed)
}

// canvas renders the current frame with styled glyphs.
func (m previewModel) canvas() []string {
	grid := plotFrame(m.data, m.index, m.frame.Positions, m.viewport, m.cols, m.rows)
	lines := make([]string, len(grid))
	for i, row := range grid {
		var b strings.Builder
		for _, r := range row {
			switch r {
			case glyphRoot:
				b.WriteString(previewRootStyle.Render(string(r)))
			case glyphMulti:
				b.WriteString(previewMultiStyle.Render(string(r)))
			case glyphNode:
				b.WriteString(previewNodeStyle.Render(string(r)))
			case glyphEdge, glyphCircular:
				b.WriteString(previewEdgeStyle.Render(string(r)))
			default:
				b.WriteRune(r)
			}
		}
		lines[i] = b.String()
	}
	return lines
}

// plotFrame rasterizes positions onto a cols×rows grid. Edges are drawn
// first so nodes stay visible; the root is drawn last.
func plotFrame(data graph.GraphData, index map[string]int, pos []graph.Point, vp graph.Viewport, cols, rows int) [][]rune {
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}
	cell := func(p graph.Point) (int, int) {
		c := int(math.Round(p.X / vp.Width * float64(cols-1)))
		r := int(math.Round(p.Y / vp.Height * float64(rows-1)))
		return min(max(c, 0), cols-1), min(max(r, 0), rows-1)
	}

	for _, e := range data.Edges {
		si, sok := index[e.SourceID]
		ti, tok := index[e.TargetID]
		if !sok || !tok || si >= len(pos) || ti >= len(pos) {
			continue
		}
		glyph := glyphEdge
		if e.IsCircular {
			glyph = glyphCircular
		}
		c0, r0 := cell(pos[si])
		c1, r1 := cell(pos[ti])
		steps := max(abs(c1-c0), abs(r1-r0))
		for s := 1; s < steps; s++ {
			t := float64(s) / float64(steps)
			c := c0 + int(math.Round(t*float64(c1-c0)))
			r := r0 + int(math.Round(t*float64(r1-r0)))
			grid[r][c] = glyph
		}
	}

	for i := len(data.Nodes) - 1; i >= 0 && i < len(pos); i-- {
		c, r := cell(pos[i])
		switch {
		case i == 0:
			grid[r][c] = glyphRoot
		case data.Nodes[i].IsMultipleVersions:
			grid[r][c] = glyphMulti
		default:
			grid[r][c] = glyphNode
		}
	}
	return grid
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// previewCommand creates the preview command for the terminal view.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		lf       layoutFlags
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "preview [source]",
		Short: "Watch the simulation settle in the terminal",
		Long: `Watch the simulation settle in the terminal.

The root is drawn as @, packages with several versions as %, circular
dependencies as dotted colons. Press r to reseed and tab for a node table.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.pipelineOptions(sourceArg(args))
			lf.apply(cmd, &opts)
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, lf.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			data, err := c.fetchWithSpinner(ctx, runner, opts)
			if err != nil {
				return err
			}

			simOpts := opts.SimOptions()
			model, err := newPreviewModel(data, opts.Viewport(), opts.Seed, interval, simOpts...)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}

	lf.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", sim.DefaultFrameInterval, "time between ticks")

	return cmd
}
