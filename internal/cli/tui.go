package cli

import (
	"errors"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/wiregraph/pkg/editor"
	"github.com/matzehuels/wiregraph/pkg/geom"
	wio "github.com/matzehuels/wiregraph/pkg/io"
	"github.com/matzehuels/wiregraph/pkg/nets"
	"github.com/matzehuels/wiregraph/pkg/pins"
	"github.com/matzehuels/wiregraph/pkg/route"
	"github.com/matzehuels/wiregraph/pkg/topo"
	"github.com/matzehuels/wiregraph/pkg/topo/cleanup"
)

// Canvas styles
var (
	canvasCursorStyle  = lipgloss.NewStyle().Reverse(true)
	canvasPreviewStyle = lipgloss.NewStyle().Foreground(colorDim)
	canvasPinStyle     = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	canvasStatusStyle  = lipgloss.NewStyle().Foreground(colorGray)
	canvasHelpStyle    = lipgloss.NewStyle().Foreground(colorDim)

	// netColors cycles through the palette by net index; ground is yellow.
	netColors = []lipgloss.Color{colorCyan, colorGreen, colorBlue, colorRed, lipgloss.Color("141"), lipgloss.Color("209")}
)

// Wire directions leaving a canvas cell.
const (
	dirLeft uint8 = 1 << iota
	dirRight
	dirUp
	dirDown
)

var boxGlyphs = map[uint8]rune{
	dirLeft:                              '─',
	dirRight:                             '─',
	dirLeft | dirRight:                   '─',
	dirUp:                                '│',
	dirDown:                              '│',
	dirUp | dirDown:                      '│',
	dirRight | dirDown:                   '┌',
	dirLeft | dirDown:                    '┐',
	dirRight | dirUp:                     '└',
	dirLeft | dirUp:                      '┘',
	dirLeft | dirRight | dirDown:         '┬',
	dirLeft | dirRight | dirUp:           '┴',
	dirUp | dirDown | dirRight:           '├',
	dirUp | dirDown | dirLeft:            '┤',
	dirLeft | dirRight | dirUp | dirDown: '┼',
}

type cell struct{ x, y int }

// DrawModel is the bubbletea model of the interactive wire editor. The
// canvas is a character grid where one cell is one grid unit; the cursor
// plays the role of the pointer.
type DrawModel struct {
	ed       *editor.Editor
	unit     float64
	path     string
	cursor   cell
	offset   cell
	width    int
	height   int
	msg      string
	version  uint64 // store version last written to disk
	quitting bool
}

// NewDrawModel creates an editor model saving to path. An empty path
// disables saving.
func NewDrawModel(ed *editor.Editor, path string) DrawModel {
	unit := ed.Engine().Config().Grid
	if unit <= 0 {
		unit = route.DefaultConfig().Grid
	}
	return DrawModel{
		ed:      ed,
		unit:    unit,
		path:    path,
		width:   60,
		height:  20,
		version: ed.Store().Version(),
	}
}

// Editor returns the session the model edits.
func (m DrawModel) Editor() *editor.Editor { return m.ed }

// Saved reports whether the topology is unchanged since it was loaded or
// last saved.
func (m DrawModel) Saved() bool { return m.ed.Store().Version() == m.version }

func (m DrawModel) Init() tea.Cmd {
	return nil
}

func (m DrawModel) world(c cell) geom.Point {
	return geom.Pt(float64(c.x)*m.unit, float64(c.y)*m.unit)
}

func (m DrawModel) cellOf(p geom.Point) cell {
	return cell{int(math.Round(p.X / m.unit)), int(math.Round(p.Y / m.unit))}
}

func (m DrawModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 10)
		m.height = max(msg.Height-3, 5)
		m.follow()
	case tea.KeyMsg:
		return m.key(msg)
	}
	return m, nil
}

func (m DrawModel) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	eng := m.ed.Engine()
	m.msg = ""

	switch msg.String() {
	case "ctrl+c", "q":
		eng.Cancel()
		m.quitting = true
		return m, tea.Quit
	case "left", "h":
		m.move(-1, 0)
	case "right", "l":
		m.move(1, 0)
	case "up", "k":
		m.move(0, -1)
	case "down", "j":
		m.move(0, 1)
	case "w":
		m.setTool(route.ToolWire)
	case "v":
		m.setTool(route.ToolSelect)
	case "enter", " ":
		p := m.world(m.cursor)
		var err error
		if eng.State() == route.Dragging {
			err = eng.PointerUp(p)
		} else {
			err = eng.PointerDown(p)
		}
		m.report(err)
	case "f":
		m.report(eng.DoubleClick())
	case "esc":
		eng.Cancel()
	case "x":
		m.remove()
	case "c":
		m.cleanup()
	case "ctrl+s":
		m.save()
	}
	return m, nil
}

func (m *DrawModel) move(dx, dy int) {
	m.cursor.x += dx
	m.cursor.y += dy
	m.follow()
	m.report(m.ed.Engine().PointerMove(m.world(m.cursor)))
}

// follow scrolls the viewport so the cursor stays visible.
func (m *DrawModel) follow() {
	switch {
	case m.cursor.x < m.offset.x:
		m.offset.x = m.cursor.x
	case m.cursor.x >= m.offset.x+m.width:
		m.offset.x = m.cursor.x - m.width + 1
	}
	switch {
	case m.cursor.y < m.offset.y:
		m.offset.y = m.cursor.y
	case m.cursor.y >= m.offset.y+m.height:
		m.offset.y = m.cursor.y - m.height + 1
	}
}

func (m *DrawModel) setTool(t route.Tool) {
	eng := m.ed.Engine()
	if !eng.Idle() {
		m.msg = "finish the current gesture first"
		return
	}
	eng.SetTool(t)
}

func (m *DrawModel) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, route.ErrNoTarget):
		m.msg = "nothing to drag here"
	default:
		m.msg = err.Error()
	}
}

// remove deletes the wire node or segment under the cursor. Pin nodes
// stay; they belong to their component.
func (m *DrawModel) remove() {
	eng := m.ed.Engine()
	if !eng.Idle() {
		m.msg = "finish the current gesture first"
		return
	}
	s := m.ed.Store()
	cfg := eng.Config()
	p := m.world(m.cursor)
	if id, ok := s.HitTestNodeFunc(p, cfg.NodeRadius, func(n topo.Node) bool { return !n.IsPin() }); ok {
		s.RemoveNode(id)
	} else if seg, ok := s.HitTestSegment(p, cfg.SegmentRadius); ok {
		s.RemoveSegment(seg.A, seg.B)
	} else {
		m.msg = "nothing to delete here"
		return
	}
	cleanup.Run(s)
}

func (m *DrawModel) cleanup() {
	st := cleanup.Run(m.ed.Store())
	m.msg = fmt.Sprintf("%d merged, %d dropped, %d collapsed", st.Merged, st.Dropped, st.Collapsed)
}

func (m *DrawModel) save() {
	if m.path == "" {
		m.msg = "no file to save to"
		return
	}
	var comps []pins.Component
	if sp, ok := m.ed.Provider().(*pins.StaticProvider); ok {
		comps = sp.Components()
	}
	if err := wio.ExportJSON(wio.Document{Store: m.ed.Store(), Components: comps}, m.path); err != nil {
		m.msg = err.Error()
		return
	}
	m.version = m.ed.Store().Version()
	m.msg = "saved " + m.path
}

// canvas is the rasterised viewport.
type canvas struct {
	dirs   map[cell]uint8
	color  map[cell]lipgloss.Color
	glyphs map[cell]rune
	styles map[cell]lipgloss.Style
}

func (m DrawModel) raster(res *nets.Result) canvas {
	cv := canvas{
		dirs:   map[cell]uint8{},
		color:  map[cell]lipgloss.Color{},
		glyphs: map[cell]rune{},
		styles: map[cell]lipgloss.Style{},
	}
	netColor := map[string]lipgloss.Color{}
	for i, name := range res.NetNames {
		if name == nets.GroundNet {
			netColor[name] = colorYellow
			continue
		}
		netColor[name] = netColors[i%len(netColors)]
	}

	s := m.ed.Store()
	for _, seg := range s.Segments() {
		a, b := s.Endpoints(seg)
		ca, cb := m.cellOf(a), m.cellOf(b)
		col := netColor[res.NetOfSegment[seg]]
		switch {
		case ca.y == cb.y && ca.x != cb.x:
			x0, x1 := min(ca.x, cb.x), max(ca.x, cb.x)
			for x := x0; x <= x1; x++ {
				c := cell{x, ca.y}
				if x > x0 {
					cv.dirs[c] |= dirLeft
				}
				if x < x1 {
					cv.dirs[c] |= dirRight
				}
				cv.color[c] = col
			}
		case ca.x == cb.x && ca.y != cb.y:
			y0, y1 := min(ca.y, cb.y), max(ca.y, cb.y)
			for y := y0; y <= y1; y++ {
				c := cell{ca.x, y}
				if y > y0 {
					cv.dirs[c] |= dirUp
				}
				if y < y1 {
					cv.dirs[c] |= dirDown
				}
				cv.color[c] = col
			}
		default:
			for _, c := range []cell{ca, cb} {
				cv.glyphs[c] = '╳'
				cv.styles[c] = lipgloss.NewStyle().Foreground(col)
			}
		}
	}

	for _, j := range res.Junctions {
		c := m.cellOf(j.Pos)
		cv.glyphs[c] = '●'
		cv.styles[c] = lipgloss.NewStyle().Foreground(netColor[j.Net])
	}
	for _, n := range s.Nodes() {
		if !n.IsPin() && s.Degree(n.ID) == 0 {
			c := m.cellOf(n.Pos)
			cv.glyphs[c] = '○'
			cv.styles[c] = canvasPreviewStyle
		}
	}
	for _, p := range m.ed.Pins() {
		c := m.cellOf(p.Pos)
		cv.glyphs[c] = '◆'
		cv.styles[c] = canvasPinStyle
	}

	if pts := m.ed.Engine().Preview(m.world(m.cursor)); len(pts) > 1 {
		for i := 1; i < len(pts); i++ {
			a, b := m.cellOf(pts[i-1]), m.cellOf(pts[i])
			for _, c := range cellsBetween(a, b) {
				if _, taken := cv.glyphs[c]; taken || cv.dirs[c] != 0 {
					continue
				}
				cv.glyphs[c] = '·'
				cv.styles[c] = canvasPreviewStyle
			}
		}
	}
	return cv
}

// cellsBetween lists the cells of an axis-aligned run, both ends included.
func cellsBetween(a, b cell) []cell {
	var out []cell
	dx, dy := sign(b.x-a.x), sign(b.y-a.y)
	for c := a; ; c = (cell{c.x + dx, c.y + dy}) {
		out = append(out, c)
		if c == b || (dx == 0 && dy == 0) {
			return out
		}
		if dx != 0 && dy != 0 {
			return append(out, b)
		}
	}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func (m DrawModel) View() string {
	if m.quitting {
		return ""
	}
	res := m.ed.Nets()
	cv := m.raster(res)

	var b strings.Builder
	for row := range m.height {
		for col := range m.width {
			c := cell{m.offset.x + col, m.offset.y + row}
			ch, style := ' ', lipgloss.NewStyle()
			if g, ok := cv.glyphs[c]; ok {
				ch, style = g, cv.styles[c]
			} else if d := cv.dirs[c]; d != 0 {
				ch, style = boxGlyphs[d], lipgloss.NewStyle().Foreground(cv.color[c])
			}
			if c == m.cursor {
				style = canvasCursorStyle
				if ch == ' ' {
					ch = '+'
				}
			}
			b.WriteString(style.Render(string(ch)))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.status(res))
	b.WriteString("\n")
	b.WriteString(canvasHelpStyle.Render("arrows move  ⏎ place/drag  f finish  esc cancel  w wire  v select  x delete  c cleanup  ^s save  q quit"))
	return b.String()
}

func (m DrawModel) status(res *nets.Result) string {
	eng := m.ed.Engine()
	tool := "wire"
	if eng.Tool() == route.ToolSelect {
		tool = "select"
	}
	parts := []string{
		StyleHighlight.Render(tool),
		eng.State().String(),
		m.world(m.cursor).String(),
		fmt.Sprintf("%d nets", len(res.Nets)),
	}
	if under := m.under(res); under != "" {
		parts = append(parts, StyleValue.Render(under))
	}
	if !m.Saved() {
		parts = append(parts, StyleWarning.Render("modified"))
	}
	if m.msg != "" {
		parts = append(parts, m.msg)
	}
	return canvasStatusStyle.Render(strings.Join(parts, "  "))
}

// under describes what lies under the cursor.
func (m DrawModel) under(res *nets.Result) string {
	s := m.ed.Store()
	cfg := m.ed.Engine().Config()
	p := m.world(m.cursor)
	if id, ok := s.HitTestNode(p, cfg.PinRadius); ok {
		n, _ := s.Node(id)
		if n.IsPin() {
			if name, ok := res.NetOfPin[n.Pin]; ok {
				return n.Pin.String() + " → " + name
			}
			return n.Pin.String() + " (nc)"
		}
	}
	if seg, ok := s.HitTestSegment(p, cfg.SegmentRadius); ok {
		return "net " + res.NetOfSegment[seg]
	}
	return ""
}
