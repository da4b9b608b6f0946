package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/wordwrap"

	"chainwatch-sim/internal/config"
	"chainwatch-sim/internal/store"
	"chainwatch-sim/internal/view"
)

// stateMsg carries a new store state.
type stateMsg struct{ state store.State }

// adminMsg reports where the browser view listens.
type adminMsg struct{ addr string }

// clearer is the optional half of a selector that can drop the selection.
type clearer interface {
	ClearSelection()
}

const defaultTableHeight = 10

type model struct {
	cfg       *config.Config
	sel       view.Selector
	state     store.State
	tree      view.Element
	keys      keyMap
	help      help.Model
	table     viewport.Model
	cursor    int
	width     int
	height    int
	gridTop   int
	adminAddr string
}

func newModel(cfg *config.Config, sel view.Selector) model {
	m := model{
		cfg:   cfg,
		sel:   sel,
		keys:  defaultKeys(),
		help:  help.New(),
		table: viewport.New(0, defaultTableHeight),
	}
	m.tree = view.Render(m.state, cfg)
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		if msg.state.Version < m.state.Version {
			return m, nil
		}
		m.state = msg.state
		m.tree = view.Render(m.state, m.cfg)
		m.refresh()
	case adminMsg:
		m.adminAddr = msg.addr
		m.refresh()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.refresh()
	case tea.MouseMsg:
		switch {
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			if idx, ok := m.cellAt(msg.X, msg.Y); ok {
				m.cursor = idx
				return m, m.selectCmd(idx)
			}
		case msg.Button == tea.MouseButtonWheelUp:
			m.table.LineUp(1)
		case msg.Button == tea.MouseButtonWheelDown:
			m.table.LineDown(1)
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.columns()
	size := len(m.cells())
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.refresh()
	case key.Matches(msg, m.keys.Up):
		if m.cursor-cols >= 0 {
			m.cursor -= cols
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor+cols < size {
			m.cursor += cols
		}
	case key.Matches(msg, m.keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.cursor < size-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		return m, m.selectCmd(m.cursor)
	case key.Matches(msg, m.keys.Clear):
		if c, ok := m.sel.(clearer); ok {
			return m, func() tea.Msg {
				c.ClearSelection()
				return nil
			}
		}
	case key.Matches(msg, m.keys.ScrollUp):
		m.table.LineUp(1)
	case key.Matches(msg, m.keys.ScrollDown):
		m.table.LineDown(1)
	}
	return m, nil
}

// selectCmd selects off the event loop: the store notifies subscribers
// synchronously and one of them sends back into this program.
func (m model) selectCmd(idx int) tea.Cmd {
	cells := m.cells()
	if idx < 0 || idx >= len(cells) || m.sel == nil {
		return nil
	}
	cell := cells[idx]
	sel := m.sel
	return func() tea.Msg {
		view.Click(sel, cell)
		return nil
	}
}

func (m model) cells() []view.Element {
	g, _ := m.tree.Find(view.KindGrid)
	return g.Children
}

func (m model) columns() int {
	g, _ := m.tree.Find(view.KindGrid)
	if g.Columns <= 0 {
		return 1
	}
	return g.Columns
}

// cellAt maps a terminal position to a grid cell index.
func (m model) cellAt(x, y int) (int, bool) {
	if x < 0 || y < m.gridTop {
		return 0, false
	}
	cols := m.columns()
	row := (y - m.gridTop) / cellHeight
	col := x / cellWidth
	if col >= cols {
		return 0, false
	}
	idx := row*cols + col
	cells := m.cells()
	if idx >= len(cells) || cells[idx].NodeID == view.NoNode {
		return 0, false
	}
	return idx, true
}

// refresh recomputes the grid origin and the table viewport after a change.
func (m *model) refresh() {
	m.gridTop = lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderTiles(view.KindTiles)) + 1

	m.table.Width = m.width
	m.table.SetContent(m.renderTable())
	if m.height > 0 {
		others := lipgloss.Height(m.renderAbove()) + lipgloss.Height(m.renderFooter()) + 1
		h := m.height - others
		if h < 3 {
			h = 3
		}
		m.table.Height = h
	}
}

func (m model) View() string {
	tableTitle := sectionStyle.Render(m.cfg.Layout.TableTitle)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderAbove(),
		tableTitle,
		m.table.View(),
		m.renderFooter(),
	)
}

// renderAbove draws everything above the node table.
func (m model) renderAbove() string {
	parts := []string{
		m.renderHeader(),
		m.renderTiles(view.KindTiles),
		sectionStyle.Render(m.cfg.Layout.GridTitle),
		m.renderGrid(),
	}
	if sel, ok := m.tree.Find(view.KindSelection); ok {
		parts = append(parts, m.renderSelection(sel))
	}
	if stats := m.renderTiles(view.KindStats); stats != "" {
		parts = append(parts, stats)
	}
	parts = append(parts, m.renderFeed())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m model) renderHeader() string {
	status := fmt.Sprintf("tick %d", m.state.Metrics.Tick)
	if m.adminAddr != "" {
		status += " │ web " + m.adminAddr
	}
	return titleStyle.Render(m.tree.Title) + "  " + faintStyle.Render(status)
}

func (m model) renderTiles(kind view.Kind) string {
	el, ok := m.tree.Find(kind)
	if !ok || len(el.Children) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(el.Children))
	for _, t := range el.Children {
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor(t.Accent)).
			Padding(0, 1).
			Width(tileWidth - 2)
		boxes = append(boxes, style.Render(faintStyle.Render(t.Caption)+"\n"+valueStyle.Render(t.Text)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (m model) renderGrid() string {
	cells := m.cells()
	cols := m.columns()
	var rows []string
	for start := 0; start < len(cells); start += cols {
		end := start + cols
		if end > len(cells) {
			end = len(cells)
		}
		line := make([]string, 0, cols)
		for i := start; i < end; i++ {
			line = append(line, m.renderCell(i, cells[i]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, line...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m model) renderCell(i int, c view.Element) string {
	border := lipgloss.NormalBorder()
	borderColor := lipgloss.Color("8")
	if c.Selected {
		border = lipgloss.ThickBorder()
		borderColor = lipgloss.Color("15")
	} else if i == m.cursor {
		border = lipgloss.DoubleBorder()
	}
	text := c.Text
	if c.NodeID == view.NoNode {
		text = "·"
	}
	if len(text) > cellWidth-2 {
		text = text[:cellWidth-2]
	}
	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(borderColor).
		Foreground(toneColor(c.Tone)).
		Width(cellWidth - 2).
		Height(cellHeight - 2).
		Align(lipgloss.Center).
		Render(text)
}

func (m model) renderSelection(sel view.Element) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(toneColor(sel.Tone)).Render(sel.Title)
	return title + "  " + sel.Text + "  " + faintStyle.Render(sel.Caption)
}

func (m model) renderFeed() string {
	feed, _ := m.tree.Find(view.KindFeed)
	width := m.width - 4
	if width <= 0 {
		width = 72
	}
	lines := []string{sectionStyle.Render(feed.Title)}
	for _, it := range feed.Children {
		style := lipgloss.NewStyle().Foreground(toneColor(it.Tone))
		var line string
		switch it.Kind {
		case view.KindPlaceholder:
			line = faintStyle.Render(it.Text)
		default:
			head := style.Render(strings.ToUpper(it.Title))
			line = wordwrap.String(fmt.Sprintf("%s %s %s", head, it.Text, faintStyle.Render(it.Caption)), width)
		}
		lines = append(lines, line)
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m model) renderTable() string {
	el, _ := m.tree.Find(view.KindTable)
	var headers []string
	var rows [][]string
	var tones [][]view.Tone
	for _, r := range el.Children {
		switch r.Kind {
		case view.KindHeader:
			for _, c := range r.Children {
				headers = append(headers, c.Text)
			}
		case view.KindRow:
			row := make([]string, len(r.Children))
			tone := make([]view.Tone, len(r.Children))
			for i, c := range r.Children {
				row[i] = c.Text
				tone[i] = c.Tone
			}
			rows = append(rows, row)
			tones = append(tones, tone)
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(faintStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			if row < len(tones) && col < len(tones[row]) && tones[row][col] != view.ToneDefault {
				return s.Foreground(toneColor(tones[row][col]))
			}
			return s
		})
	return t.String()
}

func (m model) renderFooter() string {
	return m.help.View(m.keys)
}
