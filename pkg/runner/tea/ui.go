package teaui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/campus/pkg/app"
	"tableflip.dev/campus/pkg/listview"
	"tableflip.dev/campus/pkg/printers"
	"tableflip.dev/campus/pkg/record"
	"tableflip.dev/campus/pkg/source"
	"tableflip.dev/campus/pkg/timewindow"
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeConfirmDelete
	modeHelp
)

// pageSizes are cycled by the z key.
var pageSizes = []int{10, 20, 50, 100}

// messages
type fetchedMsg struct{ err error }
type deletedMsg struct {
	id  string
	err error
}
type changedMsg struct{ ev source.Event }
type errMsg struct{ err error }

// Model is the interactive list page.
type Model struct {
	svc  *app.Service
	ctx  context.Context
	view *app.View

	mode        mode
	input       textinput.Model
	status      string
	cursor      int
	filterIndex int
	events      <-chan source.Event

	termWidth  int
	termHeight int
}

// New creates a model showing view.
func New(svc *app.Service, view *app.View) Model {
	ti := textinput.New()
	ti.Placeholder = "search"
	ti.CharLimit = 128
	ti.Prompt = ""
	ti.Styles.Cursor.Color = lipgloss.Color("218")

	return Model{
		svc:    svc,
		ctx:    context.Background(),
		view:   view,
		mode:   modeNormal,
		input:  ti,
		status: "/ search, f filter, t time, s sort, n/p page, v view, ? help",
	}
}

// Init fetches the page and starts listening for backend changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.waitForChange())
}

func (m Model) controller() *listview.Controller {
	return m.view.Controller
}

func (m Model) fetch() tea.Cmd {
	c, ctx := m.controller(), m.ctx
	return func() tea.Msg {
		return fetchedMsg{err: c.Fetch(ctx)}
	}
}

func (m Model) waitForChange() tea.Cmd {
	ch := m.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return changedMsg{ev: ev}
	}
}

// refetchIfStale loads a server-paged collection again after the page moved.
func (m Model) refetchIfStale() tea.Cmd {
	snap := m.controller().Snapshot()
	if snap.Stale && !snap.Loading {
		return m.fetch()
	}
	return nil
}

func (m Model) rows() []record.Record {
	return m.controller().Snapshot().Projection.Rows
}

func (m *Model) clampCursor() {
	n := len(m.rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (record.Record, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return nil, false
	}
	return rows[m.cursor], true
}

// Update handles messages and keybindings.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.controller().Resize(msg.Width)
	case errMsg:
		m.status = "ERR: " + msg.err.Error()
	case fetchedMsg:
		switch {
		case errors.Is(msg.err, listview.ErrFetchInFlight), errors.Is(msg.err, listview.ErrClosed):
		case msg.err != nil:
			m.status = "Fetch failed, r to retry"
		default:
			if m.controller().ClampPage() {
				m.status = "Page moved back into range"
			}
		}
		m.clampCursor()
		cmds = append(cmds, m.refetchIfStale())
	case deletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("ERR: delete %s: %v", msg.id, msg.err)
		} else {
			m.status = "Deleted " + msg.id
		}
		if m.controller().ClampPage() {
			cmds = append(cmds, m.refetchIfStale())
		}
		m.clampCursor()
	case changedMsg:
		if msg.ev.Endpoint == "" || msg.ev.Endpoint == m.view.Page.Endpoint {
			m.status = "Collection changed, reloading"
			cmds = append(cmds, m.fetch())
		}
		cmds = append(cmds, m.waitForChange())
	case tea.KeyPressMsg:
		switch m.mode {
		case modeHelp:
			m.mode = modeNormal
		case modeConfirmDelete:
			m.mode = modeNormal
			if msg.String() != "y" {
				m.status = "Delete cancelled"
				break
			}
			if r, ok := m.selected(); ok {
				cmds = append(cmds, m.deleteRecord(r.ID()))
			}
		case modeSearch:
			switch msg.String() {
			case "enter":
				m.controller().SetSearch(strings.TrimSpace(m.input.Value()))
				m.mode = modeNormal
				m.input.Blur()
				m.cursor = 0
				m.status = "Search applied"
			case "esc":
				m.mode = modeNormal
				m.input.Blur()
				m.status = "Search cancelled"
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				cmds = append(cmds, cmd)
			}
		case modeNormal:
			cmds = append(cmds, m.handleKey(msg.String()))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(key string) tea.Cmd {
	c := m.controller()
	state := c.Snapshot().State
	cfg := c.Config()

	switch key {
	case "q", "ctrl+c":
		c.Close()
		return tea.Quit
	case "?":
		m.mode = modeHelp
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "/":
		m.mode = modeSearch
		m.input.SetValue(state.Search)
		m.input.CursorEnd()
		return m.input.Focus()
	case "f":
		if len(cfg.Filters) == 0 {
			m.status = "This page has no filters"
			return nil
		}
		d := cfg.Filters[m.filterIndex%len(cfg.Filters)]
		next := nextValue(append([]string{""}, c.FilterOptions(d.Field)...), state.Filter(d.Field))
		c.SetFilter(d.Field, next)
		m.status = fmt.Sprintf("%s: %s", d.Label, orAll(next))
		m.cursor = 0
	case "F":
		if len(cfg.Filters) == 0 {
			m.status = "This page has no filters"
			return nil
		}
		m.filterIndex = (m.filterIndex + 1) % len(cfg.Filters)
		m.status = "Filtering by " + cfg.Filters[m.filterIndex].Label
	case "c":
		c.ClearFilters()
		m.cursor = 0
		m.status = "Filters cleared"
	case "t":
		w := state.TimeWindow.Next()
		c.SetTimeWindow(w)
		m.cursor = 0
		m.status = "Time: " + w.Label()
	case "s":
		names := make([]string, 0, len(cfg.SortFields))
		for _, f := range cfg.SortFields {
			names = append(names, f.Name)
		}
		next := nextValue(names, state.SortBy)
		c.SetSort(next, state.SortOrder)
		m.status = "Sorted by " + next
	case "o":
		c.ToggleSortOrder()
	case "n", "l", "right":
		c.NextPage()
		m.cursor = 0
	case "p", "h", "left":
		c.PrevPage()
		m.cursor = 0
	case "z":
		size := pageSizes[0]
		for i, s := range pageSizes {
			if s == state.PageSize {
				size = pageSizes[(i+1)%len(pageSizes)]
			}
		}
		c.SetPageSize(size)
		m.cursor = 0
		m.status = fmt.Sprintf("%d per page", size)
	case "v":
		c.ToggleViewMode()
	case "r":
		m.status = "Reloading"
		return m.fetch()
	case "tab", "shift+tab":
		return m.switchPage(key == "tab")
	case "d":
		if m.view.Page.ReadOnly {
			m.status = m.view.Page.Title + " is read-only"
			return nil
		}
		if r, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
			m.status = fmt.Sprintf("Delete %s? y/n", r.ID())
		}
	}
	return m.refetchIfStale()
}

func (m *Model) deleteRecord(id string) tea.Cmd {
	svc, ctx, v := m.svc, m.ctx, m.view
	return func() tea.Msg {
		return deletedMsg{id: id, err: svc.Delete(ctx, v, id)}
	}
}

// switchPage closes the current view and opens its neighbour, restoring the
// neighbour's remembered query.
func (m *Model) switchPage(forward bool) tea.Cmd {
	all := m.svc.AllPages()
	if len(all) < 2 {
		return nil
	}
	idx := 0
	for i, p := range all {
		if p.Name == m.view.Page.Name {
			idx = i
		}
	}
	if forward {
		idx = (idx + 1) % len(all)
	} else {
		idx = (idx + len(all) - 1) % len(all)
	}
	v, err := m.svc.Open(all[idx].Name, app.OpenOptions{Viewport: listview.FixedViewport(m.termWidth)})
	if err != nil {
		return func() tea.Msg { return errMsg{err} }
	}
	m.controller().Close()
	m.view = v
	m.cursor = 0
	m.filterIndex = 0
	m.status = v.Page.Title
	return m.fetch()
}

func nextValue(values []string, current string) string {
	if len(values) == 0 {
		return current
	}
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

func orAll(v string) string {
	if v == "" {
		return "all"
	}
	return v
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	faintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
)

// View renders the page header, the rows and the footer.
func (m Model) View() string {
	snap := m.controller().Snapshot()
	page := m.view.Page
	var b strings.Builder

	b.WriteString(titleStyle.Render(page.Title))
	b.WriteString(faintStyle.Render(fmt.Sprintf(" - %d records", snap.Projection.TotalMatched)))
	if snap.Loading {
		b.WriteString(faintStyle.Render("  loading…"))
	}
	b.WriteString("\n")
	if snap.State.TimeWindow == timewindow.All {
		b.WriteString(printers.TotalBanner(snap.Projection.TotalMatched) + "\n")
	}
	if summary := printers.Constraints(page, snap.State); summary != "" {
		b.WriteString(faintStyle.Render(summary) + "\n")
	}
	b.WriteString("\n")

	rows := snap.Projection.Rows
	switch {
	case snap.Err != "":
		b.WriteString(printers.ErrorBanner(snap.Err) + "\n")
	case len(rows) == 0 && snap.Loading:
		b.WriteString(faintStyle.Render(" loading") + "\n")
	case len(rows) == 0:
		b.WriteString(faintStyle.Render(" none") + "\n")
	case snap.State.ViewMode == listview.ModeGrid:
		b.WriteString(printers.Cards(page, rows, m.termWidth) + "\n")
		if r, ok := m.selected(); ok {
			b.WriteString(faintStyle.Render("selected: "+printers.Cell(r, page.CardTitle, 40)) + "\n")
		}
	default:
		lines := strings.Split(strings.TrimRight(printers.Table(page, rows, true), "\n"), "\n")
		for i, line := range lines {
			if i == m.cursor+1 {
				line = selectedStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("\n" + printers.Footer(snap) + "\n")

	switch m.mode {
	case modeSearch:
		b.WriteString("\n/" + m.input.View() + "\n")
	case modeHelp:
		help := "Keys: j/k move, / search, f cycle filter value, F next filter, c clear filters, t time window, s sort field, o sort order, n/p page, z page size, v grid/table, r reload, d delete, tab next page, q quit"
		b.WriteString("\n" + lipgloss.NewStyle().Italic(true).Render(help) + "\n")
	}

	b.WriteString("\n" + faintStyle.Render(m.status))
	return b.String()
}

// Run opens the named page and runs the interactive list until quit.
func Run(ctx context.Context, svc *app.Service, page string, width int) error {
	v, err := svc.Open(page, app.OpenOptions{Viewport: listview.FixedViewport(width)})
	if err != nil {
		return err
	}
	m := New(svc, v)
	m.ctx = ctx
	m.termWidth = width
	if events, err := svc.Watch(ctx); err == nil {
		m.events = events
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.controller().Close()
	}
	return err
}
