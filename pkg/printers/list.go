package printers

import (
	"fmt"
	"hash/fnv"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/campus/pkg/listview"
	"tableflip.dev/campus/pkg/pages"
	"tableflip.dev/campus/pkg/record"
	"tableflip.dev/campus/pkg/timewindow"
)

// CardWidth is the outer width of one grid card.
const CardWidth = 34

// ListPrinter renders a list page snapshot to a writer, as a table or as a
// grid of cards depending on the view mode.
type ListPrinter struct {
	Out    io.Writer
	Width  int
	ShowID bool
}

func (lp *ListPrinter) out() io.Writer {
	if lp.Out == nil {
		return color.Output
	}
	return lp.Out
}

// Print renders the whole page: header, rows and footer.
func (lp *ListPrinter) Print(page pages.Page, snap listview.Snapshot) {
	w := lp.out()
	lp.Header(page, snap)
	if snap.Err != "" {
		_, _ = fmt.Fprintln(w, ErrorBanner(snap.Err))
		return
	}
	if len(snap.Projection.Rows) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(w, " none\n\n")
	} else if snap.State.ViewMode == listview.ModeGrid {
		_, _ = fmt.Fprintln(w, Cards(page, snap.Projection.Rows, lp.Width))
	} else {
		_, _ = fmt.Fprintln(w, Table(page, snap.Projection.Rows, lp.ShowID))
	}
	_, _ = fmt.Fprintln(w, Footer(snap))
}

// Header prints the page title with its match count, the total banner for
// the all-time window and the active constraints.
func (lp *ListPrinter) Header(page pages.Page, snap listview.Snapshot) {
	w := lp.out()
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(w, page.Title)
	_, _ = c.Fprintf(w, " - %d", snap.Projection.TotalMatched)
	switch snap.Projection.TotalMatched {
	case 1:
		_, _ = c.Fprintln(w, " record")
	default:
		_, _ = c.Fprintln(w, " records")
	}

	if snap.State.TimeWindow == timewindow.All {
		_, _ = fmt.Fprintln(w, TotalBanner(snap.Projection.TotalMatched))
	}
	if summary := Constraints(page, snap.State); summary != "" {
		_, _ = c.Fprintln(w, summary)
	}
	_, _ = fmt.Fprintln(w, "")
}

// Constraints summarises search, filters and time window in one line.
func Constraints(page pages.Page, s listview.ViewState) string {
	var parts []string
	if s.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", s.Search))
	}
	for _, f := range page.Filters {
		if v := s.Filter(f.Field); v != "" {
			label := f.Label
			if label == "" {
				label = f.Field
			}
			parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(label), v))
		}
	}
	if s.TimeWindow != timewindow.None && s.TimeWindow != timewindow.All {
		parts = append(parts, strings.ToLower(s.TimeWindow.Label()))
	}
	return strings.Join(parts, " · ")
}

// TotalBanner is shown when the all-time window is selected.
func TotalBanner(total int) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("86")).
		Padding(0, 1).
		Render(fmt.Sprintf("%d across all time", total))
}

// ErrorBanner renders a fetch failure.
func ErrorBanner(msg string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("124")).
		Padding(0, 1).
		Render("error: " + msg)
}

// Footer shows the page position and the active sort.
func Footer(snap listview.Snapshot) string {
	f := color.New(color.Faint)
	line := fmt.Sprintf("page %d of %d · %d per page · sorted by %s %s",
		snap.State.Page, snap.PageCount, snap.State.PageSize, snap.State.SortBy, snap.State.SortOrder)
	if snap.Query != "" {
		line += " · ?" + snap.Query
	}
	return f.Sprint(line)
}

// Cell renders one record field for display. Timestamps are shortened and
// long values are cut to width.
func Cell(r record.Record, field string, width int) string {
	var s string
	if isTimeField(field) {
		if t, ok := r.Time(field); ok {
			s = record.FormatTime(t)
		}
	} else {
		s = r.String(field)
	}
	s = strings.Join(strings.Fields(s), " ")
	if width > 0 {
		s = truncate.StringWithTail(s, uint(width), "…")
	}
	return s
}

func isTimeField(field string) bool {
	return field == "createdAt" || field == "updatedAt" || field == "lastLogin" || strings.HasPrefix(field, "date")
}

// Table renders rows with the page's columns.
func Table(page pages.Page, rows []record.Record, showID bool) string {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "

	header := make([]interface{}, 0, len(page.Columns)+1)
	if showID {
		header = append(header, bold.Sprint("ID"))
	}
	for _, col := range page.Columns {
		header = append(header, bold.Sprint(col.Header))
	}
	tbl.AddRow(header...)

	id := color.New(color.FgHiYellow, color.Italic, color.Faint)
	for _, r := range rows {
		cells := make([]interface{}, 0, len(page.Columns)+1)
		if showID {
			cells = append(cells, id.Sprint(r.ID()))
		}
		for _, col := range page.Columns {
			value := Cell(r, col.Field, col.Width)
			if isBadge(page, col.Field) && value != "" {
				value = Badge(value)
			}
			cells = append(cells, value)
		}
		tbl.AddRow(cells...)
	}
	return tbl.String()
}

func isBadge(page pages.Page, field string) bool {
	for _, b := range page.Badges {
		if b == field {
			return true
		}
	}
	return false
}

var (
	cardStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1).Width(CardWidth - 2)
	cardTitleStyle = lipgloss.NewStyle().Bold(true)
	cardFieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Card renders one record as a bordered card.
func Card(page pages.Page, r record.Record) string {
	inner := CardWidth - 4
	lines := []string{cardTitleStyle.Render(Cell(r, page.CardTitle, inner))}
	var badges []string
	for _, b := range page.Badges {
		if v := Cell(r, b, inner); v != "" {
			badges = append(badges, Badge(v))
		}
	}
	if len(badges) > 0 {
		lines = append(lines, strings.Join(badges, " "))
	}
	for _, col := range page.Columns {
		if col.Field == page.CardTitle || isBadge(page, col.Field) {
			continue
		}
		label := col.Header + ": "
		value := Cell(r, col.Field, inner-len(label))
		if value == "" {
			continue
		}
		lines = append(lines, cardFieldStyle.Render(label)+value)
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// Cards lays rows out as a grid as wide as width allows.
func Cards(page pages.Page, rows []record.Record, width int) string {
	perRow := 1
	if width > CardWidth {
		perRow = width / CardWidth
	}
	var grid []string
	for start := 0; start < len(rows); start += perRow {
		end := min(start+perRow, len(rows))
		cards := make([]string, 0, end-start)
		for _, r := range rows[start:end] {
			cards = append(cards, Card(page, r))
		}
		grid = append(grid, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, grid...)
}

// Badge renders a value on a background colour derived from the value, so
// the same status always gets the same colour.
func Badge(value string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(value)))
	hue := float64(h.Sum32() % 360)
	bg := colorful.Hcl(hue, 0.5, 0.45).Clamped()
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color(bg.Hex())).
		Padding(0, 1).
		Render(value)
}
