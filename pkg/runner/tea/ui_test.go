package teaui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/ansi"

	"tableflip.dev/campus/pkg/app"
	"tableflip.dev/campus/pkg/listview"
	"tableflip.dev/campus/pkg/source"
	"tableflip.dev/campus/pkg/timewindow"
)

const lostFound = `{"data":[
 {"_id":"a","itemName":"Keys","type":"lost","status":"pending","createdAt":"2024-03-15T10:00:00Z"},
 {"_id":"b","itemName":"Wallet","type":"found","status":"approved","createdAt":"2024-03-14T10:00:00Z"},
 {"_id":"c","itemName":"Scarf","type":"lost","status":"approved","createdAt":"2024-03-13T10:00:00Z"}
]}`

func newModel(t *testing.T, page string) (Model, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lostfound.json"), []byte(lostFound), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "transactions.json"), []byte(`[{"_id":"t1"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	svc := &app.Service{
		Backend: source.NewFiles(dir, nil),
		Scope:   "test",
		Policy:  listview.ViewportPolicy{Breakpoint: 120},
	}
	v, err := svc.Open(page, app.OpenOptions{Ephemeral: true, Viewport: listview.FixedViewport(160)})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(v.Controller.Close)
	m := New(svc, v)
	m = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})
	m = update(t, m, m.fetch()())
	return m, dir
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return got
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyPressMsg
	switch key {
	case "enter":
		msg = tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		msg = tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		msg = tea.KeyPressMsg{Code: tea.KeyTab}
	default:
		msg = tea.KeyPressMsg{Code: []rune(key)[0], Text: key}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// run executes cmd and any batched children, collecting their messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func stripANSI(s string) string {
	var b strings.Builder
	inSeq := false
	for _, r := range s {
		if r == ansi.Marker {
			inSeq = true
			continue
		}
		if inSeq {
			if ansi.IsTerminator(r) {
				inSeq = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestViewRendersTable(t *testing.T) {
	m, _ := newModel(t, "lostfound")
	view := stripANSI(m.View())
	for _, want := range []string{"Lost & Found", "3 records", "Keys", "Wallet", "page 1 of 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestKeysDriveController(t *testing.T) {
	m, _ := newModel(t, "lostfound")
	c := m.view.Controller

	m, _ = press(t, m, "t")
	if got := c.Snapshot().State.TimeWindow; got != timewindow.None.Next() {
		t.Fatalf("time window = %v", got)
	}
	m, _ = press(t, m, "v")
	st := c.Snapshot().State
	if st.ViewMode != listview.ModeGrid || !st.ViewModeExplicit {
		t.Fatalf("view toggle = %+v", st)
	}
	m, _ = press(t, m, "o")
	if got := c.Snapshot().State.SortOrder; got != listview.Asc {
		t.Fatalf("sort order = %q", got)
	}

	m, _ = press(t, m, "/")
	if m.mode != modeSearch {
		t.Fatalf("mode = %v, want search", m.mode)
	}
	m.input.SetValue("wallet")
	m, _ = press(t, m, "enter")
	if m.mode != modeNormal {
		t.Fatalf("mode after enter = %v", m.mode)
	}
	c.SetTimeWindow(timewindow.None)
	snap := c.Snapshot()
	if snap.State.Search != "wallet" || snap.Projection.TotalMatched != 1 {
		t.Fatalf("search = %q, total %d", snap.State.Search, snap.Projection.TotalMatched)
	}
}

func TestFilterCycle(t *testing.T) {
	m, _ := newModel(t, "lostfound")
	c := m.view.Controller
	m, _ = press(t, m, "f")
	first := c.Snapshot().State.Filter("type")
	if first == "" {
		t.Fatal("f did not select a type")
	}
	_, _ = press(t, m, "c")
	if got := c.Snapshot().State.Filter("type"); got != "" {
		t.Fatalf("filters after clear = %q", got)
	}
}

func TestResizeFollowsBreakpoint(t *testing.T) {
	m, _ := newModel(t, "lostfound")
	c := m.view.Controller
	if got := c.Snapshot().State.ViewMode; got != listview.ModeTable {
		t.Fatalf("wide mode = %q", got)
	}
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	if got := c.Snapshot().State.ViewMode; got != listview.ModeGrid {
		t.Fatalf("narrow mode = %q", got)
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "selected: Keys") {
		t.Fatalf("grid view missing selection:\n%s", view)
	}
}

func TestDeleteConfirm(t *testing.T) {
	m, _ := newModel(t, "lostfound")
	m, _ = press(t, m, "j")
	if m.cursor != 1 {
		t.Fatalf("cursor = %d", m.cursor)
	}
	m, _ = press(t, m, "d")
	if m.mode != modeConfirmDelete {
		t.Fatalf("mode = %v, want confirm", m.mode)
	}
	m, cmd := press(t, m, "y")
	msgs := run(cmd)
	if len(msgs) != 1 {
		t.Fatalf("messages = %#v", msgs)
	}
	m = update(t, m, msgs[0])
	if !strings.HasPrefix(m.status, "Deleted b") {
		t.Fatalf("status = %q", m.status)
	}
	if got := m.view.Controller.Snapshot().Loaded; got != 2 {
		t.Fatalf("loaded = %d, want 2", got)
	}
}

func TestDeleteCancelled(t *testing.T) {
	m, _ := newModel(t, "lostfound")
	m, _ = press(t, m, "d")
	m, cmd := press(t, m, "n")
	if cmd != nil && len(run(cmd)) != 0 {
		t.Fatal("cancelled delete ran a command")
	}
	if m.status != "Delete cancelled" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestReadOnlyPage(t *testing.T) {
	m, _ := newModel(t, "transactions")
	m, _ = press(t, m, "d")
	if m.mode != modeNormal || !strings.Contains(m.status, "read-only") {
		t.Fatalf("mode %v status %q", m.mode, m.status)
	}
}

func TestChangedCollectionReloads(t *testing.T) {
	m, dir := newModel(t, "lostfound")
	data := `{"data":[{"_id":"z","itemName":"Umbrella"}]}`
	if err := os.WriteFile(filepath.Join(dir, "lostfound.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	next, cmd := m.Update(changedMsg{ev: source.Event{Endpoint: "/products"}})
	if msgs := run(cmd); len(msgs) != 0 {
		t.Fatalf("other endpoint triggered %#v", msgs)
	}
	m = next.(Model)

	next, cmd = m.Update(changedMsg{ev: source.Event{Endpoint: "/lostfound"}})
	m = next.(Model)
	for _, msg := range run(cmd) {
		m = update(t, m, msg)
	}
	if got := m.view.Controller.Snapshot().Loaded; got != 1 {
		t.Fatalf("loaded after change = %d, want 1", got)
	}
}

func TestSwitchPage(t *testing.T) {
	m, _ := newModel(t, "lostfound")
	old := m.view.Controller
	m, _ = press(t, m, "tab")
	if m.view.Page.Name == "lostfound" {
		t.Fatal("tab did not switch page")
	}
	if err := old.Fetch(context.Background()); err != listview.ErrClosed {
		t.Fatalf("old controller Fetch = %v, want ErrClosed", err)
	}
}
