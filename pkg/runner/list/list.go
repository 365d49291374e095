package list

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"

	"tableflip.dev/campus/pkg/app"
	"tableflip.dev/campus/pkg/listview"
	"tableflip.dev/campus/pkg/printers"
)

// List prints one page of a collection.
type List struct {
	App  *app.Service
	Page string
	// Query replaces the remembered query when set.
	Query       *string
	Adjustments app.Adjustments
	// Width overrides the detected terminal width.
	Width     int
	ShowID    bool
	JSON      bool
	Ephemeral bool
	Out       io.Writer
}

func (l *List) out() io.Writer {
	if l.Out == nil {
		return os.Stdout
	}
	return l.Out
}

func (l *List) Do(ctx context.Context) error {
	if l.App == nil {
		return errors.New("can not list, no application service")
	}
	out := l.out()
	width := l.Width
	if width <= 0 {
		width = TerminalWidth(out)
	}

	v, err := l.App.Open(l.Page, app.OpenOptions{
		Viewport:  listview.FixedViewport(width),
		Query:     l.Query,
		Ephemeral: l.Ephemeral,
	})
	if err != nil {
		return err
	}
	defer v.Controller.Close()

	v.Controller.Start()
	if err := l.Adjustments.Apply(v.Controller); err != nil {
		return err
	}
	fetchErr := v.Controller.Fetch(ctx)
	if fetchErr == nil && v.Controller.ClampPage() {
		// Server-paged collections need the clamped page itself.
		if snap := v.Controller.Snapshot(); snap.Stale {
			fetchErr = v.Controller.Fetch(ctx)
		}
	}
	snap := v.Controller.Snapshot()

	if l.JSON {
		if fetchErr != nil {
			return fmt.Errorf("list %s: %w", v.Page.Name, fetchErr)
		}
		return printers.PrintJSON(out, v.Page, snap)
	}

	lp := printers.ListPrinter{Out: out, Width: width, ShowID: l.ShowID}
	lp.Print(v.Page, snap)
	if fetchErr != nil {
		return fmt.Errorf("list %s: %w", v.Page.Name, fetchErr)
	}
	return nil
}

// TerminalWidth reports the column count of w when it is a terminal and 0
// otherwise.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return 0
	}
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
