package remove

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"tableflip.dev/campus/pkg/app"
	"tableflip.dev/campus/pkg/listview"
	"tableflip.dev/campus/pkg/printers"
)

// Remove deletes records from a page and prints what is left.
type Remove struct {
	App   *app.Service
	Page  string
	IDs   []string
	Quiet bool
	Out   io.Writer
}

func (n *Remove) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not delete, no application service")
	}
	if len(n.IDs) == 0 {
		return errors.New("can not delete, no record ids given")
	}
	out := n.Out
	if out == nil {
		out = os.Stdout
	}

	v, err := n.App.Open(n.Page, app.OpenOptions{Ephemeral: true})
	if err != nil {
		return err
	}
	defer v.Controller.Close()
	if err := v.Controller.Mount(ctx); err != nil {
		return fmt.Errorf("load %s: %w", v.Page.Name, err)
	}

	for _, id := range n.IDs {
		if err := n.App.Delete(ctx, v, id); err != nil {
			return fmt.Errorf("delete %s from %s: %w", id, v.Page.Name, err)
		}
	}
	if n.Quiet {
		return nil
	}
	v.Controller.ClampPage()

	lp := printers.ListPrinter{Out: out, ShowID: true}
	// Always a table here; ids are the point.
	v.Controller.SetViewMode(listview.ModeTable)
	_, _ = fmt.Fprintln(out, "")
	lp.Print(v.Page, v.Controller.Snapshot())
	return nil
}
