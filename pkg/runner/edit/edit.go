package edit

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

// Edit changes fields of one record and prints the page it lives on.
type Edit struct {
	App    *app.Service
	Page   string
	ID     string
	Fields map[string]any
	Quiet  bool
	Out    io.Writer
}

func (e *Edit) Do(ctx context.Context) error {
	if e.App == nil {
		return errors.New("can not edit, no application service")
	}
	if e.ID == "" {
		return errors.New("can not edit, no record id given")
	}
	out := e.Out
	if out == nil {
		out = os.Stdout
	}

	v, err := e.App.Open(e.Page, app.OpenOptions{Ephemeral: true})
	if err != nil {
		return err
	}
	defer v.Controller.Close()
	if err := v.Controller.Mount(ctx); err != nil {
		return fmt.Errorf("load %s: %w", v.Page.Name, err)
	}
	if err := e.App.Update(ctx, v, e.ID, e.Fields); err != nil {
		return fmt.Errorf("edit %s in %s: %w", e.ID, v.Page.Name, err)
	}
	if e.Quiet {
		return nil
	}
	v.Controller.ClampPage()
	v.Controller.SetViewMode(listview.ModeTable)

	lp := printers.ListPrinter{Out: out, ShowID: true}
	_, _ = fmt.Fprintln(out, "")
	lp.Print(v.Page, v.Controller.Snapshot())
	return nil
}
