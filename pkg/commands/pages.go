package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"tableflip.dev/campus/pkg/commands/options"
	"tableflip.dev/campus/pkg/printers"
)

func addPages(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	history := false
	forget := false

	cmd := &cobra.Command{
		Use:   "pages [page]",
		Short: "List the pages, describe one, or manage remembered views.",
		Example: `
campus pages
campus pages orders
campus pages --history
campus pages orders --forget
`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: pageNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadApp(cmd.ErrOrStderr())
			if err != nil {
				return oo.HandleError(err)
			}
			out := cmd.OutOrStdout()

			switch {
			case forget:
				if len(args) == 0 {
					return oo.HandleError(fmt.Errorf("--forget needs a page name"))
				}
				if err := svc.Forget(args[0]); err != nil {
					return oo.HandleError(err)
				}
				_, _ = fmt.Fprintf(out, "forgot the view of %s\n", args[0])
				return nil

			case history:
				entries := svc.Remembered(cmd.Context())
				if oo.JSON {
					return printJSON(out, entries)
				}
				tbl := uitable.New()
				tbl.Separator = "  "
				tbl.AddRow(color.New(color.Bold).Sprint("PAGE"), color.New(color.Bold).Sprint("UPDATED"), color.New(color.Bold).Sprint("QUERY"))
				for _, e := range entries {
					tbl.AddRow(e.Page, e.Updated.Local().Format("2006-01-02 15:04"), "?"+e.Query)
				}
				_, _ = fmt.Fprintln(out, tbl)
				return nil

			case len(args) == 1:
				p, err := svc.Page(args[0])
				if err != nil {
					return oo.HandleError(err)
				}
				if oo.JSON {
					return printJSON(out, p)
				}
				rendered, err := printers.Describe(p)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(out, rendered)
				return nil
			}

			all := svc.AllPages()
			if oo.JSON {
				return printJSON(out, all)
			}
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.MaxColWidth = 60
			bold := color.New(color.Bold)
			tbl.AddRow(bold.Sprint("NAME"), bold.Sprint("TITLE"), bold.Sprint("ENDPOINT"), bold.Sprint("ALIASES"), bold.Sprint("NOTES"))
			for _, p := range all {
				var notes []string
				if p.ServerPaged {
					notes = append(notes, "server-paged")
				}
				if p.ReadOnly {
					notes = append(notes, "read-only")
				}
				tbl.AddRow(p.Name, p.Title, p.Endpoint, strings.Join(p.Aliases, ", "), strings.Join(notes, ", "))
			}
			_, _ = fmt.Fprintln(out, tbl)
			return nil
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "Show the remembered query of every page.")
	cmd.Flags().BoolVar(&forget, "forget", false, "Forget the remembered query of the page.")
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
