package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/campus/pkg/app"
	"tableflip.dev/campus/pkg/commands/options"
	"tableflip.dev/campus/pkg/runner/edit"
)

func addEdit(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	quiet := false

	cmd := &cobra.Command{
		Use:   "edit <page> <id> <field=value>...",
		Short: "Change fields of a record.",
		Long: `Change fields of a record. Values that read as JSON (true, 12.5, null,
"quoted") keep their type; anything else is sent as a string.`,
		Example: `
campus edit lostfound 65f1c0de9a status=approved
campus edit products 65f1c0de9b price=12.5 deleted=false
`,
		Args: cobra.MinimumNArgs(3),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return pageNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := app.ParseFields(args[2:])
			if err != nil {
				return oo.HandleError(err)
			}
			svc, err := loadApp(cmd.ErrOrStderr())
			if err != nil {
				return oo.HandleError(err)
			}

			e := edit.Edit{
				App:    svc,
				Page:   args[0],
				ID:     args[1],
				Fields: fields,
				Quiet:  quiet || oo.JSON,
				Out:    cmd.OutOrStdout(),
			}
			if err := e.Do(cmd.Context()); err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"page": args[0], "id": args[1], "updated": fields})
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "Do not print the page afterwards.")
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
