package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/campus/pkg/commands/options"
	"tableflip.dev/campus/pkg/runner/remove"
	"tableflip.dev/campus/pkg/snake"
)

func addDelete(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	yes := false
	quiet := false

	cmd := &cobra.Command{
		Use:     "delete <page> <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete records from a collection.",
		Example: `
campus delete lostfound 65f1c0de9a
campus delete products 65f1c0de9a 65f1c0de9b --yes
`,
		Args: cobra.MinimumNArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return pageNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadApp(cmd.ErrOrStderr())
			if err != nil {
				return oo.HandleError(err)
			}
			page, ids := args[0], args[1:]

			if !yes && !oo.JSON {
				ok, err := snake.PromptConfirm(cmd, fmt.Sprintf("Delete %s from %s", strings.Join(ids, ", "), page))
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing deleted")
					return nil
				}
			}

			r := remove.Remove{
				App:   svc,
				Page:  page,
				IDs:   ids,
				Quiet: quiet || oo.JSON,
				Out:   cmd.OutOrStdout(),
			}
			if err := r.Do(cmd.Context()); err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"page": page, "deleted": ids})
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation.")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Do not print the page afterwards.")
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
