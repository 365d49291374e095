package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/campus/pkg/commands/options"
	"tableflip.dev/campus/pkg/runner/list"
	"tableflip.dev/campus/pkg/snake"
)

func addList(topLevel *cobra.Command) {
	lo := &options.ListOptions{}
	oo := &options.OutputOptions{}
	in := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:     "list [page]",
		Aliases: []string{"ls", "get"},
		Short:   "Show one page of a collection.",
		Example: `
campus list lostfound
campus list orders --filter status=pending --time last7d
campus list products --search mug --sort price --order asc
campus list users --query "role=admin&page=2" --json
`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: pageNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadApp(cmd.ErrOrStderr())
			if err != nil {
				return oo.HandleError(err)
			}

			page := ""
			if len(args) > 0 {
				page = args[0]
			}
			if page == "" {
				if !in.Interactive {
					return oo.HandleError(errors.New("a page name is required, or use --interactive"))
				}
				if page, err = snake.PromptPage(cmd, svc.AllPages()); err != nil {
					return err
				}
			}

			adj, err := lo.Adjustments(cmd)
			if err != nil {
				return oo.HandleError(err)
			}

			l := list.List{
				App:         svc,
				Page:        page,
				Query:       lo.QueryOverride(cmd),
				Adjustments: adj,
				Width:       lo.Width,
				ShowID:      lo.ShowID,
				JSON:        oo.JSON,
				Ephemeral:   lo.NoHistory,
				Out:         cmd.OutOrStdout(),
			}
			return oo.HandleError(l.Do(cmd.Context()))
		},
	}

	options.AddListArgs(cmd, lo)
	options.AddOutputArg(cmd, oo)
	options.InteractiveArgs(cmd, in)

	topLevel.AddCommand(cmd)
}
