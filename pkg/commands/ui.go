package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/campus/pkg/commands/options"
	"tableflip.dev/campus/pkg/runner/list"
	teaui "tableflip.dev/campus/pkg/runner/tea"
	"tableflip.dev/campus/pkg/snake"
)

func addUI(topLevel *cobra.Command) {
	in := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "ui [page]",
		Short: "Open the interactive list view.",
		Example: `
campus ui
campus ui orders
campus ui -i
`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: pageNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			page := "lostfound"
			if len(args) > 0 {
				page = args[0]
			} else if in.Interactive {
				if page, err = snake.PromptPage(cmd, svc.AllPages()); err != nil {
					return err
				}
			}
			return teaui.Run(cmd.Context(), svc, page, list.TerminalWidth(cmd.OutOrStdout()))
		},
	}

	options.InteractiveArgs(cmd, in)
	topLevel.AddCommand(cmd)
}
