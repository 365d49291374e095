package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "campus",
		Short: base.Wrap80("Browse and manage the campus-services admin collections from the terminal."),
		Long: base.Wrap80(`Every list page of the admin console (lost & found, products, orders, ` +
			`transactions, seniors, users, groups and solutions) can be searched, filtered, ` +
			`sorted and paged. The view of each page is kept as a query string and remembered ` +
			`between runs.`),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addList(topLevel)
	addDelete(topLevel)
	addEdit(topLevel)
	addUI(topLevel)
	addPages(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
