package cli

import (
	"github.com/spf13/cobra"

	"github.com/budde25/nxcloud/internal/logging"
)

// NewRootCommand builds the full command tree. It is called once per
// invocation: the single-shot entry point calls it once, and the
// interactive shell calls it again for every input line so each line
// is parsed exactly like a fresh process invocation.
func NewRootCommand(app *App) *cobra.Command {
	var verbosity int

	root := &cobra.Command{
		Use:   "nxcloud",
		Short: "A command line client for interacting with your NextCloud server",
		Long: "A command line client for interacting with your NextCloud server.\n" +
			"Log in once with 'nxcloud login', then transfer and manage files,\n" +
			"or start an interactive session with 'nxcloud shell'.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(verbosity)
		},
	}
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")

	root.SetIn(app.Stdin)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	root.AddCommand(
		newStatusCommand(app),
		newLoginCommand(app),
		newLogoutCommand(app),
		newPushCommand(app),
		newPullCommand(app),
		newLsCommand(app),
		newMkdirCommand(app),
		newRmCommand(app),
		newCdCommand(app),
		newShellCommand(app),
	)
	return root
}
