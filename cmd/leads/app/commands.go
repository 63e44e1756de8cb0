package app

import (
	"github.com/spf13/cobra"

	"github.com/cofina/leads/cmd/leads/cmd/export"
	"github.com/cofina/leads/cmd/leads/cmd/importer"
	"github.com/cofina/leads/cmd/leads/cmd/list"
	"github.com/cofina/leads/cmd/leads/cmd/mark"
	"github.com/cofina/leads/cmd/leads/cmd/normalize"
	"github.com/cofina/leads/cmd/leads/cmd/reconcile"
	"github.com/cofina/leads/cmd/leads/cmd/serve"
	"github.com/cofina/leads/cmd/leads/cmd/show"
)

func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(
		withGroup("core", serve.NewCommand(a)),
		withGroup("core", list.NewCommand(a)),
		withGroup("core", show.NewCommand(a)),
		withGroup("core", mark.NewCommand(a)),
		withGroup("core", export.NewCommand(a)),

		withGroup("management", reconcile.NewCommand(a)),
		withGroup("management", importer.NewCommand(a)),
		withGroup("management", normalize.NewCommand(a)),

		a.NewVersionCommand(),
	)
}

func withGroup(id string, cmd *cobra.Command) *cobra.Command {
	cmd.GroupID = id
	return cmd
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("leads %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
