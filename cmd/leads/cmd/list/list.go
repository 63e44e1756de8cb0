// Package list implements the list command.
package list

import (
	"github.com/spf13/cobra"

	"github.com/cofina/leads/cmd/application"
	"github.com/cofina/leads/internal/cmd/output"
	"github.com/cofina/leads/internal/cmd/table"
)

// NewCommand creates the list command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List categories with row and acceptance counts",
		Example: `  leads list
  leads list -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := app.Leads(cmd.Context())
			if err != nil {
				return err
			}
			stats := l.Report().Categories
			tab := table.StatsToTableData(stats)
			return output.Print(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), stats, &tab)
		},
	}
}
