// Package reconcile implements the reconcile command.
package reconcile

import (
	"github.com/spf13/cobra"

	"github.com/cofina/leads/cmd/application"
	"github.com/cofina/leads/internal/cmd/output"
	"github.com/cofina/leads/internal/cmd/table"
)

// NewCommand creates the reconcile command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Reload every category and match it against the roster",
		Long: `Reconcile reads every category again, restores roster rows from the
persisted accepted identities, flags rows whose profile URL appears in the
roster and persists the flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := app.Leads(cmd.Context())
			if err != nil {
				return err
			}
			report, err := l.Reload(cmd.Context())
			if err != nil {
				return err
			}
			app.Logger().Info().
				Int("matched", report.Matched).
				Int("restored", report.Restored).
				Int("warnings", len(report.Warnings)).
				Msg("Reconciled")
			tab := table.ReportToTableData(report)
			return output.Print(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), report, &tab)
		},
	}
}
