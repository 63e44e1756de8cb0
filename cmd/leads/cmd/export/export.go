// Package export implements the export command.
package export

import (
	"github.com/spf13/cobra"

	"github.com/cofina/leads/cmd/application"
	"github.com/cofina/leads/internal/cmd/output"
	"github.com/cofina/leads/internal/cmd/table"
	"github.com/cofina/leads/pkg/records"
	"github.com/cofina/leads/pkg/session"
)

// NewCommand creates the export command.
func NewCommand(app application.Application) *cobra.Command {
	var only []string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every lead in one uniform record layout",
		Long: `Export flattens every category into records sharing one schema:
company, CEO, contact URLs, website, industry and both acceptance flags,
plus the raw row keyed by column name. Roster rows count as accepted.

Use --format json or --format yaml for machine-readable output.`,
		Example: `  leads export -o json > leads.json
  leads export --category "Series A" -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := app.Leads(cmd.Context())
			if err != nil {
				return err
			}

			var out []records.Lead
			err = l.View(func(s *session.Session) error {
				wb := s.Workbook()
				if len(only) == 0 {
					out = records.FromWorkbook(wb)
					return nil
				}
				for _, name := range only {
					c, err := wb.Get(name)
					if err != nil {
						return err
					}
					out = append(out, records.FromCategory(c)...)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if out == nil {
				out = []records.Lead{}
			}

			app.Logger().Debug().Int("records", len(out)).Msg("Exporting leads")
			tab := table.LeadsToTableData(out)
			return output.Print(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), out, &tab)
		},
	}
	cmd.Flags().StringSliceVarP(&only, "category", "c", nil, "only export these categories")
	return cmd
}
