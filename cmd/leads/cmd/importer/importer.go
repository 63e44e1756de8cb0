// Package importer implements the import command.
package importer

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/cofina/leads/cmd/application"
	"github.com/cofina/leads/internal/cmd/output"
	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/sources"
)

// NewCommand creates the import command.
func NewCommand(app application.Application) *cobra.Command {
	var databaseURL string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the CSV categories into postgres",
		Long: `Import reads every configured category from the data directory and
writes it to the lead_sheets and leads tables, replacing rows of the same
category. After an import, set source: postgres to load from the database.`,
		Example: `  leads import --database-url postgres://localhost/leads
  DATABASE_URL=postgres://localhost/leads leads import`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				databaseURL = app.DatabaseURL()
			}
			if databaseURL == "" {
				return errors.NewConfigError("import", "database_url is required", nil)
			}

			ctx := cmd.Context()
			pool, err := pgxpool.New(ctx, databaseURL)
			if err != nil {
				return errors.NewConfigError("import", "invalid database_url", err)
			}
			defer pool.Close()

			src := app.CSVSource()
			stats, err := sources.Import(ctx, pool, src)
			if err != nil {
				return err
			}
			app.Logger().Info().
				Str("dir", src.Dir()).
				Int("categories", stats.Categories).
				Int("rows", stats.Rows).
				Msg("Imported categories")
			return output.Print(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), stats, nil)
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "postgres connection string (default from config)")
	return cmd
}
