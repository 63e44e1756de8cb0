// Package show implements the show command.
package show

import (
	"github.com/spf13/cobra"

	"github.com/cofina/leads/cmd/application"
	"github.com/cofina/leads/internal/cmd/output"
	"github.com/cofina/leads/internal/cmd/table"
	"github.com/cofina/leads/pkg/categories"
	"github.com/cofina/leads/pkg/session"
)

// View is the structured form of a shown category.
type View struct {
	Name    string              `json:"name" yaml:"name"`
	Roster  bool                `json:"roster" yaml:"roster"`
	Columns []categories.Column `json:"columns" yaml:"columns"`
	Rows    []Row               `json:"rows" yaml:"rows"`
}

// Row is one displayed row with its position in the category.
type Row struct {
	Index int               `json:"index" yaml:"index"`
	Cells map[string]string `json:"cells" yaml:"cells"`
}

// NewCommand creates the show command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		search string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "show <category>",
		Short: "Show the rows of a category",
		Long: `Show prints a category in display order. With --search only rows
containing the term in any cell are shown, accepted rows first.`,
		Example: `  leads show "Series A"
  leads show "Series A" --search acme
  leads show "LinkedIn Accepted" -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app.Leads(cmd.Context())
			if err != nil {
				return err
			}

			var (
				c       *categories.Category
				indices []int
			)
			err = l.View(func(s *session.Session) error {
				var err error
				if c, err = s.Display(args[0]); err != nil {
					return err
				}
				if search != "" {
					indices, err = s.Search(args[0], search)
				}
				return err
			})
			if err != nil {
				return err
			}
			if indices == nil {
				indices = make([]int, 0, c.Len())
				for i := range c.Rows {
					indices = append(indices, i)
				}
			}
			if limit > 0 && len(indices) > limit {
				indices = indices[:limit]
			}

			tab := table.CategoryToTableData(c, indices)
			return output.Print(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), view(c, indices), &tab)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only rows containing this term")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many rows")
	return cmd
}

func view(c *categories.Category, indices []int) View {
	v := View{Name: c.Name, Roster: c.Roster, Columns: c.Schema, Rows: make([]Row, 0, len(indices))}
	names := c.Schema.Names()
	for _, i := range indices {
		cells := make(map[string]string, len(names))
		for col, name := range names {
			if val := c.Cell(i, col); val != "" {
				cells[name] = val
			}
		}
		v.Rows = append(v.Rows, Row{Index: i, Cells: cells})
	}
	return v
}
