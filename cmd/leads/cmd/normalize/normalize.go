// Package normalize implements the normalize command.
package normalize

import (
	"github.com/spf13/cobra"

	"github.com/cofina/leads/cmd/application"
	"github.com/cofina/leads/internal/cmd/output"
	"github.com/cofina/leads/internal/cmd/table"
	"github.com/cofina/leads/pkg/identity"
)

// Result pairs an input with its identity key.
type Result struct {
	Input string `json:"input" yaml:"input"`
	Key   string `json:"key" yaml:"key"`
	Valid bool   `json:"valid" yaml:"valid"`
}

// NewCommand creates the normalize command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <url...>",
		Short: "Print the identity key of profile URLs",
		Long: `Normalize shows how URLs are compared during reconciliation: the
scheme must be http or https, the query and fragment are dropped along with
one trailing slash. Inputs that are not URLs have no key.`,
		Example: `  leads normalize "https://www.linkedin.com/in/jane/?utm=x"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]Result, len(args))
			tab := table.Data{Headers: []string{"Input", "Key"}}
			for i, in := range args {
				key := identity.Normalize(in)
				results[i] = Result{Input: in, Key: key, Valid: key != ""}
				tab.Rows = append(tab.Rows, []string{in, key})
			}
			return output.Print(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), results, &tab)
		},
	}
}
