// Package mark implements the mark command.
package mark

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cofina/leads/cmd/application"
	"github.com/cofina/leads/internal/cmd/output"
	"github.com/cofina/leads/internal/cmd/table"
	"github.com/cofina/leads/pkg/errors"
)

// NewCommand creates the mark command.
func NewCommand(app application.Application) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "mark [url...]",
		Short: "Mark leads accepted by LinkedIn profile URL",
		Long: `Mark sets the LinkedIn accepted flag on every row whose profile URL
matches one of the given URLs, then commits. URLs are compared after
normalization, so query strings and trailing slashes do not matter.

With --file, URLs are read one per line. Blank lines and lines starting
with # are skipped. Use --file - to read stdin.`,
		Example: `  leads mark https://www.linkedin.com/in/jane-doe
  leads mark --file accepted.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := args
			if file != "" {
				more, err := readURLs(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				urls = append(urls, more...)
			}
			if len(urls) == 0 {
				return errors.NewValidationError("urls", nil, "give at least one URL or --file")
			}

			l, err := app.Leads(cmd.Context())
			if err != nil {
				return err
			}
			report, err := l.Mark(cmd.Context(), urls)
			if err != nil {
				return err
			}
			app.Logger().Info().
				Int("urls", len(urls)).
				Int("rows", report.Rows).
				Int("unmatched", len(report.Unmatched)).
				Msg("Marked accepted")
			tab := table.MarkToTableData(report)
			return output.Print(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), report, &tab)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read URLs from this file, one per line (- for stdin)")
	return cmd
}

// readURLs reads one URL per line from path, or from stdin when path is "-".
func readURLs(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.WrapIO("open", path, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return urls, nil
}
