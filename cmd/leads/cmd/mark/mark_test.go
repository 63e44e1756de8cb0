package mark

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cofina/leads"
	"github.com/cofina/leads/internal/cmd/application"
	"github.com/cofina/leads/pkg/session"
)

func accepted(t *testing.T, l leads.Leads, company string) bool {
	t.Helper()
	var ok bool
	require.NoError(t, l.View(func(s *session.Session) error {
		c, err := s.Workbook().Get("Series A")
		if err != nil {
			return err
		}
		col := c.Schema.Index("Company")
		for i := range c.Rows {
			if c.Cell(i, col) == company {
				ok = c.Accepted(i)
			}
		}
		return nil
	}))
	return ok
}

func TestMarkArgs(t *testing.T) {
	l, src := application.NewTestLeads(t)
	require.False(t, accepted(t, l, "Acme"))

	cmd := NewCommand(application.NewTestMock(l, src, "json"))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"https://www.linkedin.com/in/bob/?trk=x", "not a url"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var report leads.MarkReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report), out.String())
	assert.Equal(t, 1, report.Rows)
	assert.Equal(t, []string{"not a url"}, report.Invalid)
	assert.True(t, accepted(t, l, "Acme"))
}

func TestMarkRequiresURLs(t *testing.T) {
	l, src := application.NewTestLeads(t)
	cmd := NewCommand(application.NewTestMock(l, src, "json"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestMarkFromStdin(t *testing.T) {
	l, src := application.NewTestLeads(t)
	cmd := NewCommand(application.NewTestMock(l, src, "json"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("# accepted this week\n\nhttps://www.linkedin.com/in/alice\n"))
	cmd.SetArgs([]string{"--file", "-"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.True(t, accepted(t, l, "Initech"))
}

func TestReadURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("  https://a/in/x  \n#skip\n\nhttps://a/in/y\n"), 0o644))

	urls, err := readURLs(nil, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a/in/x", "https://a/in/y"}, urls)

	_, err = readURLs(nil, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
