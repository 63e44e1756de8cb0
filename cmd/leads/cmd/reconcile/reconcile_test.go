package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cofina/leads"
	"github.com/cofina/leads/internal/cmd/application"
)

func TestReconcileStartsNewSession(t *testing.T) {
	l, src := application.NewTestLeads(t)
	before := l.Report().SessionID

	cmd := NewCommand(application.NewTestMock(l, src, "json"))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var report leads.LoadReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report), out.String())
	assert.NotEmpty(t, report.SessionID)
	assert.NotEqual(t, before, report.SessionID)
	assert.Len(t, report.Categories, 2)
}
