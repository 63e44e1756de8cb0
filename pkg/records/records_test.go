package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cofina/leads/pkg/categories"
)

func TestFromCategory(t *testing.T) {
	c := categories.New("Series A", false, categories.NewSchema(
		"linkedin accepted?", "Accepted", "Company Name", "CEO", "CEO Email",
		"CEO Linkedin", "COO/CFO Linkedin", "Linkedin Request?", "Company Website", "Industry",
	))
	c.Rows = []categories.Row{{Origin: 3, Cells: []string{
		"✓", "", " Acme ", "Bob", "bob@acme.io",
		"https://www.linkedin.com/in/bob/?trk=1", "https://www.linkedin.com/in/cfo", "yes", "acme.io", "Gaming",
	}}}

	got := FromCategory(c)
	require.Len(t, got, 1)
	l := got[0]

	assert.Equal(t, "Series A", l.Category)
	assert.Equal(t, 3, l.Origin)
	assert.Equal(t, "Acme", l.CompanyName)
	assert.Equal(t, "Bob", l.CEO)
	assert.Equal(t, "bob@acme.io", l.CEOEmail)
	assert.Equal(t, "https://www.linkedin.com/in/bob", l.CEOLinkedIn)
	assert.Equal(t, "https://www.linkedin.com/in/bob", l.LinkedIn)
	assert.Equal(t, "https://www.linkedin.com/in/cfo", l.COOCFOLinkedIn)
	assert.Equal(t, "yes", l.LinkedInRequest)
	assert.Equal(t, "acme.io", l.Website)
	assert.Equal(t, "Gaming", l.Industry)
	assert.True(t, l.LinkedInAccepted)
	assert.False(t, l.Accepted)
	assert.NotContains(t, l.Raw, "Accepted")
	assert.Equal(t, "Acme", l.Raw["Company Name"])
}

func TestFromWorkbookRoster(t *testing.T) {
	wb := categories.NewWorkbook("LinkedIn Accepted")
	r := categories.New("LinkedIn Accepted", false, categories.NewSchema("Organization Name", "LinkedIn"))
	r.Rows = []categories.Row{{Origin: 0, Cells: []string{"Globex", "not a url"}}}
	require.NoError(t, wb.Add(r))
	require.NoError(t, wb.Add(categories.New("Series Seed", false, nil)))

	got := FromWorkbook(wb)
	require.Len(t, got, 1)
	assert.True(t, got[0].LinkedInAccepted)
	assert.Equal(t, "Globex", got[0].CompanyName)
	assert.Empty(t, got[0].LinkedIn)
	assert.Equal(t, "not a url", got[0].Raw["LinkedIn"])
}
