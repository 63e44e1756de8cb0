package categories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cofina/leads/pkg/errors"
	"github.com/cofina/leads/pkg/identity"
)

func testCategory() *Category {
	c := New("Series A", false, NewSchema("linkedin accepted?", "Accepted", "Company", "CEO LinkedIn", "COO Linkedin"))
	c.Rows = []Row{
		{Origin: 0, Cells: []string{"", "", "Acme", "", "https://www.linkedin.com/in/bob/"}},
		{Origin: 1, Cells: []string{"✓", "", "Globex", "https://www.linkedin.com/in/alice?trk=x", ""}},
		{Origin: 2, Cells: []string{"", ""}},
	}
	return c
}

func TestSchemaRoles(t *testing.T) {
	c := testCategory()

	assert.Equal(t, 0, c.DerivedColumn())
	assert.Equal(t, 1, c.AcceptanceColumn())
	assert.Equal(t, []int{3, 4}, c.Schema.Identities())
	assert.Equal(t, 2, c.Schema.Index(" Company "))
	assert.Equal(t, -1, c.Schema.Index("company"))
	assert.Equal(t, identity.RoleData, c.Schema[2].Role)
}

func TestCellAccess(t *testing.T) {
	c := testCategory()

	assert.Equal(t, "Acme", c.Cell(0, 2))
	assert.Equal(t, "", c.Cell(2, 4))
	assert.Equal(t, "", c.Cell(9, 0))

	require.True(t, c.SetCell(2, 4, "x"))
	assert.Len(t, c.Rows[2].Cells, 5)
	assert.Equal(t, "x", c.Cell(2, 4))

	assert.False(t, c.SetCell(3, 0, "x"))
	assert.False(t, c.SetCell(0, 5, "x"))
}

func TestIdentityLookups(t *testing.T) {
	c := testCategory()

	assert.Equal(t, []string{"https://www.linkedin.com/in/bob/"}, c.IdentityValues(0))
	assert.Equal(t, "https://www.linkedin.com/in/alice", c.IdentityKey(1))
	assert.Equal(t, 1, c.Find("https://www.linkedin.com/in/alice"))
	assert.Equal(t, 0, c.Find("https://www.linkedin.com/in/bob"))
	assert.Equal(t, -1, c.Find(""))
	assert.Equal(t, -1, c.Find("https://www.linkedin.com/in/carol"))
}

func TestAccepted(t *testing.T) {
	c := testCategory()
	assert.False(t, c.Accepted(0))
	assert.True(t, c.Accepted(1))

	roster := New("LinkedIn Accepted", true, NewSchema("Name", "LinkedIn"))
	roster.Rows = []Row{{Cells: []string{"a", "b"}}}
	assert.True(t, roster.Accepted(0))
	assert.False(t, roster.Accepted(1))
}

func TestCloneIsDeep(t *testing.T) {
	c := testCategory()
	cp := c.Clone()
	cp.Rows[0].Cells[2] = "changed"
	cp.Schema[2].Name = "changed"

	assert.Equal(t, "Acme", c.Rows[0].Cells[2])
	assert.Equal(t, "Company", c.Schema[2].Name)
}

func TestGlyphs(t *testing.T) {
	for _, v := range []string{"✓", "1", "yes", "YES", " Yes "} {
		assert.True(t, IsAffirmative(v), v)
	}
	for _, v := range []string{"", "0", "no", "true", "x", "✗"} {
		assert.False(t, IsAffirmative(v), v)
	}
	assert.Equal(t, "✓", Glyph(true))
	assert.Equal(t, "", Glyph(false))
}

func TestWorkbook(t *testing.T) {
	w := NewWorkbook("LinkedIn Accepted")
	require.NoError(t, w.Add(New("LinkedIn Accepted", false, NewSchema("Name"))))
	require.NoError(t, w.Add(New("a16z-gaming", false, nil)))
	require.NoError(t, w.Add(New("Series A", false, nil)))

	err := w.Add(New("Series A", false, nil))
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)
	assert.Error(t, w.Add(nil))

	assert.Equal(t, []string{"LinkedIn Accepted", "a16z-gaming", "Series A"}, w.Names())
	require.NotNil(t, w.Roster())
	assert.True(t, w.Roster().Roster)

	others := w.Others()
	require.Len(t, others, 2)
	assert.Equal(t, "a16z-gaming", others[0].Name)

	_, err = w.Get("missing")
	assert.True(t, errors.IsNotFound(err))

	w.Replace(New("a16z-gaming", false, NewSchema("X")))
	c, err := w.Get("a16z-gaming")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Width())
	assert.Equal(t, 3, w.Len())

	cp := w.Clone()
	cp.Roster().Name = "renamed"
	assert.Equal(t, "LinkedIn Accepted", w.Roster().Name)
}

func TestRowIDs(t *testing.T) {
	c := testCategory()
	c.EnsureIDs()
	seen := map[uint64]bool{}
	for _, r := range c.Rows {
		assert.NotZero(t, r.ID)
		assert.False(t, seen[r.ID])
		seen[r.ID] = true
	}

	blank := c.BlankRow()
	assert.Equal(t, NoOrigin, blank.Origin)
	assert.Len(t, blank.Cells, 5)
	assert.NotZero(t, blank.ID)

	id := c.Rows[2].ID
	assert.Equal(t, 2, c.IndexOf(id))
	assert.Equal(t, -1, c.IndexOf(0))
	assert.Equal(t, id, c.Clone().Rows[2].ID)

	assert.Equal(t, []string{"a", "b", "", "", ""}, c.Fit([]string{"a", "b"}))
	assert.Len(t, c.Fit(make([]string, 9)), 5)
}
