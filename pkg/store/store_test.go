package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cofina/leads/pkg/errors"
)

func TestStateMerge(t *testing.T) {
	st := NewState()
	st.SetCell(0, 2, "Acme")
	st.Accepted[0] = true

	change := NewState()
	change.SetCell(0, 3, "Bob")
	change.SetCell(1, 2, "Globex")
	change.Accepted[0] = false
	change.LinkedInAccepted[1] = true

	st.Merge(change)

	v, ok := st.Cell(0, 2)
	assert.True(t, ok)
	assert.Equal(t, "Acme", v)
	v, _ = st.Cell(0, 3)
	assert.Equal(t, "Bob", v)
	v, _ = st.Cell(1, 2)
	assert.Equal(t, "Globex", v)
	assert.False(t, st.Accepted[0])
	assert.True(t, st.LinkedInAccepted[1])
	assert.Equal(t, 5, st.Len())

	var empty *State
	assert.True(t, empty.Empty())
	_, ok = empty.Cell(0, 0)
	assert.False(t, ok)
}

func TestStateZeroValueMerge(t *testing.T) {
	var st State
	st.Merge(&State{Accepted: map[int]bool{3: true}})
	assert.True(t, st.Accepted[3])
	st.Merge(nil)
	assert.Equal(t, 1, st.Len())
}

func TestStateOverlay(t *testing.T) {
	st := NewState()
	st.SetCell(0, 2, "Acme")
	st.SetCell(1, 2, "Globex")
	st.Accepted[0] = true
	st.LinkedInAccepted[1] = true

	other := &State{
		EditedData: map[int]map[int]string{1: {3: "Bob"}},
		Accepted:   map[int]bool{},
	}
	st.Overlay(other)

	_, ok := st.Cell(0, 2)
	assert.False(t, ok)
	v, _ := st.Cell(1, 3)
	assert.Equal(t, "Bob", v)
	assert.True(t, st.Accepted[0], "empty map keeps stored flags")
	assert.True(t, st.LinkedInAccepted[1], "missing map keeps stored flags")

	other.EditedData[1][3] = "changed"
	v, _ = st.Cell(1, 3)
	assert.Equal(t, "Bob", v, "overlay copies")

	st.Overlay(nil)
	assert.Equal(t, 3, st.Len())
}

// repositoryContract runs behaviour every Repository must share.
func repositoryContract(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	st, err := repo.Load(ctx, "Series A")
	require.NoError(t, err)
	assert.True(t, st.Empty())

	first := NewState()
	first.SetCell(0, 2, "Acme")
	first.Accepted[0] = true
	require.NoError(t, repo.Save(ctx, "Series A", first))

	second := NewState()
	second.SetCell(1, 3, "https://www.linkedin.com/in/x")
	second.LinkedInAccepted[1] = true
	require.NoError(t, repo.Save(ctx, "Series A", second))

	st, err = repo.Load(ctx, "Series A")
	require.NoError(t, err)
	v, ok := st.Cell(0, 2)
	assert.True(t, ok, "first save must survive the second")
	assert.Equal(t, "Acme", v)
	v, _ = st.Cell(1, 3)
	assert.Equal(t, "https://www.linkedin.com/in/x", v)
	assert.True(t, st.Accepted[0])
	assert.True(t, st.LinkedInAccepted[1])

	other, err := repo.Load(ctx, "Seed Stage VC")
	require.NoError(t, err)
	assert.True(t, other.Empty())

	// Replace swaps the maps it carries and keeps the others.
	repl := NewState()
	repl.SetCell(5, 2, "Initech")
	require.NoError(t, repo.Replace(ctx, "Series A", repl))
	st, err = repo.Load(ctx, "Series A")
	require.NoError(t, err)
	_, ok = st.Cell(0, 2)
	assert.False(t, ok, "replaced edits are gone")
	v, _ = st.Cell(5, 2)
	assert.Equal(t, "Initech", v)
	assert.True(t, st.Accepted[0])
	assert.True(t, st.LinkedInAccepted[1])

	// Mutating a loaded state must not leak into the store.
	st.Accepted[9] = true
	again, err := repo.Load(ctx, "Series A")
	require.NoError(t, err)
	assert.NotContains(t, again.Accepted, 9)

	require.NoError(t, repo.SetAcceptedIdentities(ctx, []string{"b", "a", "b"}))
	ids, err := repo.AcceptedIdentities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, repo.SetAcceptedIdentities(ctx, nil))
	ids, err = repo.AcceptedIdentities(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.NoError(t, repo.Close())
}

func TestMemoryRepository(t *testing.T) {
	repositoryContract(t, NewMemory())
}

func TestFileRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data_storage.json")
	repositoryContract(t, NewFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))
	assert.Contains(t, top, "Series A", "categories sit at the top level")
	assert.Contains(t, top, "linkedin_accepted_urls")
	assert.NotContains(t, top, "categories")
	assert.Contains(t, string(top["Series A"]), `"edited_data"`)
}

func TestFileRepositoryReadsTopLevelLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data_storage.json")
	doc := `{
  "Series A": {
    "edited_data": {"3": {"2": "Acme Renamed"}},
    "linkedin_accepted": {"1": true}
  },
  "Seed Stage VC": {"accepted": {"0": true}},
  "linkedin_accepted_urls": ["https://www.linkedin.com/in/bob"]
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	repo := NewFile(path)

	st, err := repo.Load(ctx, "Series A")
	require.NoError(t, err)
	v, ok := st.Cell(3, 2)
	assert.True(t, ok)
	assert.Equal(t, "Acme Renamed", v)
	assert.True(t, st.LinkedInAccepted[1])
	assert.NotNil(t, st.Accepted)

	seed, err := repo.Load(ctx, "Seed Stage VC")
	require.NoError(t, err)
	assert.True(t, seed.Accepted[0])

	ids, err := repo.AcceptedIdentities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.linkedin.com/in/bob"}, ids)
}

func TestFileRepositoryBadCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Series A": ["not", "a", "state"]}`), 0o644))

	_, err := NewFile(path).Load(context.Background(), "Series A")
	var perr *errors.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestFileRepositoryPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	change := NewState()
	change.Accepted[4] = true
	require.NoError(t, NewFile(path).Save(ctx, "Series Seed", change))

	st, err := NewFile(path).Load(ctx, "Series Seed")
	require.NoError(t, err)
	assert.True(t, st.Accepted[4])
}

func TestFileRepositoryCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFile(path).Load(context.Background(), "x")
	require.Error(t, err)
	var perr *errors.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestPostgresRepository(t *testing.T) {
	url := os.Getenv("LEADS_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("LEADS_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	repo, err := OpenPostgres(ctx, url)
	require.NoError(t, err)
	_, err = repo.db.Exec(ctx, `TRUNCATE lead_state, accepted_identities`)
	require.NoError(t, err)

	repositoryContract(t, repo)
}

func TestOpenPostgresRequiresURL(t *testing.T) {
	_, err := OpenPostgres(context.Background(), "")
	var cerr *errors.ConfigError
	assert.ErrorAs(t, err, &cerr)
}
