package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain/identity"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain/taxonomy"
)

func toDomain(ds Dataset) []domain.TaxonomyEntry {
	out := make([]domain.TaxonomyEntry, 0, len(ds.Entries))
	for _, e := range ds.Entries {
		out = append(out, domain.TaxonomyEntry{ID: e.ID, Location: e.Location, Activity: e.Activity, Option: e.Option})
	}
	return out
}

func TestLoad_DefaultDataset(t *testing.T) {
	ds, err := Load("")
	require.NoError(t, err)

	entries := toDomain(ds)
	assert.Equal(t, []string{"Kenting", "Taroko", "Yangmingshan"}, taxonomy.Locations(entries))
	assert.Equal(t, []string{"Day hike", "Hot spring visit"}, taxonomy.ActivitiesFor(entries, "Yangmingshan"))
	assert.Equal(t, []string{"Datun loop", "Qixing trail"}, taxonomy.OptionsFor(entries, "Yangmingshan", "Day hike"))
	assert.Empty(t, taxonomy.ActivitiesFor(entries, "Kenting"))

	require.Len(t, ds.Bulletins, 2)
	assert.True(t, ds.Bulletins[1].CreatedAt.After(ds.Bulletins[0].CreatedAt))

	require.Len(t, ds.Admins, 1)
	assert.Equal(t, domain.LoginID(identity.Address("Admin", "0000")), ds.Admins[0])
}

func TestLoad_IDsAreStable(t *testing.T) {
	a, err := Load("")
	require.NoError(t, err)
	b, err := Load("")
	require.NoError(t, err)
	require.Equal(t, len(a.Entries), len(b.Entries))
	for i := range a.Entries {
		assert.Equal(t, a.Entries[i].ID, b.Entries[i].ID)
	}

	seen := map[domain.EntryID]bool{}
	for _, e := range a.Entries {
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
taxonomy:
  - location: "  Lake   Side "
    activities:
      - name: Kayak
        options: [Single, Double]
admins:
  - name: Ops
    id_suffix: "1234"
`), 0o600))

	ds, err := Load(path)
	require.NoError(t, err)
	entries := toDomain(ds)
	assert.Equal(t, []string{"Lake Side"}, taxonomy.Locations(entries))
	assert.Equal(t, []string{"Double", "Single"}, taxonomy.OptionsFor(entries, "Lake Side", "Kayak"))
	assert.Len(t, ds.Entries, 4)
	assert.Empty(t, ds.Bulletins)
}

func TestParse_RejectsInvalidAdmin(t *testing.T) {
	_, err := Parse([]byte("admins:\n  - name: Ops\n    id_suffix: \"12\"\n"))
	assert.Error(t, err)
}

func TestParse_SeparatorInLabelsKeepsIDsDistinct(t *testing.T) {
	ds, err := Parse([]byte(`
taxonomy:
  - location: A/B
  - location: A
    activities:
      - name: B
`))
	require.NoError(t, err)
	require.Len(t, ds.Entries, 3)

	seen := map[domain.EntryID]bool{}
	for _, e := range ds.Entries {
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
	assert.Equal(t, []string{"A", "A/B"}, taxonomy.Locations(toDomain(ds)))
}

func TestParse_RejectsRepeatedActivity(t *testing.T) {
	_, err := Parse([]byte(`
taxonomy:
  - location: Lake
    activities:
      - name: Kayak
      - name: Kayak
`))
	assert.ErrorContains(t, err, "listed twice")
}
