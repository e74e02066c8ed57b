package fixture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/gitgraph/internal/graph"
)

func TestLoader_LoadFixture(t *testing.T) {
	loader := NewLoader("testdata")

	f, err := loader.LoadFixture("feature-merge")
	require.NoError(t, err)

	assert.Equal(t, "feature-merge", f.ID, "ID defaults to the file name")
	assert.Equal(t, "Feature merged into main", f.Title)
	require.Len(t, f.Commits, 4)
	assert.Equal(t, []string{"C2", "C3"}, f.Commits[3].Parents)
	assert.True(t, f.Commits[3].Head)
	assert.Equal(t, Epoch.Add(4*time.Second), f.Commits[3].Time())
}

func TestLoader_ListFixtures(t *testing.T) {
	fixtures, err := NewLoader("testdata").ListFixtures()
	require.NoError(t, err)

	var ids []string
	for _, f := range fixtures {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"feature-merge", "octopus"}, ids, "broken fixtures are skipped")
}

func TestLoader_RejectsPathsAsIDs(t *testing.T) {
	loader := NewLoader("testdata")
	for _, id := range []string{"", "../fixture/testdata/octopus", "sub/octopus", ".hidden"} {
		_, err := loader.LoadFixture(id)
		assert.ErrorIs(t, err, ErrInvalidID, id)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"valid", "commits:\n  - id: A\n", false},
		{"no commits", "title: empty\n", true},
		{"missing id", "commits:\n  - tick: 1\n", true},
		{"unknown field", "commits:\n  - id: A\n    parnets: [B]\n", true},
		{"not yaml", "commits: [", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParse_EmptyFixture(t *testing.T) {
	_, err := Parse([]byte("id: nothing\n"))
	assert.ErrorIs(t, err, ErrEmptyFixture)
}

func TestFixture_GraphCommits(t *testing.T) {
	f, err := Load("testdata/feature-merge.yaml")
	require.NoError(t, err)

	commits := f.GraphCommits()
	require.Len(t, commits, 4)
	assert.Equal(t, "C4", commits[3].ID)
	assert.Equal(t, []string{"C2", "C3"}, commits[3].Parents)
	assert.Equal(t, []string{"main"}, commits[3].Refs)
	assert.Equal(t, []string{"tag: v1.0"}, commits[0].Refs)
	assert.Equal(t, []string{"origin/main"}, commits[1].Refs)
	assert.True(t, commits[3].Head)
	assert.Equal(t, "Ada Lovelace", commits[2].Author)

	commits[3].Parents[0] = "changed"
	assert.Equal(t, "C2", f.Commits[3].Parents[0], "conversion copies slices")
}

func TestShippedFixtures(t *testing.T) {
	fixtures, err := NewLoader("../../fixtures").ListFixtures()
	require.NoError(t, err)
	require.NotEmpty(t, fixtures)

	for _, f := range fixtures {
		t.Run(f.ID, func(t *testing.T) {
			_, err := Build(f)
			require.NoError(t, err)

			layout := graph.Compute(f.GraphCommits())
			assert.Len(t, layout.Rows, len(f.Commits))
			assert.Zero(t, layout.Stats.ExternalEdges, "every parent is part of the fixture")
		})
	}
}
