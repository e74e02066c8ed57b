package fixture

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_FeatureMerge(t *testing.T) {
	f, err := Load("testdata/feature-merge.yaml")
	require.NoError(t, err)

	built, err := Build(f)
	require.NoError(t, err)
	repo := built.Repo

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, plumbing.NewBranchReferenceName("main"), head.Name())
	assert.Equal(t, built.Hashes["C4"], head.Hash())

	merge, err := repo.CommitObject(built.Hashes["C4"])
	require.NoError(t, err)
	assert.Equal(t, "Merge branch 'feature'", merge.Message)
	assert.Equal(t, []plumbing.Hash{built.Hashes["C2"], built.Hashes["C3"]}, merge.ParentHashes)
	assert.Equal(t, f.Commits[3].Time().Unix(), merge.Committer.When.Unix())

	feature, err := repo.CommitObject(built.Hashes["C3"])
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", feature.Author.Name)
	assert.Equal(t, "ada.lovelace@example.com", feature.Author.Email)

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "main"), false)
	require.NoError(t, err)
	assert.Equal(t, built.Hashes["C2"], remoteRef.Hash())

	tagRef, err := repo.Reference(plumbing.NewTagReferenceName("v1.0"), false)
	require.NoError(t, err)
	assert.Equal(t, built.Hashes["C1"], tagRef.Hash())

	remote, err := repo.Remote("origin")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/feature-merge.git"}, remote.Config().URLs)
}

func TestBuild_SlashedLocalBranch(t *testing.T) {
	f, err := Load("testdata/octopus.yaml")
	require.NoError(t, err)

	built, err := Build(f)
	require.NoError(t, err)

	ref, err := built.Repo.Reference(plumbing.NewBranchReferenceName("topic/a"), false)
	require.NoError(t, err)
	assert.Equal(t, built.Hashes["a"], ref.Hash())

	merge, err := built.Repo.CommitObject(built.Hashes["merge"])
	require.NoError(t, err)
	assert.Len(t, merge.ParentHashes, 3)
}

func TestBuild_DetachedHead(t *testing.T) {
	built, err := Build(&Fixture{Commits: []Commit{
		{ID: "A", Tick: 1, Refs: []string{"main"}},
		{ID: "B", Parents: []string{"A"}, Tick: 2, Head: true},
	}})
	require.NoError(t, err)

	head, err := built.Repo.Head()
	require.NoError(t, err)
	assert.Equal(t, plumbing.HEAD, head.Name())
	assert.Equal(t, built.Hashes["B"], head.Hash())
}

func TestBuild_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		commits []Commit
	}{
		{"unknown parent", []Commit{{ID: "A", Parents: []string{"ghost"}}}},
		{"duplicate id", []Commit{{ID: "A"}, {ID: "A"}}},
		{"cycle", []Commit{{ID: "A", Parents: []string{"B"}}, {ID: "B", Parents: []string{"A"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(&Fixture{Commits: tt.commits})
			assert.Error(t, err)
		})
	}
}

func TestRefName(t *testing.T) {
	remotes := []string{"origin", "upstream"}
	assert.Equal(t, plumbing.ReferenceName("refs/heads/main"), RefName("main", remotes))
	assert.Equal(t, plumbing.ReferenceName("refs/heads/feature/x"), RefName("feature/x", remotes))
	assert.Equal(t, plumbing.ReferenceName("refs/remotes/upstream/dev"), RefName("upstream/dev", remotes))
	assert.Equal(t, plumbing.ReferenceName("refs/tags/v2"), RefName("tag: v2", remotes))
}
