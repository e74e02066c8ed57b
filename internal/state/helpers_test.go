package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/gitgraph/internal/fixture"
	"github.com/kurobon/gitgraph/internal/graph"
)

func buildFixture(t *testing.T, commits ...fixture.Commit) *fixture.Repository {
	t.Helper()
	built, err := fixture.Build(&fixture.Fixture{ID: t.Name(), Commits: commits})
	require.NoError(t, err)
	return built
}

func loadFixture(t *testing.T, name string) *fixture.Repository {
	t.Helper()
	f, err := fixture.Load(filepath.Join("..", "fixture", "testdata", name+".yaml"))
	require.NoError(t, err)
	built, err := fixture.Build(f)
	require.NoError(t, err)
	return built
}

// fixtureID returns the fixture commit ID a hash was written for.
func fixtureID(built *fixture.Repository, hash string) (string, bool) {
	for id, h := range built.Hashes {
		if h.String() == hash {
			return id, true
		}
	}
	return "", false
}

// linearFixture returns n commits c0 <- c1 <- ... with main on the tip.
func linearFixture(n int) []fixture.Commit {
	commits := make([]fixture.Commit, n)
	for i := range commits {
		commits[i] = fixture.Commit{ID: "c" + string(rune('a'+i)), Tick: i + 1}
		if i > 0 {
			commits[i].Parents = []string{commits[i-1].ID}
		}
	}
	commits[n-1].Refs = []string{"main"}
	commits[n-1].Head = true
	return commits
}

// initDiskRepo creates an on-disk repository with the given number of
// commits made through the worktree.
func initDiskRepo(t *testing.T, commits int) (string, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()

	fs := osfs.New(dir)
	require.NoError(t, fs.MkdirAll(".git", 0755))
	dotGit, err := fs.Chroot(".git")
	require.NoError(t, err)
	st := filesystem.NewStorage(dotGit, cache.NewObjectLRUDefault())

	repo, err := gogit.Init(st, fs)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	testFile := filepath.Join(dir, "test.txt")
	for i := 0; i < commits; i++ {
		require.NoError(t, os.WriteFile(testFile, []byte{byte('a' + i)}, 0644))
		_, err = wt.Add("test.txt")
		require.NoError(t, err)
		_, err = wt.Commit("commit", &gogit.CommitOptions{
			Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now().Add(time.Duration(i) * time.Second)},
		})
		require.NoError(t, err)
	}
	return dir, repo
}

func commitByID(t *testing.T, commits []graph.Commit, id string) graph.Commit {
	t.Helper()
	for _, c := range commits {
		if c.ID == id {
			return c
		}
	}
	require.Failf(t, "commit not found", "no commit %s", id)
	return graph.Commit{}
}

func (sm *SessionManager) setLoader(load LoadFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.load = load
}
