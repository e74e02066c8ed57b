package fixture

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/memfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

const tagPrefix = "tag:"

// Repository is a fixture materialized as a go-git repository.
type Repository struct {
	Repo *gogit.Repository
	// Hashes maps fixture commit IDs to the object hashes written.
	Hashes map[string]plumbing.Hash
}

// Build writes the fixture into an in-memory repository with a memfs
// worktree. Every parent must be defined in the fixture and the graph
// must be acyclic.
func Build(f *Fixture) (*Repository, error) {
	repo, err := gogit.Init(memory.NewStorage(), memfs.New())
	if err != nil {
		return nil, fmt.Errorf("failed to init repository: %w", err)
	}

	hashes, err := writeCommits(repo, f.Commits)
	if err != nil {
		return nil, err
	}
	if err := writeRefs(repo, f, hashes); err != nil {
		return nil, err
	}
	return &Repository{Repo: repo, Hashes: hashes}, nil
}

func writeCommits(repo *gogit.Repository, commits []Commit) (map[string]plumbing.Hash, error) {
	// 1. Empty tree shared by every commit
	obj := repo.Storer.NewEncodedObject()
	if err := (&object.Tree{}).Encode(obj); err != nil {
		return nil, err
	}
	treeHash, err := repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to store tree: %w", err)
	}

	byID := make(map[string]Commit, len(commits))
	for _, c := range commits {
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate commit id %q", c.ID)
		}
		byID[c.ID] = c
	}
	for _, c := range commits {
		for _, p := range c.Parents {
			if _, ok := byID[p]; !ok {
				return nil, fmt.Errorf("commit %q: unknown parent %q", c.ID, p)
			}
		}
	}

	// 2. Parents before children, in passes until nothing is left
	hashes := make(map[string]plumbing.Hash, len(commits))
	for len(hashes) < len(commits) {
		progressed := false
		for _, c := range commits {
			if _, done := hashes[c.ID]; done {
				continue
			}
			parents, ready := parentHashes(c, hashes)
			if !ready {
				continue
			}
			h, err := writeCommit(repo, c, treeHash, parents)
			if err != nil {
				return nil, err
			}
			hashes[c.ID] = h
			progressed = true
		}
		if !progressed {
			return nil, fmt.Errorf("fixture history contains a cycle")
		}
	}
	return hashes, nil
}

func parentHashes(c Commit, hashes map[string]plumbing.Hash) ([]plumbing.Hash, bool) {
	parents := make([]plumbing.Hash, 0, len(c.Parents))
	for _, p := range c.Parents {
		h, ok := hashes[p]
		if !ok {
			return nil, false
		}
		parents = append(parents, h)
	}
	return parents, true
}

func writeCommit(repo *gogit.Repository, c Commit, tree plumbing.Hash, parents []plumbing.Hash) (plumbing.Hash, error) {
	author := c.Author
	if author == "" {
		author = "Fixture"
	}
	message := c.Message
	if message == "" {
		message = c.ID
	}
	sig := object.Signature{
		Name:  author,
		Email: strings.ToLower(strings.ReplaceAll(author, " ", ".")) + "@example.com",
		When:  c.Time(),
	}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     tree,
		ParentHashes: parents,
	}

	obj := repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, err
	}
	h, err := repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store commit %q: %w", c.ID, err)
	}
	return h, nil
}

// RefName maps a fixture ref label to a full reference name.
func RefName(label string, remotes []string) plumbing.ReferenceName {
	if name, ok := strings.CutPrefix(label, tagPrefix); ok {
		return plumbing.NewTagReferenceName(strings.TrimSpace(name))
	}
	if remote, branch, ok := strings.Cut(label, "/"); ok {
		for _, r := range remotes {
			if r == remote {
				return plumbing.NewRemoteReferenceName(remote, branch)
			}
		}
	}
	return plumbing.NewBranchReferenceName(label)
}

func (f *Fixture) remotes() []string {
	if len(f.Remotes) == 0 {
		return []string{"origin"}
	}
	return f.Remotes
}

func writeRefs(repo *gogit.Repository, f *Fixture, hashes map[string]plumbing.Hash) error {
	remotes := f.remotes()
	usedRemotes := make(map[string]bool)
	var head plumbing.ReferenceName
	var detached plumbing.Hash
	var branches []plumbing.ReferenceName

	for _, c := range f.Commits {
		var ownBranch plumbing.ReferenceName
		for _, label := range c.Refs {
			name := RefName(label, remotes)
			ref := plumbing.NewHashReference(name, hashes[c.ID])
			if err := repo.Storer.SetReference(ref); err != nil {
				return fmt.Errorf("failed to set ref %s: %w", name, err)
			}
			switch {
			case name.IsBranch():
				branches = append(branches, name)
				if ownBranch == "" {
					ownBranch = name
				}
			case name.IsRemote():
				remote, _, _ := strings.Cut(name.Short(), "/")
				usedRemotes[remote] = true
			}
		}
		if c.Head {
			head, detached = ownBranch, hashes[c.ID]
		}
	}

	for remote := range usedRemotes {
		_, err := repo.CreateRemote(&config.RemoteConfig{
			Name: remote,
			URLs: []string{"https://example.com/" + f.ID + ".git"},
		})
		if err != nil {
			return fmt.Errorf("failed to create remote %s: %w", remote, err)
		}
	}

	switch {
	case head != "":
		return repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, head))
	case !detached.IsZero():
		return repo.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, detached))
	case len(branches) > 0:
		sort.Slice(branches, func(i, j int) bool { return branches[i] < branches[j] })
		return repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branches[0]))
	}
	return nil
}
