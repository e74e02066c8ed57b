package state

import (
	"container/heap"
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/kurobon/gitgraph/internal/graph"
)

const (
	// DefaultLimit caps the number of commits walked per load.
	DefaultLimit = 20000

	// UncommittedID identifies the pseudo commit for a dirty worktree.
	UncommittedID = "*"

	tagLabelPrefix = "tag: "
)

// LoadOptions controls LoadCommits.
type LoadOptions struct {
	Limit              int
	IncludeUncommitted bool
}

// LoadCommits walks every commit reachable from HEAD, local and remote
// branches and tags, up to opts.Limit commits. Parents beyond the limit
// stay referenced by ID so the layout draws them off-screen.
func LoadCommits(ctx context.Context, repo *gogit.Repository, opts LoadOptions) (*Snapshot, error) {
	if repo == nil {
		return nil, ErrNoRepository
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	snap := &Snapshot{
		Branches:       make(map[string]string),
		RemoteBranches: make(map[string]string),
		Tags:           make(map[string]string),
		Remotes:        []Remote{},
	}

	// 1. Get HEAD
	headHash := populateHEAD(repo, snap)

	// 2. Get Branches & Tags
	labels, seeds, err := populateRefs(repo, snap)
	if err != nil {
		return nil, err
	}
	if !headHash.IsZero() {
		seeds = append([]plumbing.Hash{headHash}, seeds...)
	}

	// 3. Walk Commits
	commits, truncated, err := walkCommits(ctx, repo, seeds, opts.Limit)
	if err != nil {
		return nil, err
	}
	snap.Truncated = truncated

	snap.Commits = make([]graph.Commit, 0, len(commits)+1)
	for _, c := range commits {
		snap.Commits = append(snap.Commits, toGraphCommit(c, labels, headHash))
	}

	// 4. Git Status
	if opts.IncludeUncommitted && !headHash.IsZero() {
		dirty, err := worktreeDirty(repo)
		if err != nil && !errors.Is(err, gogit.ErrIsBareRepository) {
			return nil, err
		}
		if dirty {
			snap.Dirty = true
			snap.Commits = append(snap.Commits, uncommitted(headHash, snap.Commits))
		}
	}

	// 5. Remotes
	populateRemotes(repo, snap)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

func populateHEAD(repo *gogit.Repository, snap *Snapshot) plumbing.Hash {
	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// Unborn branch: HEAD names a branch with no commits yet.
			if sym, err := repo.Storer.Reference(plumbing.HEAD); err == nil && sym.Type() == plumbing.SymbolicReference {
				snap.HEAD = Head{Type: "branch", Ref: sym.Target().Short()}
				return plumbing.ZeroHash
			}
		}
		snap.HEAD = Head{Type: "none"}
		return plumbing.ZeroHash
	}

	if ref.Name().IsBranch() {
		snap.HEAD = Head{Type: "branch", Ref: ref.Name().Short(), ID: ref.Hash().String()}
	} else {
		snap.HEAD = Head{Type: "commit", ID: ref.Hash().String()}
	}
	return ref.Hash()
}

type refLabel struct {
	name string
	rank int // 0 current branch, 1 local, 2 remote, 3 tag
}

// populateRefs fills the ref maps and returns the labels per commit hash and
// the walk seeds in ref name order.
func populateRefs(repo *gogit.Repository, snap *Snapshot) (map[plumbing.Hash][]refLabel, []plumbing.Hash, error) {
	refs, err := repo.References()
	if err != nil {
		return nil, nil, err
	}

	var all []*plumbing.Reference
	err = refs.ForEach(func(r *plumbing.Reference) error {
		if r.Type() == plumbing.HashReference {
			all = append(all, r)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name() < all[j].Name() })

	labels := make(map[plumbing.Hash][]refLabel)
	var seeds []plumbing.Hash
	for _, r := range all {
		name := r.Name()
		hash := r.Hash()
		var label refLabel

		switch {
		case name.IsBranch():
			snap.Branches[name.Short()] = hash.String()
			label = refLabel{name: name.Short(), rank: 1}
			if snap.HEAD.Type == "branch" && snap.HEAD.Ref == name.Short() {
				label.rank = 0
			}
		case name.IsRemote():
			if strings.HasSuffix(name.Short(), "/HEAD") {
				continue
			}
			snap.RemoteBranches[name.Short()] = hash.String()
			label = refLabel{name: name.Short(), rank: 2}
		case name.IsTag():
			// Check if it's an annotated tag
			if tagObj, err := repo.TagObject(hash); err == nil {
				hash = tagObj.Target
			}
			snap.Tags[name.Short()] = hash.String()
			label = refLabel{name: tagLabelPrefix + name.Short(), rank: 3}
		default:
			continue
		}

		labels[hash] = append(labels[hash], label)
		seeds = append(seeds, hash)
	}
	return labels, seeds, nil
}

// walkCommits collects up to limit commits reachable from seeds, newest
// committer time first, so an old tag never crowds out recent history.
func walkCommits(ctx context.Context, repo *gogit.Repository, seeds []plumbing.Hash, limit int) ([]*object.Commit, bool, error) {
	var collected []*object.Commit
	seen := make(map[plumbing.Hash]bool)
	queue := &commitQueue{}

	push := func(h plumbing.Hash) {
		if seen[h] {
			return
		}
		seen[h] = true
		c, err := repo.CommitObject(h)
		if err != nil {
			// Tags may point at trees or blobs; shallow clones miss parents.
			return
		}
		heap.Push(queue, c)
	}
	for _, h := range seeds {
		push(h)
	}

	for queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		if len(collected) >= limit {
			return collected, true, nil
		}

		c := heap.Pop(queue).(*object.Commit)
		collected = append(collected, c)
		for _, p := range c.ParentHashes {
			push(p)
		}
	}
	return collected, false, nil
}

// commitQueue pops the newest commit by committer time, then by hash.
type commitQueue []*object.Commit

func (q commitQueue) Len() int { return len(q) }
func (q commitQueue) Less(i, j int) bool {
	ti, tj := q[i].Committer.When, q[j].Committer.When
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return q[i].Hash.String() < q[j].Hash.String()
}
func (q commitQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *commitQueue) Push(x any)   { *q = append(*q, x.(*object.Commit)) }
func (q *commitQueue) Pop() any {
	old := *q
	c := old[len(old)-1]
	*q = old[:len(old)-1]
	return c
}

func toGraphCommit(c *object.Commit, labels map[plumbing.Hash][]refLabel, head plumbing.Hash) graph.Commit {
	parents := make([]string, len(c.ParentHashes))
	for i, p := range c.ParentHashes {
		parents[i] = p.String()
	}
	return graph.Commit{
		ID:      c.Hash.String(),
		Parents: parents,
		Time:    c.Committer.When,
		Author:  c.Author.Name,
		Message: c.Message,
		Refs:    sortLabels(labels[c.Hash]),
		Head:    c.Hash == head,
	}
}

// sortLabels orders the current branch first, local before remote before
// tags, then by name.
func sortLabels(labels []refLabel) []string {
	if len(labels) == 0 {
		return nil
	}
	sorted := append([]refLabel(nil), labels...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].rank != sorted[j].rank {
			return sorted[i].rank < sorted[j].rank
		}
		return sorted[i].name < sorted[j].name
	})
	names := make([]string, len(sorted))
	for i, l := range sorted {
		names[i] = l.name
	}
	return names
}

func worktreeDirty(repo *gogit.Repository) (bool, error) {
	w, err := repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := w.Status()
	if err != nil {
		return false, err
	}
	return !status.IsClean(), nil
}

// uncommitted builds the pseudo commit placed above HEAD. Its time is
// never older than the newest loaded commit so it sorts first.
func uncommitted(head plumbing.Hash, commits []graph.Commit) graph.Commit {
	when := time.Now()
	for _, c := range commits {
		if c.Time.After(when) {
			when = c.Time.Add(time.Second)
		}
	}
	return graph.Commit{
		ID:          UncommittedID,
		Parents:     []string{head.String()},
		Time:        when,
		Message:     "Uncommitted changes",
		Uncommitted: true,
	}
}

func populateRemotes(repo *gogit.Repository, snap *Snapshot) {
	remotes, err := repo.Remotes()
	if err != nil {
		return
	}
	for _, r := range remotes {
		cfg := r.Config()
		snap.Remotes = append(snap.Remotes, Remote{
			Name: cfg.Name,
			URLs: cfg.URLs,
		})
	}
	sort.Slice(snap.Remotes, func(i, j int) bool { return snap.Remotes[i].Name < snap.Remotes[j].Name })
}
