package graph

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(minute int) time.Time {
	return epoch.Add(time.Duration(minute) * time.Minute)
}

func commit(id string, minute int, parents ...string) Commit {
	return Commit{ID: id, Time: at(minute), Parents: parents, Author: "Test", Message: id + " message"}
}

func rowOf(t *testing.T, l *Layout, id string) Row {
	t.Helper()
	for _, r := range l.Rows {
		if r.Commit.ID == id {
			return r
		}
	}
	require.Failf(t, "row not found", "no row for %s", id)
	return Row{}
}

func connectorOf(t *testing.T, l *Layout, child, parent string) Connector {
	t.Helper()
	for _, c := range l.Connectors {
		if c.Child == child && c.Parent == parent {
			return c
		}
	}
	require.Failf(t, "connector not found", "no connector %s -> %s", child, parent)
	return Connector{}
}

func countKind(l *Layout, kind ConnectorKind) int {
	n := 0
	for _, c := range l.Connectors {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// generateHistory builds a pseudo random DAG where every parent is older
// than or as old as its child. Several commits share a timestamp.
func generateHistory(seed int64, n int) []Commit {
	r := rand.New(rand.NewSource(seed))
	commits := make([]Commit, 0, n)
	for i := 0; i < n; i++ {
		c := commit(fmt.Sprintf("c%04d", i), i/3)
		if i > 0 {
			// Mostly extend a recent commit so the history has long chains
			// and many short-lived side branches.
			first := i - 1 - r.Intn(min(i, 4))
			c.Parents = append(c.Parents, commits[first].ID)
			if i > 3 && r.Intn(5) == 0 {
				c.Parents = append(c.Parents, commits[r.Intn(i)].ID)
			}
		}
		commits = append(commits, c)
	}
	return commits
}

func shuffled(seed int64, commits []Commit) []Commit {
	out := append([]Commit(nil), commits...)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
