package fixture

import (
	"time"

	"github.com/kurobon/gitgraph/internal/graph"
)

// Epoch is the base time fixture ticks are counted from.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Fixture is a commit DAG described in YAML.
type Fixture struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Commits     []Commit `yaml:"commits" json:"commits"`
	// Remotes names the ref prefixes treated as remote-tracking branches.
	// Defaults to origin.
	Remotes []string `yaml:"remotes" json:"remotes,omitempty"`
}

// Commit is one fixture node. Tick is the commit time in seconds after
// Epoch; refs follow git's short names ("main", "origin/main", "tag:v1").
type Commit struct {
	ID      string   `yaml:"id" json:"id"`
	Parents []string `yaml:"parents" json:"parents,omitempty"`
	Tick    int      `yaml:"tick" json:"tick"`
	Author  string   `yaml:"author" json:"author,omitempty"`
	Message string   `yaml:"message" json:"message,omitempty"`
	Refs    []string `yaml:"refs" json:"refs,omitempty"`
	Head    bool     `yaml:"head" json:"head,omitempty"`
}

// Time returns the absolute commit time.
func (c Commit) Time() time.Time {
	return Epoch.Add(time.Duration(c.Tick) * time.Second)
}

// GraphCommits converts the fixture for the layout engine. Commits keep
// their fixture order; the engine sorts them. Tag labels are written the
// way the repository loader writes them.
func (f *Fixture) GraphCommits() []graph.Commit {
	remotes := f.remotes()
	commits := make([]graph.Commit, len(f.Commits))
	for i, c := range f.Commits {
		message := c.Message
		if message == "" {
			message = c.ID
		}
		commits[i] = graph.Commit{
			ID:      c.ID,
			Parents: append([]string(nil), c.Parents...),
			Time:    c.Time(),
			Author:  c.Author,
			Message: message,
			Refs:    refLabels(c.Refs, remotes),
			Head:    c.Head,
		}
	}
	return commits
}

func refLabels(refs, remotes []string) []string {
	if len(refs) == 0 {
		return nil
	}
	labels := make([]string, len(refs))
	for i, label := range refs {
		if name := RefName(label, remotes); name.IsTag() {
			label = "tag: " + name.Short()
		}
		labels[i] = label
	}
	return labels
}
