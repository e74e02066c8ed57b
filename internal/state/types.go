package state

import (
	"time"

	"github.com/kurobon/gitgraph/internal/graph"
)

// GraphState represents the serialized state for the frontend
type GraphState struct {
	SessionID      string            `json:"sessionId"`
	RepoPath       string            `json:"repoPath,omitempty"`
	HEAD           Head              `json:"HEAD"`
	Branches       map[string]string `json:"branches"`
	RemoteBranches map[string]string `json:"remoteBranches"`
	Tags           map[string]string `json:"tags"`
	Remotes        []Remote          `json:"remotes"`
	Layout         *graph.Layout     `json:"layout,omitempty"`
	Truncated      bool              `json:"truncated,omitempty"` // commit limit reached
	Dirty          bool              `json:"dirty,omitempty"`
	Loading        bool              `json:"loading"`
	Generation     uint64            `json:"generation"`
	Error          string            `json:"error,omitempty"`
	LoadedAt       time.Time         `json:"loadedAt,omitzero"`
}

type Remote struct {
	Name string   `json:"name"`
	URLs []string `json:"urls"`
}

type Head struct {
	Type string `json:"type"` // "branch", "commit" or "none"
	Ref  string `json:"ref,omitempty"`
	ID   string `json:"id,omitempty"`
}

// Snapshot is what one walk of a repository yields before layout.
type Snapshot struct {
	HEAD           Head
	Branches       map[string]string
	RemoteBranches map[string]string
	Tags           map[string]string
	Remotes        []Remote
	Commits        []graph.Commit
	Truncated      bool
	Dirty          bool
}

// Settings controls how sessions load and lay out their repositories.
type Settings struct {
	Limit              int
	IncludeUncommitted bool
	SoftLaneLimit      int
	Geometry           graph.Geometry
	Palette            []string
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		Limit:              DefaultLimit,
		IncludeUncommitted: true,
		SoftLaneLimit:      32,
		Geometry:           graph.DefaultGeometry,
	}
}
