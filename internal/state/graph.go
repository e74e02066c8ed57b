package state

import (
	"context"
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/kurobon/gitgraph/internal/graph"
)

// GetGraphState returns the latest published state of a session. While the
// first reload is still running the state carries no layout.
func (sm *SessionManager) GetGraphState(sessionID string) (*GraphState, error) {
	session, ok := sm.GetSession(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.mu.RLock()
	defer session.mu.RUnlock()

	var state GraphState
	if session.state != nil {
		state = *session.state
	}
	state.SessionID = session.ID
	state.RepoPath = session.Path
	state.Loading = session.loading
	state.Generation = session.generation
	if session.err != nil {
		state.Error = session.err.Error()
	}
	return &state, nil
}

// BuildGraphState loads a repository and lays it out with the manager's
// settings. A positive limit overrides the configured commit limit.
func (sm *SessionManager) BuildGraphState(ctx context.Context, repo *gogit.Repository, limit int) (*GraphState, error) {
	started := time.Now()

	if limit <= 0 {
		limit = sm.settings.Limit
	}
	snap, err := LoadCommits(ctx, repo, LoadOptions{
		Limit:              limit,
		IncludeUncommitted: sm.settings.IncludeUncommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load commits: %w", err)
	}

	layout := graph.Compute(snap.Commits,
		graph.WithPalette(sm.settings.Palette),
		graph.WithGeometry(sm.settings.Geometry),
	)

	fields := []zap.Field{
		zap.Int("commits", layout.Stats.Rows),
		zap.Int("maxActiveLanes", layout.Stats.MaxActiveLanes),
		zap.Int("width", layout.Stats.Width),
		zap.Bool("truncated", snap.Truncated),
		zap.Duration("elapsed", time.Since(started)),
	}
	if soft := sm.settings.SoftLaneLimit; soft > 0 && layout.Stats.MaxActiveLanes > soft {
		sm.logger.Warn("graph exceeds soft lane limit", append(fields, zap.Int("softLaneLimit", soft))...)
	} else {
		sm.logger.Debug("graph built", fields...)
	}

	return &GraphState{
		HEAD:           snap.HEAD,
		Branches:       snap.Branches,
		RemoteBranches: snap.RemoteBranches,
		Tags:           snap.Tags,
		Remotes:        snap.Remotes,
		Layout:         layout,
		Truncated:      snap.Truncated,
		Dirty:          snap.Dirty,
		LoadedAt:       time.Now(),
	}, nil
}
