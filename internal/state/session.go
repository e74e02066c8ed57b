package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoRepository    = errors.New("no repository")
)

// Session holds one opened repository and its latest published graph.
type Session struct {
	ID        string
	Path      string
	Repo      *gogit.Repository
	CreatedAt time.Time
	// Limit overrides the manager's commit limit when positive.
	Limit int

	mu         sync.RWMutex
	state      *GraphState
	err        error
	generation uint64
	loading    bool
	cancel     context.CancelFunc
	done       chan struct{}
}

// LoadFunc loads and lays out a session's repository. It must return
// promptly once ctx is cancelled.
type LoadFunc func(ctx context.Context, s *Session) (*GraphState, error)

// SessionManager handles concurrent access to sessions
type SessionManager struct {
	sessions map[string]*Session
	settings Settings
	logger   *zap.Logger
	load     LoadFunc
	mu       sync.RWMutex
}

// NewSessionManager creates a new session manager
func NewSessionManager(logger *zap.Logger, settings Settings) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	sm := &SessionManager{
		sessions: make(map[string]*Session),
		settings: settings,
		logger:   logger,
	}
	sm.load = func(ctx context.Context, s *Session) (*GraphState, error) {
		return sm.BuildGraphState(ctx, s.Repo, s.Limit)
	}
	return sm
}

func (sm *SessionManager) loader() LoadFunc {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.load
}

// Settings returns the settings sessions are loaded with.
func (sm *SessionManager) Settings() Settings {
	return sm.settings
}

// SessionOption configures a session before it is registered.
type SessionOption func(*Session)

// WithLimit overrides the manager's commit limit for one session.
func WithLimit(limit int) SessionOption {
	return func(s *Session) {
		s.Limit = limit
	}
}

func withPath(path string) SessionOption {
	return func(s *Session) {
		s.Path = path
	}
}

// CreateSession registers repo under id. An existing session with the same
// id is replaced and its running reload cancelled.
func (sm *SessionManager) CreateSession(id string, repo *gogit.Repository, opts ...SessionOption) (*Session, error) {
	if repo == nil {
		return nil, ErrNoRepository
	}

	s := &Session{
		ID:        id,
		Repo:      repo,
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	sm.mu.Lock()
	old := sm.sessions[id]
	sm.sessions[id] = s
	sm.mu.Unlock()

	if old != nil {
		old.stop()
	}
	return s, nil
}

// OpenSession opens the repository containing path and registers it.
func (sm *SessionManager) OpenSession(id, path string, opts ...SessionOption) (*Session, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoRepository)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	s, err := sm.CreateSession(id, repo, append([]SessionOption{withPath(path)}, opts...)...)
	if err != nil {
		return nil, err
	}
	sm.logger.Info("session opened", zap.String("session", id), zap.String("path", path))
	return s, nil
}

// GetSession retrieves a session by ID
func (sm *SessionManager) GetSession(id string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[id]
	return s, ok
}

// RemoveSession forgets a session and cancels its reload.
func (sm *SessionManager) RemoveSession(id string) bool {
	sm.mu.Lock()
	s, ok := sm.sessions[id]
	delete(sm.sessions, id)
	sm.mu.Unlock()

	if ok {
		s.stop()
	}
	return ok
}

// Close cancels every running reload.
func (sm *SessionManager) Close() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for _, s := range sm.sessions {
		s.stop()
	}
}

func (s *Session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
