package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kurobon/gitgraph/internal/fixture"
	"github.com/kurobon/gitgraph/internal/state"
)

type Server struct {
	SessionManager *state.SessionManager
	Fixtures       *fixture.Loader
	Mux            *http.ServeMux
	logger         *zap.Logger
}

func NewServer(sm *state.SessionManager, fixtures *fixture.Loader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		SessionManager: sm,
		Fixtures:       fixtures,
		Mux:            http.NewServeMux(),
		logger:         logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Mux.HandleFunc("/ping", s.handlePing)
	s.Mux.HandleFunc("/api/session/init", s.handleInitSession)
	s.Mux.HandleFunc("/api/session", s.handleDeleteSession)
	s.Mux.HandleFunc("/api/state", s.handleGetGraphState)
	s.Mux.HandleFunc("/api/reload", s.handleReload)
	s.Mux.HandleFunc("/api/layout", s.handleLayout)
	s.Mux.HandleFunc("/api/fixtures", s.handleListFixtures)
	s.Mux.HandleFunc("/api/fixtures/layout", s.handleFixtureLayout)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.Mux.ServeHTTP(w, r)
	s.logger.Debug("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, state.ErrSessionNotFound), errors.Is(err, fs.ErrNotExist):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, state.ErrNoRepository), errors.Is(err, fixture.ErrEmptyFixture),
		errors.Is(err, fixture.ErrInvalidID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"message": "pong",
		"system":  "gitgraph",
	})
}

type InitSessionRequest struct {
	SessionID string `json:"sessionId"`
	// Path opens an on-disk repository; Fixture builds a named fixture in memory.
	Path    string `json:"path"`
	Fixture string `json:"fixture"`
	Limit   int    `json:"limit"`
}

type InitSessionResponse struct {
	Status     string `json:"status"`
	SessionID  string `json:"sessionId"`
	Generation uint64 `json:"generation"`
}

func (s *Server) handleInitSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req InitSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if (req.Path == "") == (req.Fixture == "") {
		http.Error(w, "exactly one of path or fixture is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = fmt.Sprintf("session-%d", time.Now().UnixNano())
	}

	var err error
	limit := state.WithLimit(req.Limit)
	if req.Path != "" {
		_, err = s.SessionManager.OpenSession(req.SessionID, req.Path, limit)
	} else {
		_, err = s.openFixture(req.SessionID, req.Fixture, limit)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	gen, err := s.SessionManager.Reload(context.WithoutCancel(r.Context()), req.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, InitSessionResponse{
		Status:     "session created",
		SessionID:  req.SessionID,
		Generation: gen,
	})
}

func (s *Server) openFixture(sessionID, id string, opts ...state.SessionOption) (*state.Session, error) {
	if s.Fixtures == nil {
		return nil, errors.New("fixtures are not configured")
	}
	f, err := s.Fixtures.LoadFixture(id)
	if err != nil {
		return nil, err
	}
	built, err := fixture.Build(f)
	if err != nil {
		return nil, err
	}
	return s.SessionManager.CreateSession(sessionID, built.Repo, opts...)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "sessionId required", http.StatusBadRequest)
		return
	}

	if !s.SessionManager.RemoveSession(sessionID) {
		writeError(w, fmt.Errorf("%s: %w", sessionID, state.ErrSessionNotFound))
		return
	}

	s.logger.Info("session removed", zap.String("session", sessionID))
	writeJSON(w, map[string]string{"status": "session removed"})
}

func (s *Server) handleGetGraphState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "sessionId required", http.StatusBadRequest)
		return
	}

	// wait=true blocks until the running reload is published.
	if r.URL.Query().Get("wait") == "true" {
		if err := s.SessionManager.Wait(r.Context(), sessionID); err != nil {
			writeError(w, err)
			return
		}
	}

	graphState, err := s.SessionManager.GetGraphState(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, graphState)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "sessionId required", http.StatusBadRequest)
		return
	}

	gen, err := s.SessionManager.Reload(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info("reload requested", zap.String("session", sessionID), zap.Uint64("generation", gen))
	writeJSON(w, map[string]any{
		"status":     "reloading",
		"generation": gen,
	})
}
