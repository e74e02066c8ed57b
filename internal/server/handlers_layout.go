package server

import (
	"encoding/json"
	"net/http"

	"github.com/kurobon/gitgraph/internal/fixture"
	"github.com/kurobon/gitgraph/internal/graph"
)

// maxLayoutBody bounds POST /api/layout request bodies.
const maxLayoutBody = 32 << 20

type LayoutRequest struct {
	Commits  []graph.Commit  `json:"commits"`
	Palette  []string        `json:"palette,omitempty"`
	Geometry *graph.Geometry `json:"geometry,omitempty"`
}

type FixtureSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Commits     int    `json:"commits"`
}

func (s *Server) layoutOptions(palette []string, geometry *graph.Geometry) []graph.Option {
	settings := s.SessionManager.Settings()
	opts := []graph.Option{
		graph.WithPalette(settings.Palette),
		graph.WithGeometry(settings.Geometry),
	}
	if len(palette) > 0 {
		opts = append(opts, graph.WithPalette(palette))
	}
	if geometry != nil {
		opts = append(opts, graph.WithGeometry(*geometry))
	}
	return opts
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LayoutRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLayoutBody)).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, graph.Compute(req.Commits, s.layoutOptions(req.Palette, req.Geometry)...))
}

func (s *Server) handleListFixtures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Fixtures == nil {
		writeJSON(w, []FixtureSummary{})
		return
	}

	fixtures, err := s.Fixtures.ListFixtures()
	if err != nil {
		writeError(w, err)
		return
	}

	summaries := make([]FixtureSummary, len(fixtures))
	for i, f := range fixtures {
		summaries[i] = FixtureSummary{
			ID:          f.ID,
			Title:       f.Title,
			Description: f.Description,
			Commits:     len(f.Commits),
		}
	}
	writeJSON(w, summaries)
}

func (s *Server) handleFixtureLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	if s.Fixtures == nil {
		http.Error(w, "fixture not found", http.StatusNotFound)
		return
	}

	f, err := s.Fixtures.LoadFixture(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, struct {
		Fixture *fixture.Fixture `json:"fixture"`
		Layout  *graph.Layout    `json:"layout"`
	}{f, graph.Compute(f.GraphCommits(), s.layoutOptions(nil, nil)...)})
}
