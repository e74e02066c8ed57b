// Package fixture loads commit DAGs described in YAML and can materialize
// them as in-memory git repositories.
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyFixture = errors.New("fixture has no commits")
	ErrInvalidID    = errors.New("invalid fixture id")
)

// Loader handles loading fixtures from a directory.
type Loader struct {
	Dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// LoadFixture loads a single fixture by ID (filename without extension).
func (l *Loader) LoadFixture(id string) (*Fixture, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return nil, fmt.Errorf("%q: %w", id, ErrInvalidID)
	}
	f, err := Load(filepath.Join(l.Dir, id+".yaml"))
	if err != nil {
		return nil, err
	}
	if f.ID == "" {
		f.ID = id
	}
	return f, nil
}

// ListFixtures returns all fixtures in the directory sorted by ID.
// Files that fail to parse are skipped.
func (l *Loader) ListFixtures() ([]*Fixture, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, err
	}

	var fixtures []*Fixture
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		f, err := l.LoadFixture(strings.TrimSuffix(e.Name(), ".yaml"))
		if err != nil {
			continue
		}
		fixtures = append(fixtures, f)
	}
	sort.Slice(fixtures, func(i, j int) bool { return fixtures[i].ID < fixtures[j].ID })
	return fixtures, nil
}

// Load reads a fixture file. The ID defaults to the file's base name.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.ID == "" {
		f.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f, nil
}

// Parse decodes fixture YAML. Unknown keys are rejected so typos in
// commit fields do not silently produce a different graph.
func Parse(data []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture yaml: %w", err)
	}
	if len(f.Commits) == 0 {
		return nil, ErrEmptyFixture
	}
	for i, c := range f.Commits {
		if c.ID == "" {
			return nil, fmt.Errorf("commit #%d has no id", i)
		}
	}
	return &f, nil
}
