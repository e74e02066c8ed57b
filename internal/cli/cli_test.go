package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kurobon/gitgraph/internal/graph"
)

const featureMerge = "../fixture/testdata/feature-merge.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApplication()
	app.SetOutput(&out, &errOut)
	err := app.Execute(context.Background(), args)
	return out.String(), err
}

func TestLayoutCommand_JSON(t *testing.T) {
	out, err := run(t, "layout", "--fixture", featureMerge)
	require.NoError(t, err)

	var layout graph.Layout
	require.NoError(t, json.Unmarshal([]byte(out), &layout), "json is the default off a terminal")
	require.Len(t, layout.Rows, 4)
	assert.Equal(t, "Merge branch 'feature'", layout.Rows[0].Summary)
	assert.True(t, layout.Rows[0].Commit.Head)
	assert.Equal(t, 1, layout.Rows[1].Lane)
	assert.Equal(t, 2, layout.Stats.MaxActiveLanes)
}

func TestLayoutCommand_YAML(t *testing.T) {
	out, err := run(t, "layout", "--fixture", featureMerge, "--format", "yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc["rows"], 4)
	assert.Contains(t, out, "kind: merge-in")
}

func TestLayoutCommand_Text(t *testing.T) {
	out, err := run(t, "layout", "--fixture", featureMerge, "--format", "text")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "(HEAD, main)")
	assert.Contains(t, lines[0], "Merge branch 'feature'")
	assert.Contains(t, lines[1], "(feature) Feature work")
	assert.Contains(t, lines[3], "(tag: v1.0) Initial commit")
	assert.True(t, strings.HasPrefix(lines[0], "●"))
}

func TestLayoutCommand_Limit(t *testing.T) {
	out, err := run(t, "layout", "--fixture", featureMerge, "--limit", "1")
	require.NoError(t, err)

	var layout graph.Layout
	require.NoError(t, json.Unmarshal([]byte(out), &layout))
	assert.Len(t, layout.Rows, 1)
	assert.Equal(t, 2, layout.Stats.ExternalEdges)
}

func TestLayoutCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"both sources", []string{"layout", "--repo", ".", "--fixture", featureMerge}, "mutually exclusive"},
		{"bad format", []string{"layout", "--fixture", featureMerge, "--format", "xml"}, "unsupported format"},
		{"missing fixture", []string{"layout", "--fixture", "nope.yaml"}, "failed to read fixture"},
		{"not a repository", []string{"layout", "--repo", t.TempDir()}, "no repository"},
		{"bad log level", []string{"layout", "--log-level", "loud", "--fixture", featureMerge}, "unsupported log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFixturesCommand(t *testing.T) {
	out, err := run(t, "fixtures", "--fixtures", "../fixture/testdata")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "feature-merge"))
	assert.Contains(t, lines[1], "5 commits")
}

func TestRenderText_LanesAndUncommittedRow(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	layout := graph.Compute([]graph.Commit{
		{ID: "root00000", Time: base, Message: "root"},
		{ID: "side00000", Parents: []string{"root00000"}, Time: base.Add(time.Minute), Message: "side"},
		{ID: "main00000", Parents: []string{"root00000"}, Time: base.Add(2 * time.Minute), Message: "main", Head: true},
		{ID: "*", Parents: []string{"main00000"}, Time: base.Add(3 * time.Minute), Message: "Uncommitted changes", Uncommitted: true},
	})

	lines := strings.Split(strings.TrimRight(renderText(layout), "\n"), "\n")
	assert.Equal(t, []string{
		"○   * Uncommitted changes",
		"●   main000 (HEAD) main",
		"│ ●  side000 side",
		"● │  root000 root",
	}, lines)
}

func TestWriteLayout_DefaultsToJSONOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLayout(&buf, graph.Compute(nil), ""))
	assert.True(t, json.Valid(buf.Bytes()))
	assert.Equal(t, formatJSON, defaultFormat(&buf))
}
