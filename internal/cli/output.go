package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/kurobon/gitgraph/internal/graph"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

// defaultFormat picks text for terminals and json for pipes and files.
func defaultFormat(w io.Writer) string {
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return formatText
		}
	}
	return formatJSON
}

func writeLayout(w io.Writer, layout *graph.Layout, format string) error {
	if format == "" {
		format = defaultFormat(w)
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(layout)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(layout); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		_, err := io.WriteString(w, renderText(layout))
		return err
	default:
		return fmt.Errorf("unsupported format %q (want json, yaml or text)", format)
	}
}

// renderText draws one line per row: the lane column, the short hash, ref
// labels and the summary. Each lane is drawn in its palette colour.
func renderText(layout *graph.Layout) string {
	var b strings.Builder
	width := layout.Stats.Width

	for _, row := range layout.Rows {
		cells := make([]string, width)
		for i := range cells {
			cells[i] = " "
		}
		for _, lane := range activeLanes(layout, row.Index) {
			cells[lane.Index] = laneStyle(layout, lane.Color).Render("│")
		}
		node := "●"
		if row.Commit.Uncommitted {
			node = "○"
		}
		if row.Lane < width {
			cells[row.Lane] = laneStyle(layout, row.Color).Render(node)
		}

		b.WriteString(strings.Join(cells, " "))
		b.WriteString("  ")
		b.WriteString(row.ShortID)
		if labels := refLabels(row.Commit); labels != "" {
			b.WriteString(" ")
			b.WriteString(refStyle.Render(labels))
		}
		if row.Summary != "" {
			b.WriteString(" ")
			b.WriteString(row.Summary)
		}
		b.WriteString("\n")
	}
	return b.String()
}

var refStyle = lipgloss.NewStyle().Bold(true)

func laneStyle(layout *graph.Layout, color int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(layout.ColorOf(color)))
}

// activeLanes returns the lanes occupying a row, the latest lifetime per slot.
func activeLanes(layout *graph.Layout, row int) []graph.LaneSpan {
	bySlot := make(map[int]graph.LaneSpan)
	for _, l := range layout.Lanes {
		if l.StartRow > row || l.EndRow < row {
			continue
		}
		if prev, ok := bySlot[l.Index]; !ok || l.StartRow > prev.StartRow {
			bySlot[l.Index] = l
		}
	}
	lanes := make([]graph.LaneSpan, 0, len(bySlot))
	for _, l := range bySlot {
		lanes = append(lanes, l)
	}
	return lanes
}

func refLabels(c graph.Commit) string {
	labels := c.Refs
	if c.Head {
		labels = append([]string{"HEAD"}, labels...)
	}
	if len(labels) == 0 {
		return ""
	}
	return "(" + strings.Join(labels, ", ") + ")"
}
