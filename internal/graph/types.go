package graph

import (
	"strings"
	"time"
)

// Commit is a single node of the history handed to the engine.
type Commit struct {
	ID      string    `json:"id" yaml:"id"`
	Parents []string  `json:"parents,omitempty" yaml:"parents,omitempty"` // first entry is the first parent
	Time    time.Time `json:"time" yaml:"time"`
	Author  string    `json:"author,omitempty" yaml:"author,omitempty"`
	Message string    `json:"message,omitempty" yaml:"message,omitempty"`
	Refs    []string  `json:"refs,omitempty" yaml:"refs,omitempty"`

	// Head marks the checked-out commit.
	Head bool `json:"head,omitempty" yaml:"head,omitempty"`
	// Uncommitted marks the pseudo commit standing in for a dirty worktree.
	Uncommitted bool `json:"uncommitted,omitempty" yaml:"uncommitted,omitempty"`
}

// ShortID returns the abbreviated identity shown next to a row.
func (c Commit) ShortID() string {
	if len(c.ID) <= 7 {
		return c.ID
	}
	return c.ID[:7]
}

// Summary returns the first line of the commit message.
func (c Commit) Summary() string {
	summary, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(summary)
}

// Row is one commit in display order.
type Row struct {
	Index     int      `json:"index" yaml:"index"`
	Commit    Commit   `json:"commit" yaml:"commit"`
	ShortID   string   `json:"shortId" yaml:"shortId"`
	Summary   string   `json:"summary" yaml:"summary"`
	Lane      int      `json:"lane" yaml:"lane"`     // slot index
	LaneID    int      `json:"laneId" yaml:"laneId"` // lifetime id, see LaneSpan
	Color     int      `json:"color" yaml:"color"`   // palette index
	Merge     bool     `json:"merge,omitempty" yaml:"merge,omitempty"`
	ForkPoint bool     `json:"forkPoint,omitempty" yaml:"forkPoint,omitempty"`
	Children  []string `json:"children,omitempty" yaml:"children,omitempty"`
}

// LaneSpan records one lane lifetime. Index is the reusable slot number;
// ID is unique within a Layout.
type LaneSpan struct {
	ID       int `json:"id" yaml:"id"`
	Index    int `json:"index" yaml:"index"`
	Color    int `json:"color" yaml:"color"`
	StartRow int `json:"startRow" yaml:"startRow"`
	EndRow   int `json:"endRow" yaml:"endRow"`
}

// ConnectorKind classifies a parent edge.
type ConnectorKind string

const (
	// Straight is a first-parent edge that stays in its lane.
	Straight ConnectorKind = "straight"
	// MergeIn is an edge from a merge commit to one of its non-first parents.
	MergeIn ConnectorKind = "merge-in"
	// BranchOut is a first-parent edge whose lane leaves the parent's lane,
	// i.e. the child's branch forked off at the parent.
	BranchOut ConnectorKind = "branch-out"
)

// SegmentKind tells the renderer how to draw a Segment.
type SegmentKind string

const (
	SegmentLine  SegmentKind = "line"
	SegmentCurve SegmentKind = "curve"
)

// Point is a position in layout pixels.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Segment is one piece of a connector path. Curves are cubic Béziers with
// control points C1 and C2.
type Segment struct {
	Kind SegmentKind `json:"kind" yaml:"kind"`
	From Point       `json:"from" yaml:"from"`
	To   Point       `json:"to" yaml:"to"`
	C1   *Point      `json:"c1,omitempty" yaml:"c1,omitempty"`
	C2   *Point      `json:"c2,omitempty" yaml:"c2,omitempty"`
}

// Connector is the edge between a child row and one of its parents.
//
// The path leaves the child at (FromRow, FromLane), runs along ViaLane and
// reaches the parent at (ToRow, ToLane). When the parent is not part of the
// layout, OffScreen is set, ToRow and ToLane are -1 and the path is a stub
// ending at the bottom of the child's row.
type Connector struct {
	Child     string        `json:"child" yaml:"child"`
	Parent    string        `json:"parent" yaml:"parent"`
	FromRow   int           `json:"fromRow" yaml:"fromRow"`
	FromLane  int           `json:"fromLane" yaml:"fromLane"`
	ToRow     int           `json:"toRow" yaml:"toRow"`
	ToLane    int           `json:"toLane" yaml:"toLane"`
	ViaLane   int           `json:"viaLane" yaml:"viaLane"`
	Kind      ConnectorKind `json:"kind" yaml:"kind"`
	Color     int           `json:"color" yaml:"color"`
	OffScreen bool          `json:"offScreen,omitempty" yaml:"offScreen,omitempty"`
	Segments  []Segment     `json:"segments" yaml:"segments"`
}

// Stats summarises a layout pass.
type Stats struct {
	Rows            int `json:"rows" yaml:"rows"`
	TotalLanes      int `json:"totalLanes" yaml:"totalLanes"`
	MaxActiveLanes  int `json:"maxActiveLanes" yaml:"maxActiveLanes"`
	Width           int `json:"width" yaml:"width"` // highest slot index + 1
	Collapsed       int `json:"collapsed" yaml:"collapsed"`
	ExternalEdges   int `json:"externalEdges" yaml:"externalEdges"`
	ColorCollisions int `json:"colorCollisions" yaml:"colorCollisions"`
}

// Layout is the result of one pass.
type Layout struct {
	Rows       []Row       `json:"rows" yaml:"rows"`
	Connectors []Connector `json:"connectors" yaml:"connectors"`
	Lanes      []LaneSpan  `json:"lanes" yaml:"lanes"`
	Palette    []string    `json:"palette" yaml:"palette"`
	Geometry   Geometry    `json:"geometry" yaml:"geometry"`
	Stats      Stats       `json:"stats" yaml:"stats"`
}

// ColorOf returns the palette entry for a colour index.
func (l *Layout) ColorOf(color int) string {
	if len(l.Palette) == 0 || color < 0 {
		return ""
	}
	return l.Palette[color%len(l.Palette)]
}
