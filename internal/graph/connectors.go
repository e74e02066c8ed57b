package graph

// Geometry holds the presentation constants used to place connector paths.
type Geometry struct {
	LaneWidth     float64 `json:"laneWidth" yaml:"laneWidth"`
	RowHeight     float64 `json:"rowHeight" yaml:"rowHeight"`
	CurveFraction float64 `json:"curveFraction" yaml:"curveFraction"`
}

// DefaultGeometry matches the spacing of the desktop client.
var DefaultGeometry = Geometry{LaneWidth: 16, RowHeight: 28, CurveFraction: 0.8}

func (g Geometry) normalized() Geometry {
	if g.LaneWidth <= 0 {
		g.LaneWidth = DefaultGeometry.LaneWidth
	}
	if g.RowHeight <= 0 {
		g.RowHeight = DefaultGeometry.RowHeight
	}
	if g.CurveFraction <= 0 || g.CurveFraction > 1 {
		g.CurveFraction = DefaultGeometry.CurveFraction
	}
	return g
}

// X is the horizontal centre of a lane.
func (g Geometry) X(lane int) float64 {
	return float64(lane)*g.LaneWidth + g.LaneWidth/2
}

// Y is the vertical centre of a row.
func (g Geometry) Y(row int) float64 {
	return float64(row)*g.RowHeight + g.RowHeight/2
}

type anchor struct {
	lane int
	row  int
}

func emitConnectors(seq *sequence, a *allocator, g Geometry) []Connector {
	out := make([]Connector, 0, len(seq.commits))
	for row, parents := range seq.parents {
		child := a.rowLane[row]
		for k, p := range parents {
			via := a.edges[row][k].via
			c := Connector{
				Child:    seq.commits[row].ID,
				Parent:   seq.commits[row].Parents[k],
				FromRow:  row,
				FromLane: child.index,
				ViaLane:  via.index,
				Color:    via.color,
			}

			if p == external {
				c.ToRow, c.ToLane = -1, -1
				c.OffScreen = true
				c.Kind = Straight
				if k > 0 {
					c.Kind = MergeIn
				}
				c.Segments = g.stub(child.index, row)
				out = append(out, c)
				continue
			}

			target := a.rowLane[p]
			c.ToRow, c.ToLane = p, target.index
			switch {
			case k > 0:
				c.Kind = MergeIn
			case target == via:
				c.Kind = Straight
			default:
				c.Kind = BranchOut
			}
			c.Segments = g.path(route(row, child.index, via.index, p, target.index))
			out = append(out, c)
		}
	}
	return out
}

// route lists the anchors of an edge: leave the child, bend onto the
// carrying lane within the first row span, run down it, and bend into the
// parent's lane within the last row span.
func route(fromRow, fromLane, via, toRow, toLane int) []anchor {
	if toRow-fromRow <= 1 {
		return []anchor{{fromLane, fromRow}, {toLane, toRow}}
	}
	points := []anchor{{fromLane, fromRow}}
	if via != fromLane {
		points = append(points, anchor{via, fromRow + 1})
	}
	if via != toLane {
		points = append(points, anchor{via, toRow - 1})
	}
	points = append(points, anchor{toLane, toRow})

	out := points[:1]
	for _, p := range points[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// path turns anchors into segments. A run along one lane is always a single
// line however many rows it crosses.
func (g Geometry) path(points []anchor) []Segment {
	segments := make([]Segment, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		from := Point{X: g.X(points[i-1].lane), Y: g.Y(points[i-1].row)}
		to := Point{X: g.X(points[i].lane), Y: g.Y(points[i].row)}
		if from.X == to.X {
			segments = append(segments, Segment{Kind: SegmentLine, From: from, To: to})
			continue
		}
		dy := (to.Y - from.Y) * g.CurveFraction
		segments = append(segments, Segment{
			Kind: SegmentCurve,
			From: from,
			To:   to,
			C1:   &Point{X: from.X, Y: from.Y + dy},
			C2:   &Point{X: to.X, Y: to.Y - dy},
		})
	}
	return segments
}

// stub is the path of an edge whose parent is not laid out: it leaves the
// child and stops at the bottom edge of the child's row.
func (g Geometry) stub(lane, row int) []Segment {
	x := g.X(lane)
	return []Segment{{
		Kind: SegmentLine,
		From: Point{X: x, Y: g.Y(row)},
		To:   Point{X: x, Y: float64(row+1) * g.RowHeight},
	}}
}
