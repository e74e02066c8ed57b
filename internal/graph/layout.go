package graph

// Option configures a layout pass.
type Option func(*options)

type options struct {
	palette  []string
	geometry Geometry
}

// WithPalette replaces the colour palette. An empty palette keeps the default.
func WithPalette(palette []string) Option {
	return func(o *options) {
		if len(palette) > 0 {
			o.palette = palette
		}
	}
}

// WithGeometry sets the presentation constants. Zero fields keep their defaults.
func WithGeometry(g Geometry) Option {
	return func(o *options) {
		o.geometry = g
	}
}

// Compute lays out commits. It never fails: missing parents, duplicate
// identities and cycles degrade into extra lanes or off-screen connectors.
// The input slice and its commits are not modified.
func Compute(commits []Commit, opts ...Option) *Layout {
	o := options{palette: DefaultPalette, geometry: DefaultGeometry}
	for _, opt := range opts {
		opt(&o)
	}
	o.geometry = o.geometry.normalized()

	seq := sequenceCommits(commits)
	colors := NewColorAssigner(len(o.palette))
	alloc := allocateLanes(seq, colors)

	layout := &Layout{
		Rows:       make([]Row, len(seq.commits)),
		Connectors: emitConnectors(seq, alloc, o.geometry),
		Lanes:      make([]LaneSpan, len(alloc.lanes)),
		Palette:    append([]string(nil), o.palette...),
		Geometry:   o.geometry,
		Stats:      alloc.stats,
	}

	for row, c := range seq.commits {
		l := alloc.rowLane[row]
		var children []string
		for _, child := range seq.children[row] {
			children = append(children, seq.commits[child].ID)
		}
		layout.Rows[row] = Row{
			Index:     row,
			Commit:    c,
			ShortID:   c.ShortID(),
			Summary:   c.Summary(),
			Lane:      l.index,
			LaneID:    l.id,
			Color:     l.color,
			Merge:     len(c.Parents) > 1,
			ForkPoint: len(children) > 1,
			Children:  children,
		}
	}

	for i, l := range alloc.lanes {
		layout.Lanes[i] = LaneSpan{
			ID:       l.id,
			Index:    l.index,
			Color:    l.color,
			StartRow: l.start,
			EndRow:   l.end,
		}
	}

	layout.Stats.Rows = len(seq.commits)
	layout.Stats.TotalLanes = len(alloc.lanes)
	layout.Stats.ColorCollisions = colors.Collisions()
	return layout
}
