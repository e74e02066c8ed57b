package graph

import "sort"

// lane is one lifetime of a vertical track. The slot index may be reused by
// a later lifetime once this one retires.
type lane struct {
	id       int
	index    int
	color    int
	start    int
	end      int // -1 while active
	frontier int // row of the awaited parent, external when none
}

// edge records which lane carries a (child, parent) pair.
type edge struct {
	via *lane
}

// allocator walks rows top to bottom and assigns lanes.
type allocator struct {
	seq    *sequence
	colors *ColorAssigner

	slots   []bool          // occupied slot indices
	freed   []int           // slots retired on the current row
	waiting map[int][]*lane // awaited row -> lanes whose frontier it is
	lanes   []*lane
	active  int

	rowLane []*lane
	edges   [][]edge
	open    []int // lanes still active after each row
	stats   Stats
}

func allocateLanes(seq *sequence, colors *ColorAssigner) *allocator {
	a := &allocator{
		seq:     seq,
		colors:  colors,
		waiting: make(map[int][]*lane),
		rowLane: make([]*lane, len(seq.commits)),
		edges:   make([][]edge, len(seq.commits)),
		open:    make([]int, len(seq.commits)),
	}
	for row := range seq.commits {
		a.place(row)
	}
	a.finish()
	return a
}

func (a *allocator) place(row int) {
	for _, slot := range a.freed {
		a.slots[slot] = false
	}
	a.freed = a.freed[:0]

	// 1. Match every lane waiting for this commit. The lowest slot keeps
	// going, converging duplicates retire here. A duplicate's connector
	// bends into the surviving lane above this row, so its slot is free
	// for allocations on this very row.
	var own *lane
	if matched := a.waiting[row]; len(matched) > 0 {
		delete(a.waiting, row)
		sort.Slice(matched, func(i, j int) bool { return matched[i].index < matched[j].index })
		own = matched[0]
		own.frontier = external
		for _, dup := range matched[1:] {
			dup.frontier = external
			a.retire(dup, row, true)
			a.stats.Collapsed++
		}
	} else {
		// 2. Nobody expected this commit: it is a branch tip.
		own = a.allocate(row)
	}
	a.rowLane[row] = own

	parents := a.seq.parents[row]
	edges := make([]edge, len(parents))

	// 3. The first parent continues the lane; without one the lane ends.
	if len(parents) == 0 || parents[0] == external {
		a.retire(own, row, false)
	} else {
		a.await(own, parents[0])
	}
	if len(parents) > 0 {
		edges[0] = edge{via: own}
	}

	// 4. Further parents join a lane already tracking them or get their own.
	for k := 1; k < len(parents); k++ {
		p := parents[k]
		switch tracked := a.waiting[p]; {
		case p == external:
			edges[k] = edge{via: own}
		case len(tracked) > 0:
			edges[k] = edge{via: lowest(tracked)}
		default:
			l := a.allocate(row)
			a.await(l, p)
			edges[k] = edge{via: l}
		}
	}
	a.edges[row] = edges

	for _, p := range parents {
		if p == external {
			a.stats.ExternalEdges++
		}
	}
	alive := 0
	for _, used := range a.slots {
		if used {
			alive++
		}
	}
	if alive > a.stats.MaxActiveLanes {
		a.stats.MaxActiveLanes = alive
	}
	a.open[row] = a.active
}

// allocate opens a lane in the lowest free slot.
func (a *allocator) allocate(row int) *lane {
	index := len(a.slots)
	for i, used := range a.slots {
		if !used {
			index = i
			break
		}
	}
	if index == len(a.slots) {
		a.slots = append(a.slots, true)
	} else {
		a.slots[index] = true
	}
	if index+1 > a.stats.Width {
		a.stats.Width = index + 1
	}

	l := &lane{
		id:       len(a.lanes),
		index:    index,
		color:    a.colors.Acquire(),
		start:    row,
		end:      -1,
		frontier: external,
	}
	a.lanes = append(a.lanes, l)
	a.active++
	return l
}

func (a *allocator) await(l *lane, row int) {
	l.frontier = row
	a.waiting[row] = append(a.waiting[row], l)
}

// retire ends a lane on row. Its slot is reusable from the next row on,
// or immediately when now is set.
func (a *allocator) retire(l *lane, row int, now bool) {
	l.end = row
	if now {
		a.slots[l.index] = false
	} else {
		a.freed = append(a.freed, l.index)
	}
	a.colors.Release(l.color)
	a.active--
}

// finish closes anything still open at the bottom of the graph. Parents
// always sit below their children, so this only triggers on inconsistent
// bookkeeping and keeps every LaneSpan well formed.
func (a *allocator) finish() {
	last := len(a.seq.commits) - 1
	for _, l := range a.lanes {
		if l.end < 0 {
			a.retire(l, last, true)
		}
	}
	a.waiting = nil
}

func lowest(lanes []*lane) *lane {
	best := lanes[0]
	for _, l := range lanes[1:] {
		if l.index < best.index {
			best = l
		}
	}
	return best
}
