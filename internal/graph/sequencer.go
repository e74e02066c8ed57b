package graph

import (
	"container/heap"
	"sort"
)

const external = -1

// sequence is the row order produced by the sequencer. Commits are
// addressed by row index; parents holds the row of each parent, or
// external when the parent is missing from the input or would point
// back up the graph.
type sequence struct {
	commits  []Commit
	parents  [][]int
	children [][]int
}

// rank orders commits newest first, identity ascending on ties.
func rank(a, b *Commit) bool {
	if !a.Time.Equal(b.Time) {
		return a.Time.After(b.Time)
	}
	return a.ID < b.ID
}

type readyQueue struct {
	nodes []int
	less  func(i, j int) bool
}

func (q *readyQueue) Len() int           { return len(q.nodes) }
func (q *readyQueue) Less(i, j int) bool { return q.less(q.nodes[i], q.nodes[j]) }
func (q *readyQueue) Swap(i, j int)      { q.nodes[i], q.nodes[j] = q.nodes[j], q.nodes[i] }
func (q *readyQueue) Push(x any)         { q.nodes = append(q.nodes, x.(int)) }
func (q *readyQueue) Pop() any {
	n := len(q.nodes)
	x := q.nodes[n-1]
	q.nodes = q.nodes[:n-1]
	return x
}

// sequenceCommits orders commits so that every child precedes its parents,
// preferring newer commits and breaking ties by identity. The result does
// not depend on the order of the input.
func sequenceCommits(input []Commit) *sequence {
	// 1. Deduplicate identities and parent lists without touching the input.
	nodes := make([]Commit, 0, len(input))
	byID := make(map[string]int, len(input))
	for _, c := range input {
		if _, dup := byID[c.ID]; dup {
			continue
		}
		parents := make([]string, 0, len(c.Parents))
		seen := make(map[string]bool, len(c.Parents))
		for _, p := range c.Parents {
			if seen[p] {
				continue
			}
			seen[p] = true
			parents = append(parents, p)
		}
		c.Parents = parents
		c.Refs = append([]string(nil), c.Refs...)
		byID[c.ID] = len(nodes)
		nodes = append(nodes, c)
	}

	less := func(i, j int) bool { return rank(&nodes[i], &nodes[j]) }

	// 2. Count in-set children per node.
	pending := make([]int, len(nodes))
	for i := range nodes {
		for _, p := range nodes[i].Parents {
			if pi, ok := byID[p]; ok && pi != i {
				pending[pi]++
			}
		}
	}

	// 3. Kahn's algorithm over a priority queue. When a cycle leaves nothing
	// ready, the best ranked remaining node is forced out.
	byRank := make([]int, len(nodes))
	for i := range byRank {
		byRank[i] = i
	}
	sort.SliceStable(byRank, func(a, b int) bool { return less(byRank[a], byRank[b]) })

	queue := &readyQueue{less: less}
	for i := range nodes {
		if pending[i] == 0 {
			queue.nodes = append(queue.nodes, i)
		}
	}
	heap.Init(queue)

	rowOf := make([]int, len(nodes))
	for i := range rowOf {
		rowOf[i] = external
	}
	order := make([]int, 0, len(nodes))
	next := 0
	for len(order) < len(nodes) {
		if queue.Len() == 0 {
			for rowOf[byRank[next]] != external {
				next++
			}
			heap.Push(queue, byRank[next])
		}
		n := heap.Pop(queue).(int)
		if rowOf[n] != external {
			continue
		}
		rowOf[n] = len(order)
		order = append(order, n)
		for _, p := range nodes[n].Parents {
			pi, ok := byID[p]
			if !ok || pi == n || rowOf[pi] != external {
				continue
			}
			pending[pi]--
			if pending[pi] == 0 {
				heap.Push(queue, pi)
			}
		}
	}

	// 4. Materialize rows, parent rows and children.
	seq := &sequence{
		commits:  make([]Commit, len(order)),
		parents:  make([][]int, len(order)),
		children: make([][]int, len(order)),
	}
	for row, n := range order {
		seq.commits[row] = nodes[n]
		parents := make([]int, len(nodes[n].Parents))
		for k, p := range nodes[n].Parents {
			parents[k] = external
			if pi, ok := byID[p]; ok && rowOf[pi] > row {
				parents[k] = rowOf[pi]
				seq.children[rowOf[pi]] = append(seq.children[rowOf[pi]], row)
			}
		}
		seq.parents[row] = parents
	}
	return seq
}
