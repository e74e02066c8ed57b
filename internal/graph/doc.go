// Package graph lays out a commit DAG as a lane-based graph.
//
// A layout pass runs four stages over an immutable commit list: the
// sequencer orders commits into rows, the lane allocator walks the rows
// assigning each commit to a lane, the colour assigner binds a palette
// colour to every lane lifetime, and the connector emitter turns each
// parent edge into renderable path segments.
//
// A pass keeps all of its state local, so concurrent passes never share
// anything and the same input always produces the same Layout.
package graph
