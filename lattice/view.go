package lattice

import "golang.org/x/exp/slices"

// View is an instance-sized prefix of a Lattice. Node indices are shared
// with the Lattice, so a node or edge index means the same thing in every
// view of it.
type View struct {
	l      *Lattice
	length int
	nodes  int
}

// Lattice returns the lattice the view slices.
func (v View) Lattice() *Lattice {
	return v.l
}

// Len is the number of events the view covers.
func (v View) Len() int {
	return v.length
}

func (v View) NumNodes() int {
	return v.nodes
}

func (v View) NumEdges() int {
	return int(v.l.in[v.nodes])
}

func (v View) Key(node int) Key {
	return v.l.keys[node]
}

// Incoming returns the half-open edge index range deriving node.
func (v View) Incoming(node int) (lo, hi int) {
	return int(v.l.in[node]), int(v.l.in[node+1])
}

func (v View) Edge(e int) Edge {
	return v.l.edges[e]
}

// Tails returns the tail node indices of edge e. The slice aliases the
// lattice and must not be modified.
func (v View) Tails(e int) []int32 {
	edge := v.l.edges[e]
	return v.l.tails[edge.tailLo:edge.tailHi]
}

// Source is the START node.
func (v View) Source() int {
	return 0
}

// Sink is FINISH(Len()).
func (v View) Sink() int {
	return v.nodes - 1
}

// Find locates a node by key.
func (v View) Find(k Key) (int, bool) {
	idx, ok := slices.BinarySearch(v.l.keys[:v.nodes], k)
	return idx, ok
}

// FindEdge locates the edge deriving head from exactly the given tails.
func (v View) FindEdge(head Key, tails ...Key) (int, bool) {
	h, ok := v.Find(head)
	if !ok {
		return 0, false
	}
	lo, hi := v.Incoming(h)
EdgeLoop:
	for e := lo; e < hi; e++ {
		ts := v.Tails(e)
		if len(ts) != len(tails) {
			continue
		}
		for i, t := range ts {
			if v.l.keys[t] != tails[i] {
				continue EdgeLoop
			}
		}
		return e, true
	}
	return 0, false
}

// Segment is a labeled half-open event range [Start, Stop).
type Segment struct {
	Label int
	Start int
	Stop  int
}

// SegmentOf reads the segment an OPEN -> CLOSE edge stands for.
func (v View) SegmentOf(e int) (Segment, bool) {
	edge := v.l.edges[e]
	if edge.Kind != SegmentEdge {
		return Segment{}, false
	}
	head := v.l.keys[edge.Head]
	open := v.l.keys[v.l.tails[edge.tailLo]]
	return Segment{Label: head.Label(), Start: open.Position(), Stop: head.Position() + 1}, true
}

// TransitionOf returns the labels either side of a CLOSE -> OPEN edge and
// the event index where the new segment begins.
func (v View) TransitionOf(e int) (from, to, pos int, ok bool) {
	edge := v.l.edges[e]
	if edge.Kind != TransitionEdge {
		return 0, 0, 0, false
	}
	head := v.l.keys[edge.Head]
	closed := v.l.keys[v.l.tails[edge.tailLo]]
	return closed.Label(), head.Label(), head.Position(), true
}

// Segments collects the segments along a path of edge indices, in path
// order.
func (v View) Segments(path []int) []Segment {
	var res []Segment
	for _, e := range path {
		if s, ok := v.SegmentOf(e); ok {
			res = append(res, s)
		}
	}
	return res
}

// Stats counts edges per kind.
type Stats struct {
	Nodes int
	Edges map[EdgeKind]int
}

func (v View) Stats() Stats {
	st := Stats{Nodes: v.nodes, Edges: make(map[EdgeKind]int)}
	for e := 0; e < v.NumEdges(); e++ {
		st.Edges[v.l.edges[e].Kind]++
	}
	return st
}
