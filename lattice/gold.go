package lattice

import (
	"fmt"

	"github.com/jsphweid/chordseg/model"
)

// Gold compiles the single path lattice that reproduces a boundary
// encoded gold tag sequence. It uses the same key scheme as l, so every
// gold edge names an edge of l.Truncate(len(tags)).
func (l *Lattice) Gold(tags []model.Tag) (*Lattice, error) {
	n := len(tags)
	if n < 1 || n > l.length {
		return nil, fmt.Errorf("%w: %d not in [1,%d]", ErrLength, n, l.length)
	}
	spans := model.TagsToSpans(tags, nil)
	for _, sp := range spans {
		if !l.HasLabel(sp.Label) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownLabel, sp.Label)
		}
		if sp.Len() > l.cfg.MaxSegmentLength {
			return nil, fmt.Errorf("%w: [%d,%d) is %d events, max %d",
				ErrSegmentTooLong, sp.Start, sp.Stop, sp.Len(), l.cfg.MaxSegmentLength)
		}
	}

	g := &Lattice{cfg: l.cfg, labels: l.labels, length: n}
	b := builder{g}
	prev := b.node(StartKey())
	for k, sp := range spans {
		o := b.node(OpenKey(sp.Start, sp.Label))
		if k == 0 {
			b.edge(BeginEdge, o, prev)
		} else {
			b.edge(TransitionEdge, o, prev)
		}
		c := b.node(CloseKey(sp.Stop-1, sp.Label))
		b.edge(SegmentEdge, c, o)
		prev = c
	}
	f := b.node(FinishKey(n))
	b.edge(EndEdge, f, prev)
	return b.done(), nil
}

// Align maps every edge of gold, in order, to the identical edge of v.
func Align(gold *Lattice, v View) ([]int, error) {
	g := gold.Full()
	res := make([]int, g.NumEdges())
	for e := range res {
		edge := g.Edge(e)
		tails := g.Tails(e)
		tailKeys := make([]Key, len(tails))
		for i, t := range tails {
			tailKeys[i] = g.Key(int(t))
		}
		idx, ok := v.FindEdge(g.Key(int(edge.Head)), tailKeys...)
		if !ok {
			return nil, fmt.Errorf("%w: edge %v -> %v", ErrNotSubgraph, tailKeys, g.Key(int(edge.Head)))
		}
		res[e] = idx
	}
	return res, nil
}

// IsSubgraph reports whether every node and edge of gold exists in v.
func IsSubgraph(gold *Lattice, v View) bool {
	g := gold.Full()
	for i := 0; i < g.NumNodes(); i++ {
		if _, ok := v.Find(g.Key(i)); !ok {
			return false
		}
	}
	_, err := Align(gold, v)
	return err == nil
}
