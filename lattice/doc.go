// Package lattice builds segmentation lattices: DAGs whose source-to-sink
// paths are exactly the ways of cutting a sequence of L events into
// contiguous labeled segments no longer than M events.
//
// Nodes:
//
//	START        unique source
//	OPEN(i, l)   a segment labeled l begins at event i
//	CLOSE(i, l)  a segment labeled l ends at event i
//	FINISH(n)    the first n events are completely segmented
//
// Edges, named by the node they derive:
//
//	BeginEdge       START          -> OPEN(0, l)
//	TransitionEdge  CLOSE(i-1, l') -> OPEN(i, l)
//	SegmentEdge     OPEN(j, l)     -> CLOSE(i, l),  i-M < j <= i
//	EndEdge         CLOSE(n-1, l)  -> FINISH(n)
//
// Every node is identified by a Key packing (position, kind, label) into
// one uint64. Keys are totally ordered by position, then kind, then label;
// FINISH(n) carries position n-1 so it sorts right after the CLOSE nodes
// it collects. The maximal lattice is built once for a MaxLength and kept
// sorted by key with edges grouped by head node, so the lattice for any
// shorter instance is a prefix of both arrays, found by binary search for
// FINISH(L). Views share the arrays; nothing is copied.
//
// A Lattice is immutable after Build and safe for concurrent readers.
package lattice
