package lattice

import (
	"errors"
	"fmt"

	"github.com/jsphweid/chordseg/model"
	"golang.org/x/exp/slices"
)

var (
	ErrBadConfig      = errors.New("lattice: max length and max segment length must be positive")
	ErrNoLabels       = errors.New("lattice: empty label set")
	ErrTooManyLabels  = errors.New("lattice: label id does not fit in a node key")
	ErrLength         = errors.New("lattice: instance length outside configured range")
	ErrUnknownLabel   = errors.New("lattice: label not in the configured label set")
	ErrSegmentTooLong = errors.New("lattice: gold segment longer than max segment length")
	ErrNotSubgraph    = errors.New("lattice: gold path is not part of the lattice")
)

// Config fixes the shape of a maximal lattice.
type Config struct {
	// MaxLength is the longest instance, in events, the lattice can serve.
	MaxLength int
	// MaxSegmentLength bounds every segment, in events.
	MaxSegmentLength int
}

func (c Config) Validate() error {
	if c.MaxLength < 1 || c.MaxSegmentLength < 1 {
		return fmt.Errorf("%w: %+v", ErrBadConfig, c)
	}
	return nil
}

// Admits checks that every labeled song fits the configuration. It must
// hold before any gold lattice is compiled.
func (c Config) Admits(songs []*model.Song) error {
	for _, s := range songs {
		if s.Len() > c.MaxLength {
			return fmt.Errorf("%w: song %q has %d events, max %d", ErrLength, s.Title, s.Len(), c.MaxLength)
		}
		for _, sp := range s.Spans {
			if sp.Len() > c.MaxSegmentLength {
				return fmt.Errorf("%w: song %q span [%d,%d) is %d events, max %d",
					ErrSegmentTooLong, s.Title, sp.Start, sp.Stop, sp.Len(), c.MaxSegmentLength)
			}
		}
	}
	return nil
}

// ConfigFor sizes a configuration to a corpus.
func ConfigFor(songs []*model.Song) Config {
	var c Config
	for _, s := range songs {
		if s.Len() > c.MaxLength {
			c.MaxLength = s.Len()
		}
	}
	c.MaxSegmentLength = model.MaxSpanLen(songs)
	return c
}

// EdgeKind names an edge by the rule that produced it.
type EdgeKind uint8

const (
	BeginEdge EdgeKind = iota
	TransitionEdge
	SegmentEdge
	EndEdge
)

func (k EdgeKind) String() string {
	return [...]string{"begin", "transition", "segment", "end"}[k]
}

// Edge derives its Head node from one or more tail nodes. Every rule of
// this lattice yields exactly one tail, but scoring treats tails as a list.
type Edge struct {
	Kind   EdgeKind
	Head   int32
	tailLo int32
	tailHi int32
}

// Lattice holds nodes sorted by key and edges grouped by head node.
type Lattice struct {
	cfg    Config
	labels []int
	// length is the number of events the full lattice covers.
	length int

	keys []Key
	// in[i]..in[i+1] are the incoming edges of node i.
	in    []int32
	edges []Edge
	tails []int32
}

type builder struct {
	l *Lattice
}

func (b builder) node(k Key) int32 {
	b.l.keys = append(b.l.keys, k)
	b.l.in = append(b.l.in, int32(len(b.l.edges)))
	return int32(len(b.l.keys) - 1)
}

func (b builder) edge(kind EdgeKind, head int32, tails ...int32) {
	lo := int32(len(b.l.tails))
	b.l.tails = append(b.l.tails, tails...)
	b.l.edges = append(b.l.edges, Edge{Kind: kind, Head: head, tailLo: lo, tailHi: int32(len(b.l.tails))})
}

func (b builder) done() *Lattice {
	b.l.in = append(b.l.in, int32(len(b.l.edges)))
	return b.l
}

func checkLabels(labels []int) ([]int, error) {
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}
	sorted := slices.Clone(labels)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if sorted[0] < 0 || sorted[len(sorted)-1] >= MaxLabels {
		return nil, ErrTooManyLabels
	}
	return sorted, nil
}

// Build constructs the maximal lattice for cfg over labels. Labels are
// deduplicated and visited in ascending id order.
func Build(cfg Config, labels []int) (*Lattice, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	labels, err := checkLabels(labels)
	if err != nil {
		return nil, err
	}

	nL, m := len(labels), cfg.MaxSegmentLength
	perPos := 2*nL + 1
	l := &Lattice{
		cfg:    cfg,
		labels: labels,
		length: cfg.MaxLength,
		keys:   make([]Key, 0, 1+cfg.MaxLength*perPos),
		in:     make([]int32, 0, 2+cfg.MaxLength*perPos),
	}
	b := builder{l}

	start := b.node(StartKey())
	prevCloses := make([]int32, 0, nL)
	closes := make([]int32, 0, nL)
	// window[li] holds the last m OPEN nodes of labels[li], oldest first
	window := make([][]int32, nL)
	for li := range window {
		window[li] = make([]int32, 0, m)
	}

	for i := 0; i < cfg.MaxLength; i++ {
		for li, label := range labels {
			o := b.node(OpenKey(i, label))
			if i == 0 {
				b.edge(BeginEdge, o, start)
			} else {
				for _, c := range prevCloses {
					b.edge(TransitionEdge, o, c)
				}
			}
			w := window[li]
			if len(w) == m {
				copy(w, w[1:])
				w = w[:m-1]
			}
			window[li] = append(w, o)
		}

		closes = closes[:0]
		for li, label := range labels {
			c := b.node(CloseKey(i, label))
			for _, o := range window[li] {
				b.edge(SegmentEdge, c, o)
			}
			closes = append(closes, c)
		}

		f := b.node(FinishKey(i + 1))
		for _, c := range closes {
			b.edge(EndEdge, f, c)
		}
		prevCloses, closes = closes, prevCloses
	}
	return b.done(), nil
}

func (l *Lattice) Config() Config {
	return l.cfg
}

// Labels returns the sorted label ids of the lattice.
func (l *Lattice) Labels() []int {
	return slices.Clone(l.labels)
}

// HasLabel reports whether label is part of the closed label set.
func (l *Lattice) HasLabel(label int) bool {
	_, ok := slices.BinarySearch(l.labels, label)
	return ok
}

// Len is the number of events the whole lattice covers.
func (l *Lattice) Len() int {
	return l.length
}

// Full is the view of the entire lattice.
func (l *Lattice) Full() View {
	return View{l: l, length: l.length, nodes: len(l.keys)}
}

// Truncate returns the view for an instance of n events: every node up to
// and including FINISH(n).
func (l *Lattice) Truncate(n int) (View, error) {
	if n < 1 || n > l.length {
		return View{}, fmt.Errorf("%w: %d not in [1,%d]", ErrLength, n, l.length)
	}
	idx, ok := slices.BinarySearch(l.keys, FinishKey(n))
	if !ok {
		return View{}, fmt.Errorf("%w: no %v", ErrLength, FinishKey(n))
	}
	return View{l: l, length: n, nodes: idx + 1}, nil
}
