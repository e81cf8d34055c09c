package feature

import (
	"fmt"
	"strconv"

	"github.com/jsphweid/chordseg/chord"
	"github.com/jsphweid/chordseg/lattice"
	"github.com/jsphweid/chordseg/model"
	"github.com/jsphweid/chordseg/vocab"
)

// Extractor maps lattice edges to feature ids.
//
// RawExtractor interns every feature it computes and serves the counting
// pass. ThresholdedExtractor only admits features whose gold count
// exceeds a minimum and serves everything else.
type Extractor interface {
	Segment(song *model.Song, start, stop, label int) []int
	Transition(song *model.Song, pos, from, to int) []int
	Vocabulary() *vocab.Vocabulary

	base() *namer
	ids(names []string) []int
}

// namer computes feature names for one label table and option set.
type namer struct {
	opts      Options
	table     *chord.Table
	templates []Template
	quant     Quantizer
}

func newNamer(opts Options, table *chord.Table) *namer {
	bins := opts.Bins
	if bins < 1 {
		bins = DefaultOptions().Bins
	}
	return &namer{opts: opts, table: table, templates: Templates(opts), quant: Quantizer{Bins: bins}}
}

func (n *namer) segment(song *model.Song, c *spanContent, label int) []string {
	if n.opts.Cheat {
		return []string{fmt.Sprintf("cheat:%s:%d:%d:%d", song.ID, c.start, c.stop, label)}
	}
	ch := n.table.Get(label)
	quality := qualityTag(ch)
	res := make([]string, 0, len(n.templates))
	for _, t := range n.templates {
		if !t.applies(ch) {
			continue
		}
		tl := tally{ch: ch, exclude: t.Exclude, c: c}
		res = append(res, t.name(t.eval(tl, n.quant), quality))
	}
	return res
}

func (n *namer) transition(song *model.Song, pos, from, to int) []string {
	if n.opts.Cheat {
		return []string{fmt.Sprintf("cheat:%s:%d:%d>%d", song.ID, pos, from, to)}
	}
	a, b := n.table.Get(from), n.table.Get(to)
	var res []string
	if n.opts.enabled(Bigram) {
		res = append(res, "bigram="+qualityTag(a)+">"+qualityTag(b))
	}
	if n.opts.enabled(RootInterval) {
		res = append(res, "rootint="+strconv.Itoa(chord.RootInterval(a, b))+":"+qualityTag(a)+">"+qualityTag(b))
	}
	return res
}

func checkLabel(table *chord.Table, labels ...int) {
	for _, l := range labels {
		if l < 0 || l >= table.Len() {
			panic(fmt.Sprintf("feature: label %d outside table of %d", l, table.Len()))
		}
	}
}

// RawExtractor interns every feature it computes.
type RawExtractor struct {
	n     *namer
	vocab *vocab.Vocabulary
}

func NewRawExtractor(opts Options, table *chord.Table, features *vocab.Vocabulary) *RawExtractor {
	return &RawExtractor{n: newNamer(opts, table), vocab: features}
}

func (x *RawExtractor) Segment(song *model.Song, start, stop, label int) []int {
	checkLabel(x.n.table, label)
	return x.ids(x.n.segment(song, collect(song.Events, start, stop), label))
}

func (x *RawExtractor) Transition(song *model.Song, pos, from, to int) []int {
	checkLabel(x.n.table, from, to)
	return x.ids(x.n.transition(song, pos, from, to))
}

func (x *RawExtractor) Vocabulary() *vocab.Vocabulary { return x.vocab }

func (x *RawExtractor) base() *namer { return x.n }

func (x *RawExtractor) ids(names []string) []int {
	res := make([]int, len(names))
	for i, name := range names {
		res[i] = x.vocab.Intern(name)
	}
	return res
}

// ThresholdedExtractor keeps only features counted more than a minimum
// number of times.
type ThresholdedExtractor struct {
	n      *namer
	vocab  *vocab.Vocabulary
	counts Counts
	min    int
}

// NewThresholdedExtractor admits the features whose count exceeds
// opts.MinCount.
func NewThresholdedExtractor(opts Options, table *chord.Table, features *vocab.Vocabulary, counts Counts) *ThresholdedExtractor {
	return &ThresholdedExtractor{n: newNamer(opts, table), vocab: features, counts: counts, min: opts.MinCount}
}

func (x *ThresholdedExtractor) Segment(song *model.Song, start, stop, label int) []int {
	checkLabel(x.n.table, label)
	return x.ids(x.n.segment(song, collect(song.Events, start, stop), label))
}

func (x *ThresholdedExtractor) Transition(song *model.Song, pos, from, to int) []int {
	checkLabel(x.n.table, from, to)
	return x.ids(x.n.transition(song, pos, from, to))
}

func (x *ThresholdedExtractor) Vocabulary() *vocab.Vocabulary { return x.vocab }

// Admits reports whether a feature name passes the threshold.
func (x *ThresholdedExtractor) Admits(name string) bool {
	return x.counts[name] > x.min
}

func (x *ThresholdedExtractor) base() *namer { return x.n }

func (x *ThresholdedExtractor) ids(names []string) []int {
	res := make([]int, 0, len(names))
	for _, name := range names {
		if x.Admits(name) {
			res = append(res, x.vocab.Intern(name))
		}
	}
	return res
}

// EdgeFeatures computes the feature ids of every edge of v. Begin and End
// edges carry no features. Span contents are shared by all labels of one
// event range.
func EdgeFeatures(v lattice.View, song *model.Song, x Extractor) [][]int {
	n := x.base()
	res := make([][]int, v.NumEdges())
	spans := make(map[[2]int]*spanContent)
	for e := range res {
		if seg, ok := v.SegmentOf(e); ok {
			checkLabel(n.table, seg.Label)
			key := [2]int{seg.Start, seg.Stop}
			c, ok := spans[key]
			if !ok {
				c = collect(song.Events, seg.Start, seg.Stop)
				spans[key] = c
			}
			res[e] = x.ids(n.segment(song, c, seg.Label))
			continue
		}
		if from, to, pos, ok := v.TransitionOf(e); ok {
			checkLabel(n.table, from, to)
			res[e] = x.ids(n.transition(song, pos, from, to))
		}
	}
	return res
}
