// Package decode finds the best scoring path through a segmentation
// lattice view.
//
// Nodes are visited in key order, which is a topological order of the
// lattice, so a single forward pass computes
//
//	value(START) = 0
//	value(n)     = max over edges e into n of sum(value(tails(e))) + score(e)
//
// and records the best incoming edge of every node. Ties keep the edge
// built first: for an OPEN node the CLOSE with the smallest label id, for
// a CLOSE node the earliest OPEN, that is the longest segment.
package decode

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jsphweid/chordseg/lattice"
	"github.com/jsphweid/chordseg/model"
)

var ErrLengthMismatch = errors.New("decode: song length differs from view length")

// EdgeScorer weighs the edges of one view.
type EdgeScorer interface {
	Score(e int) float64
}

// ScoreFunc adapts a function to EdgeScorer.
type ScoreFunc func(e int) float64

func (f ScoreFunc) Score(e int) float64 {
	return f(e)
}

// WeightScorer scores edge e as the dot product of its feature ids with
// Weights.
type WeightScorer struct {
	Features [][]int
	Weights  model.Weights
}

func (w WeightScorer) Score(e int) float64 {
	if e >= len(w.Features) {
		return 0
	}
	return w.Weights.Dot(w.Features[e])
}

// Result is a best path: edge indices in forward order and their total
// score.
type Result struct {
	Path  []int
	Score float64
}

// Best runs the forward pass and walks back from the sink. A view without
// a path to its sink breaks the lattice construction invariants and
// panics.
func Best(v lattice.View, s EdgeScorer) Result {
	n := v.NumNodes()
	value := make([]float64, n)
	best := make([]int, n)
	for i := range best {
		best[i] = -1
	}
	value[v.Source()] = 0

	for node := 1; node < n; node++ {
		bestVal := math.Inf(-1)
		lo, hi := v.Incoming(node)
	EdgeLoop:
		for e := lo; e < hi; e++ {
			val := s.Score(e)
			for _, t := range v.Tails(e) {
				if int(t) != v.Source() && best[t] < 0 {
					continue EdgeLoop
				}
				val += value[t]
			}
			if best[node] < 0 || val > bestVal {
				bestVal = val
				best[node] = e
			}
		}
		value[node] = bestVal
	}

	sink := v.Sink()
	if best[sink] < 0 {
		panic(fmt.Sprintf("decode: no path to %v", v.Key(sink)))
	}

	var path []int
	stack := []int{sink}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == v.Source() {
			continue
		}
		e := best[node]
		path = append(path, e)
		for _, t := range v.Tails(e) {
			stack = append(stack, int(t))
		}
	}
	// edges are stored grouped by head in key order, so index order is
	// path order
	sort.Ints(path)
	return Result{Path: path, Score: value[sink]}
}

// Tags expands the segments of a path into one boundary tag per event.
func Tags(v lattice.View, path []int) []model.Tag {
	tags := make([]model.Tag, v.Len())
	for _, seg := range v.Segments(path) {
		for i := seg.Start; i < seg.Stop; i++ {
			tags[i] = model.Tag{Begin: i == seg.Start, Label: seg.Label}
		}
	}
	return tags
}

// Decode finds the best segmentation of song and stores it as the song's
// prediction.
func Decode(v lattice.View, s EdgeScorer, song *model.Song) (Result, error) {
	if song.Len() != v.Len() {
		return Result{}, fmt.Errorf("%w: %d events, view %d", ErrLengthMismatch, song.Len(), v.Len())
	}
	res := Best(v, s)
	song.SetPrediction(Tags(v, res.Path))
	return res, nil
}
