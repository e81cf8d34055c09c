package feature

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPredicate = errors.New("feature: unknown predicate")

// Predicate is one family of features that can be switched on or off.
type Predicate int

const (
	// Purity is the share of span weight on chord tones.
	Purity Predicate = iota
	// Share is the share of span weight on one chord tone.
	Share
	// Present tells whether one chord tone sounds at all.
	Present
	// Coverage is the fraction of chord tones that sound.
	Coverage
	// Bass is the chord degree of the dominant lowest note.
	Bass
	// OnsetAccent is the metrical accent of the first event.
	OnsetAccent
	// Inversion tells whether the dominant lowest note is the bass the
	// label's inversion calls for.
	Inversion
	// Bigram conjoins the qualities either side of a boundary.
	Bigram
	// RootInterval is the root motion across a boundary.
	RootInterval
)

var predicateNames = map[Predicate]string{
	Purity:       "purity",
	Share:        "share",
	Present:      "present",
	Coverage:     "coverage",
	Bass:         "bass",
	OnsetAccent:  "onset",
	Inversion:    "inversion",
	Bigram:       "bigram",
	RootInterval: "rootint",
}

func (p Predicate) String() string {
	return predicateNames[p]
}

// AllPredicates lists every predicate in table order.
func AllPredicates() []Predicate {
	return []Predicate{Purity, Share, Present, Coverage, Bass, OnsetAccent, Inversion, Bigram, RootInterval}
}

// ParsePredicates reads predicate names, e.g. from a comma separated flag.
func ParsePredicates(names []string) ([]Predicate, error) {
	var res []Predicate
	for _, name := range names {
		name = strings.TrimSpace(name)
		found := false
		for p, n := range predicateNames {
			if n == name {
				res = append(res, p)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPredicate, name)
		}
	}
	return res, nil
}

// Weighting decides how much each note counts.
type Weighting int

const (
	Unweighted Weighting = iota
	AccentWeighted
	DurationWeighted

	numModes = 3
)

func (w Weighting) String() string {
	return [...]string{"cnt", "acc", "dur"}[w]
}

// Options select features for one run. They are persisted with a model.
type Options struct {
	Enabled []Predicate
	// Bins is the number of quantization bins for continuous values.
	Bins int
	// MinCount keeps, outside the counting pass, only features seen more
	// than MinCount times in the gold lattices.
	MinCount int
	// Cheat replaces every feature by one keyed on instance, position and
	// label. Only for checking the pipeline end to end.
	Cheat bool
}

func DefaultOptions() Options {
	return Options{Enabled: AllPredicates(), Bins: 10}
}

func (o Options) enabled(p Predicate) bool {
	for _, e := range o.Enabled {
		if e == p {
			return true
		}
	}
	return false
}
