package feature

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jsphweid/chordseg/chord"
)

// Quantizer maps a value in [0,1] to an ordered bin name.
type Quantizer struct {
	Bins int
}

func (q Quantizer) Bin(v float64) string {
	switch {
	case math.IsNaN(v) || v <= 0:
		return "none"
	case v >= 1:
		return "all"
	default:
		return strconv.Itoa(int(v * float64(q.Bins)))
	}
}

// Template is one parametrized segment predicate.
type Template struct {
	Predicate Predicate
	// Degree picks the chord tone for Share and Present.
	Degree chord.Degree
	Mode   Weighting
	// Exclude drops notes judged non-chord tones before evaluating.
	Exclude bool
}

type predicateShape struct {
	degrees []chord.Degree
	modes   []Weighting
	exclude []bool
}

var (
	allModes   = []Weighting{Unweighted, AccentWeighted, DurationWeighted}
	bothNCT    = []bool{false, true}
	inclOnly   = []bool{false}
	toneDegree = []chord.Degree{chord.Root, chord.Third, chord.Fifth, chord.Seventh, chord.Added}
	spanWide   = []chord.Degree{chord.NoDegree}
)

// Present and Coverage only look at chord tones, which excluding non-chord
// tones never removes, so they have no excl variant.
var segmentPredicates = map[Predicate]predicateShape{
	Purity:      {spanWide, allModes, bothNCT},
	Share:       {toneDegree, allModes, bothNCT},
	Present:     {toneDegree, []Weighting{Unweighted}, inclOnly},
	Coverage:    {spanWide, []Weighting{Unweighted}, inclOnly},
	Bass:        {spanWide, allModes, bothNCT},
	OnsetAccent: {spanWide, []Weighting{AccentWeighted}, inclOnly},
	Inversion:   {spanWide, allModes, bothNCT},
}

// Templates enumerates the segment templates of the enabled predicates.
func Templates(opts Options) []Template {
	var res []Template
	for _, p := range AllPredicates() {
		shape, ok := segmentPredicates[p]
		if !ok || !opts.enabled(p) {
			continue
		}
		for _, d := range shape.degrees {
			for _, m := range shape.modes {
				for _, ex := range shape.exclude {
					res = append(res, Template{Predicate: p, Degree: d, Mode: m, Exclude: ex})
				}
			}
		}
	}
	return res
}

// applies gates degree templates on the label having that tone. The
// third of a suspended chord is a second or a fourth, and a power chord
// has no inversion to check.
func (t Template) applies(ch chord.Chord) bool {
	if t.Predicate == Inversion {
		return ch.Family() != chord.PowerChord
	}
	if t.Degree == chord.NoDegree {
		return true
	}
	if _, ok := ch.PitchOf(t.Degree); !ok {
		return false
	}
	return t.Degree != chord.Third || ch.Family() != chord.SuspendedTriad
}

func (t Template) eval(tl tally, q Quantizer) string {
	switch t.Predicate {
	case Purity:
		return q.Bin(tl.chordWeight(t.Mode) / tl.total(t.Mode))
	case Share:
		pc, _ := tl.ch.PitchOf(t.Degree)
		return q.Bin(tl.pitchWeight(t.Mode, pc) / tl.total(t.Mode))
	case Present:
		pc, _ := tl.ch.PitchOf(t.Degree)
		if tl.sounds(pc) {
			return "yes"
		}
		return "no"
	case Coverage:
		tones := tl.ch.Tones()
		hit := 0
		for _, tone := range tones {
			if tl.sounds((tl.ch.Root + tone.Interval) % 12) {
				hit++
			}
		}
		return q.Bin(float64(hit) / float64(len(tones)))
	case Bass:
		pc := tl.bass(t.Mode)
		if pc < 0 {
			return "empty"
		}
		d, _ := tl.ch.Degree(pc)
		return d.String()
	case OnsetAccent:
		return q.Bin(tl.c.events[tl.c.start].Accent)
	case Inversion:
		pc := tl.bass(t.Mode)
		switch {
		case pc < 0:
			return "empty"
		case pc == tl.ch.Bass():
			return "yes"
		default:
			return "no"
		}
	}
	return ""
}

// name renders the feature name for a value under a label quality.
func (t Template) name(value, quality string) string {
	nct := "incl"
	if t.Exclude {
		nct = "excl"
	}
	deg := ""
	if t.Degree != chord.NoDegree {
		deg = t.Degree.String()
	}
	return fmt.Sprintf("%s[%s,%s]%s=%s|%s", t.Predicate, t.Mode, nct, deg, value, quality)
}

// qualityTag is the label part features are conjoined with.
func qualityTag(ch chord.Chord) string {
	if ch.Added >= 0 {
		return ch.Quality.Name() + "+add"
	}
	return ch.Quality.Name()
}
