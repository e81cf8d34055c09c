package feature

import (
	"github.com/jsphweid/chordseg/chord"
	"github.com/jsphweid/chordseg/model"
)

type spanNote struct {
	pc    int
	key   int
	event int
	w     [numModes]float64
	// ornamental notes look like suspensions, anticipations or passing
	// tones; they count as non-chord tones whenever the label disagrees
	ornamental bool
}

// spanContent is the label independent view of events [start, stop).
type spanContent struct {
	events  []model.Event
	start   int
	stop    int
	notes   []spanNote
	byEvent [][]int
}

func collect(events []model.Event, start, stop int) *spanContent {
	c := &spanContent{events: events, start: start, stop: stop, byEvent: make([][]int, stop-start)}
	for k := start; k < stop; k++ {
		ev := events[k]
		for _, n := range ev.Notes {
			// a held note counts once, where the span first hears it
			fresh := !n.FromPrevious || k == start
			sn := spanNote{pc: n.Pitch.Class(), key: n.Pitch.MIDI(), event: k}
			if fresh {
				sn.w[Unweighted] = 1
				switch {
				case n.FromPrevious || n.Accent == 0:
					sn.w[AccentWeighted] = ev.Accent
				default:
					sn.w[AccentWeighted] = n.Accent
				}
			}
			sn.w[DurationWeighted] = ev.Duration
			sn.ornamental = c.ornamental(k, n)
			c.byEvent[k-start] = append(c.byEvent[k-start], len(c.notes))
			c.notes = append(c.notes, sn)
		}
	}
	return c
}

func keysOf(ev model.Event) []int {
	keys := make([]int, len(ev.Notes))
	for i, n := range ev.Notes {
		keys[i] = n.Pitch.MIDI()
	}
	return keys
}

func stepFrom(keys []int, key int) bool {
	for _, k := range keys {
		d := k - key
		if d < 0 {
			d = -d
		}
		if d == 1 || d == 2 {
			return true
		}
	}
	return false
}

// ornamental looks one event outside the span on either side.
func (c *spanContent) ornamental(k int, n model.Note) bool {
	key := n.Pitch.MIDI()
	var prev, next []int
	if k > 0 {
		prev = keysOf(c.events[k-1])
	}
	if k+1 < len(c.events) && k+1 <= c.stop {
		next = keysOf(c.events[k+1])
	}

	// passing or neighbor tone: approached and left by step
	if !n.FromPrevious && stepFrom(prev, key) && stepFrom(next, key) {
		return true
	}

	// suspension: held or repeated into the span, resolving down by step
	if k == c.start && (n.FromPrevious || contains(prev, key)) {
		for later := k + 1; later < c.stop; later++ {
			for _, lk := range keysOf(c.events[later]) {
				if key-lk == 1 || key-lk == 2 {
					return true
				}
			}
		}
	}

	// anticipation: the last event sounds the next span's note early
	if k == c.stop-1 && !n.FromPrevious && next != nil && k+1 == c.stop {
		for _, nk := range next {
			if nk%12 == key%12 {
				return true
			}
		}
	}
	return false
}

func contains(keys []int, key int) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// tally holds the label dependent sums a template needs.
type tally struct {
	ch      chord.Chord
	exclude bool
	c       *spanContent
}

func (t tally) counted(n spanNote) bool {
	if !t.exclude || !n.ornamental {
		return true
	}
	_, chordTone := t.ch.Degree(n.pc)
	return chordTone
}

func (t tally) total(mode Weighting) float64 {
	var sum float64
	for _, n := range t.c.notes {
		if t.counted(n) {
			sum += n.w[mode]
		}
	}
	return sum
}

func (t tally) chordWeight(mode Weighting) float64 {
	pcs := t.ch.PitchClasses()
	var sum float64
	for _, n := range t.c.notes {
		if t.counted(n) && pcs.Has(n.pc) {
			sum += n.w[mode]
		}
	}
	return sum
}

func (t tally) pitchWeight(mode Weighting, pc int) float64 {
	var sum float64
	for _, n := range t.c.notes {
		if t.counted(n) && n.pc == pc {
			sum += n.w[mode]
		}
	}
	return sum
}

func (t tally) sounds(pc int) bool {
	for _, n := range t.c.notes {
		if t.counted(n) && n.pc == pc && n.w[Unweighted] > 0 {
			return true
		}
	}
	return false
}

func eventWeight(ev model.Event, mode Weighting) float64 {
	switch mode {
	case AccentWeighted:
		return ev.Accent
	case DurationWeighted:
		return ev.Duration
	default:
		return 1
	}
}

// bass returns the pitch class that is lowest for the most weight, or
// -1 when nothing counted sounds.
func (t tally) bass(mode Weighting) int {
	var weight [12]float64
	seen := false
	for k, idxs := range t.c.byEvent {
		lowest := -1
		for _, i := range idxs {
			n := t.c.notes[i]
			if !t.counted(n) {
				continue
			}
			if lowest < 0 || n.key < t.c.notes[lowest].key {
				lowest = i
			}
		}
		if lowest >= 0 {
			weight[t.c.notes[lowest].pc] += eventWeight(t.c.events[t.c.start+k], mode)
			seen = true
		}
	}
	if !seen {
		return -1
	}
	best := 0
	for pc := 1; pc < 12; pc++ {
		if weight[pc] > weight[best] {
			best = pc
		}
	}
	return best
}
