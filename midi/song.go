package midi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jsphweid/chordseg/chord"
	"github.com/jsphweid/chordseg/model"
	"github.com/jsphweid/chordseg/vocab"
	"gitlab.com/gomidi/midi/v2/smf"
)

// PredictedTrack names the track holding decoded labels. Its markers are
// never read back as gold labels.
const PredictedTrack = "chordseg predicted"

type noteSpan struct {
	key     uint8
	on, off int64
}

type marker struct {
	tick  int64
	label string
}

type timeSig struct {
	tick       int64
	num, denom uint8
}

// meter places ticks in measures. Signature changes are assumed to fall
// on barlines.
type meter struct {
	ticks4th int64
	sigs     []timeSig
}

func (m meter) measureLen(sig timeSig) int64 {
	return m.beatLen(sig) * int64(sig.num)
}

func (m meter) beatLen(sig timeSig) int64 {
	return m.ticks4th * 4 / int64(sig.denom)
}

// check rejects resolutions too coarse to hold a beat of every
// signature, which would otherwise divide by zero in at.
func (m meter) check() error {
	if m.beatLen(timeSig{num: 4, denom: 4}) < 1 {
		return fmt.Errorf("%w: %d ticks per quarter", ErrMeter, m.ticks4th)
	}
	for _, sig := range m.sigs {
		if m.beatLen(sig) < 1 {
			return fmt.Errorf("%w: %d/%d at tick %d with %d ticks per quarter", ErrMeter, sig.num, sig.denom, sig.tick, m.ticks4th)
		}
	}
	return nil
}

// at returns the measure index and metrical accent of tick.
func (m meter) at(tick int64) (int, float64) {
	cur := timeSig{num: 4, denom: 4}
	var start int64
	measure := 0
	for _, sig := range m.sigs {
		if sig.tick > tick {
			break
		}
		measure += int((sig.tick - start) / m.measureLen(cur))
		start, cur = sig.tick, sig
	}
	measure += int((tick - start) / m.measureLen(cur))
	pos := (tick - start) % m.measureLen(cur)
	beat := m.beatLen(cur)
	switch {
	case pos == 0:
		return measure, 1
	case pos%beat == 0:
		return measure, 0.5
	case beat > 1 && pos%(beat/2) == 0:
		return measure, 0.25
	default:
		return measure, 0.125
	}
}

func (r *reader) seconds(tick int64) float64 {
	return float64(r.s.TimeAt(tick)) / 1e6
}

type reader struct {
	s       *smf.SMF
	notes   []noteSpan
	markers []marker
	meter   meter
	title   string
}

func (r *reader) scan() {
	for _, track := range r.s.Tracks {
		var absTicks int64
		var name string
		pressed := make(map[uint8]int64)
		var trackMarkers []marker
		for _, event := range track {
			absTicks += int64(event.Delta)
			msg := event.Message
			var channel, key, velocity, num, denom, cpt, dsqpq uint8
			var text string
			switch {
			case msg.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
				if on, ok := pressed[key]; ok && on < absTicks {
					r.notes = append(r.notes, noteSpan{key: key, on: on, off: absTicks})
				}
				pressed[key] = absTicks
			case msg.GetNoteOff(&channel, &key, &velocity), msg.GetNoteOn(&channel, &key, &velocity):
				if on, ok := pressed[key]; ok {
					if on < absTicks {
						r.notes = append(r.notes, noteSpan{key: key, on: on, off: absTicks})
					}
					delete(pressed, key)
				}
			case msg.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq):
				if num > 0 && denom > 0 {
					r.meter.sigs = append(r.meter.sigs, timeSig{tick: absTicks, num: num, denom: denom})
				}
			case msg.GetMetaMarker(&text):
				trackMarkers = append(trackMarkers, marker{tick: absTicks, label: strings.TrimSpace(text)})
			case msg.GetMetaTrackName(&text):
				name = text
				if r.title == "" && text != PredictedTrack {
					r.title = text
				}
			}
		}
		// notes left hanging end with their track
		for key, on := range pressed {
			if on < absTicks {
				r.notes = append(r.notes, noteSpan{key: key, on: on, off: absTicks})
			}
		}
		if name != PredictedTrack {
			r.markers = append(r.markers, trackMarkers...)
		}
	}
	sort.SliceStable(r.meter.sigs, func(i, j int) bool { return r.meter.sigs[i].tick < r.meter.sigs[j].tick })
	sort.SliceStable(r.markers, func(i, j int) bool { return r.markers[i].tick < r.markers[j].tick })
	sort.Slice(r.notes, func(i, j int) bool {
		if r.notes[i].on != r.notes[j].on {
			return r.notes[i].on < r.notes[j].on
		}
		return r.notes[i].key < r.notes[j].key
	})
}

// ToSong slices a MIDI file into events, one per span of time with a
// constant set of sounding notes. Markers holding chord labels become the
// gold segmentation: each marker opens a span at the first event starting
// at or after it. Events before the first marker take its label.
func ToSong(s *smf.SMF, title string, labels *vocab.Vocabulary) (*model.Song, error) {
	tf, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, ErrTimeFormat
	}
	r := &reader{s: s, meter: meter{ticks4th: int64(tf.Ticks4th())}}
	r.scan()
	if len(r.notes) == 0 {
		return nil, ErrNoNotes
	}
	if err := r.meter.check(); err != nil {
		return nil, err
	}
	if title == "" {
		title = r.title
	}

	bounds := make(map[int64]bool)
	for _, n := range r.notes {
		bounds[n.on] = true
		bounds[n.off] = true
	}
	for _, m := range r.markers {
		bounds[m.tick] = true
	}
	ticks := make([]int64, 0, len(bounds))
	for t := range bounds {
		ticks = append(ticks, t)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })

	var events []model.Event
	prevEnd := int64(-1)
	prevOn := make(map[uint8]int64)
	next := 0
	for k := 0; k+1 < len(ticks); k++ {
		start, end := ticks[k], ticks[k+1]
		var sounding []noteSpan
		for next < len(r.notes) && r.notes[next].on < end {
			next++
		}
		for _, n := range r.notes[:next] {
			if n.on <= start && n.off >= end {
				sounding = append(sounding, n)
			}
		}
		if len(sounding) == 0 {
			continue
		}
		measure, accent := r.meter.at(start)
		ev := model.Event{
			Onset:    r.seconds(start),
			Duration: r.seconds(end) - r.seconds(start),
			Measure:  measure,
			Accent:   accent,
			Tick:     start,
		}
		on := make(map[uint8]int64, len(sounding))
		for _, n := range sounding {
			_, noteAccent := r.meter.at(n.on)
			prev, ok := prevOn[n.key]
			held := ok && prevEnd == start && prev == n.on
			ev.Notes = append(ev.Notes, model.Note{
				Pitch:        model.FromMIDI(n.key),
				Onset:        r.seconds(n.on),
				Duration:     r.seconds(n.off) - r.seconds(n.on),
				Accent:       noteAccent,
				FromPrevious: held,
			})
			on[n.key] = n.on
		}
		events = append(events, ev)
		prevEnd, prevOn = end, on
	}

	song := &model.Song{Title: title, Events: events}
	if len(r.markers) > 0 {
		spans, err := goldSpans(events, r.markers, labels)
		if err != nil {
			return nil, err
		}
		song = model.NewSong(title, events, spans)
	}
	song.EnsureID()
	song.Duration = events[len(events)-1].Offset() - events[0].Onset
	return song, nil
}

func goldSpans(events []model.Event, markers []marker, labels *vocab.Vocabulary) ([]model.Span, error) {
	ids := make([]int, len(markers))
	for i, m := range markers {
		c, err := chord.Parse(m.label)
		if err != nil {
			return nil, fmt.Errorf("%w: %q at tick %d", ErrBadMarker, m.label, m.tick)
		}
		ids[i] = labels.Intern(c.String())
	}

	var spans []model.Span
	cur := 0
	for i, ev := range events {
		opened := false
		for cur+1 < len(markers) && markers[cur+1].tick <= ev.Tick {
			cur++
			opened = true
		}
		if i == 0 || opened {
			spans = append(spans, model.Span{Label: ids[cur], Start: i, Onset: ev.Onset})
		}
		last := &spans[len(spans)-1]
		last.Stop = i + 1
		last.Offset = ev.Offset()
	}
	return spans, nil
}
