// Package live turns a stream of note on and off messages into events
// that can be segmented while they are played.
package live

import (
	"sync"

	"github.com/jsphweid/chordseg/model"
	"golang.org/x/exp/slices"
)

type held struct {
	onset    float64
	velocity uint8
}

// Recorder keeps the most recent events of a performance. It is safe for
// use from the driver callback and a decoding goroutine at once.
type Recorder struct {
	mu       sync.Mutex
	window   int
	sounding map[uint8]held
	// since is when the sounding set last changed.
	since  float64
	events []model.Event
}

// NewRecorder keeps at most window events.
func NewRecorder(window int) *Recorder {
	if window < 1 {
		window = 1
	}
	return &Recorder{window: window, sounding: make(map[uint8]held)}
}

func (r *Recorder) NoteOn(key, velocity uint8, at float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sounding[key]; ok {
		return
	}
	r.close(at)
	r.sounding[key] = held{onset: at, velocity: velocity}
}

func (r *Recorder) NoteOff(key uint8, at float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sounding[key]; !ok {
		return
	}
	r.close(at)
	delete(r.sounding, key)
}

// Reset forgets everything played so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.sounding = make(map[uint8]held)
}

// close ends the current event at time at. Silence is not an event.
func (r *Recorder) close(at float64) {
	if ev, ok := r.current(at); ok {
		r.events = append(r.events, ev)
		if len(r.events) > r.window {
			r.events = slices.Clone(r.events[len(r.events)-r.window:])
		}
	}
	r.since = at
}

func (r *Recorder) current(at float64) (model.Event, bool) {
	if len(r.sounding) == 0 || at <= r.since {
		return model.Event{}, false
	}
	ev := model.Event{Onset: r.since, Duration: at - r.since}
	var prev *model.Event
	if n := len(r.events); n > 0 && r.events[n-1].Offset() == r.since {
		prev = &r.events[n-1]
	}
	keys := make([]int, 0, len(r.sounding))
	for k := range r.sounding {
		keys = append(keys, int(k))
	}
	slices.Sort(keys)
	for _, k := range keys {
		h := r.sounding[uint8(k)]
		n := model.Note{
			Pitch:    model.FromMIDI(uint8(k)),
			Onset:    h.onset,
			Duration: at - h.onset,
			Accent:   float64(h.velocity) / 127,
		}
		n.FromPrevious = prev != nil && h.onset < r.since && sounds(*prev, n.Pitch.MIDI())
		if !n.FromPrevious && n.Accent > ev.Accent {
			ev.Accent = n.Accent
		}
		ev.Notes = append(ev.Notes, n)
	}
	return ev, true
}

func sounds(ev model.Event, key int) bool {
	for _, n := range ev.Notes {
		if n.Pitch.MIDI() == key {
			return true
		}
	}
	return false
}

// Len is the number of finished events kept.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Song snapshots the kept events, plus the event still sounding at time
// now, as an unlabeled song.
func (r *Recorder) Song(title string, now float64) *model.Song {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := slices.Clone(r.events)
	if ev, ok := r.current(now); ok {
		events = append(events, ev)
	}
	if len(events) > r.window {
		events = events[len(events)-r.window:]
	}
	for i := range events {
		events[i].Notes = slices.Clone(events[i].Notes)
	}
	if len(events) > 0 {
		for i := range events[0].Notes {
			events[0].Notes[i].FromPrevious = false
		}
	}
	return model.NewSong(title, events, nil)
}
