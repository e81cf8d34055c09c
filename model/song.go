package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jsphweid/chordseg/chord"
)

// Pitch is a spelled pitch.
type Pitch struct {
	Letter byte
	// Accidental counts sharps (positive) or flats (negative).
	Accidental int
	Octave     int
}

// Class is the pitch class 0..11.
func (p Pitch) Class() int {
	pc, err := chord.PitchClass(p.Letter, p.Accidental)
	if err != nil {
		return 0
	}
	return pc
}

// MIDI returns the MIDI key number, C4 being 60.
func (p Pitch) MIDI() int {
	base, _ := chord.PitchClass(p.Letter, 0)
	return (p.Octave+1)*12 + base + p.Accidental
}

// FromMIDI spells a MIDI key with sharps.
func FromMIDI(key uint8) Pitch {
	name := chord.PitchClassName(int(key))
	p := Pitch{Letter: name[0], Octave: int(key)/12 - 1}
	if len(name) > 1 {
		p.Accidental = 1
	}
	return p
}

func (p Pitch) String() string {
	acc := ""
	if p.Accidental > 0 {
		acc = strings.Repeat("#", p.Accidental)
	} else if p.Accidental < 0 {
		acc = strings.Repeat("b", -p.Accidental)
	}
	return string(p.Letter) + acc + strconv.Itoa(p.Octave)
}

// ParsePitch reads spellings such as "C4", "F#3" or "Bb-1".
func ParsePitch(s string) (Pitch, error) {
	var p Pitch
	if len(s) < 2 {
		return p, fmt.Errorf("model: bad pitch %q", s)
	}
	p.Letter = s[0]
	i := 1
	for ; i < len(s) && (s[i] == '#' || s[i] == 'b'); i++ {
		if s[i] == '#' {
			p.Accidental++
		} else {
			p.Accidental--
		}
	}
	if _, err := chord.PitchClass(p.Letter, 0); err != nil {
		return p, fmt.Errorf("model: bad pitch %q", s)
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return p, fmt.Errorf("model: bad pitch %q", s)
	}
	p.Octave = octave
	return p, nil
}

func (p Pitch) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pitch) UnmarshalText(b []byte) error {
	parsed, err := ParsePitch(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Note is one sounding note inside an event.
type Note struct {
	Pitch    Pitch   `json:"pitch"`
	Duration float64 `json:"duration"`
	Onset    float64 `json:"onset"`
	Accent   float64 `json:"accent"`
	// FromPrevious marks a note already sounding in the previous event.
	FromPrevious bool `json:"from_previous"`
}

// Event is a maximal time slice with a constant set of sounding notes.
type Event struct {
	Onset    float64 `json:"onset"`
	Duration float64 `json:"duration"`
	Measure  int     `json:"measure"`
	Accent   float64 `json:"accent"`
	Notes    []Note  `json:"notes"`
	// Tick is the start in MIDI ticks for events read from a file.
	Tick int64 `json:"tick,omitempty"`
}

// Offset is the time the event stops.
func (e Event) Offset() float64 {
	return e.Onset + e.Duration
}

// Song is one training or decoding instance.
type Song struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Events   []Event `json:"events"`

	// Spans and Tags are the gold segmentation.
	Spans []Span `json:"spans,omitempty"`
	Tags  []Tag  `json:"-"`

	Predicted      []Tag  `json:"-"`
	PredictedSpans []Span `json:"predicted,omitempty"`
}

// NewSong builds a song with a fresh id and gold tags derived from spans.
func NewSong(title string, events []Event, spans []Span) *Song {
	s := &Song{Title: title, Events: events, Spans: spans}
	s.EnsureID()
	if len(events) > 0 {
		s.Duration = events[len(events)-1].Offset() - events[0].Onset
	}
	if spans != nil {
		SortSpans(s.Spans)
		s.Tags = SpansToTags(s.Spans, len(events))
	}
	return s
}

// EnsureID assigns a random id to songs read without one.
func (s *Song) EnsureID() {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
}

// Len is the number of events.
func (s *Song) Len() int {
	return len(s.Events)
}

// SetPrediction stores decoded tags and the spans derived from them.
func (s *Song) SetPrediction(tags []Tag) {
	s.Predicted = tags
	s.PredictedSpans = TagsToSpans(tags, s.Events)
}
