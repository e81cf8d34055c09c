package export

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/jsphweid/chordseg/midi"
	"github.com/jsphweid/chordseg/model"
	"github.com/jsphweid/chordseg/vocab"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Rendered files run at 60 bpm, so one second is one quarter note.
const ticksPerSecond = 480

type timed struct {
	tick int64
	off  bool
	msg  []byte
}

func toTrack(name string, msgs []timed) smf.Track {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].off && !msgs[j].off
	})
	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(name))
	var last int64
	for _, m := range msgs {
		track.Add(uint32(m.tick-last), m.msg)
		last = m.tick
	}
	track.Close(0)
	return track
}

func markers(spans []model.Span, labels *vocab.Vocabulary, tickOf func(sp model.Span) int64) ([]timed, error) {
	var res []timed
	for _, sp := range spans {
		form, err := labels.Resolve(sp.Label)
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", sp.Label, err)
		}
		res = append(res, timed{tick: tickOf(sp), msg: smf.MetaMarker(form)})
	}
	return res, nil
}

// Annotate copies mf and adds a track of markers at the predicted spans
// of song, which must have been read from mf. A previous prediction
// track is replaced.
func Annotate(mf *smf.SMF, song *model.Song, labels *vocab.Vocabulary) (*smf.SMF, error) {
	res := smf.NewSMF1()
	res.TimeFormat = mf.TimeFormat
	for _, track := range mf.Tracks {
		if trackName(track) == midi.PredictedTrack {
			continue
		}
		if err := res.Add(track); err != nil {
			return nil, err
		}
	}

	msgs, err := markers(song.PredictedSpans, labels, func(sp model.Span) int64 {
		return song.Events[sp.Start].Tick
	})
	if err != nil {
		return nil, err
	}
	if err := res.Add(toTrack(midi.PredictedTrack, msgs)); err != nil {
		return nil, err
	}
	return res, nil
}

func trackName(track smf.Track) string {
	for _, evt := range track {
		var name string
		if evt.Message.GetMetaTrackName(&name) {
			return name
		}
	}
	return ""
}

func secondsToTick(sec float64) int64 {
	return int64(math.Round(sec * ticksPerSecond))
}

// Render writes song as a new two track file: a conductor track with the
// gold spans as markers, and a note track.
func Render(song *model.Song, labels *vocab.Vocabulary) (*smf.SMF, error) {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(ticksPerSecond)

	conductor := []timed{
		{msg: smf.MetaTempo(60)},
		{msg: smf.MetaTimeSig(4, 4, 24, 8)},
	}
	gold, err := markers(song.Spans, labels, func(sp model.Span) int64 {
		return secondsToTick(song.Events[sp.Start].Onset)
	})
	if err != nil {
		return nil, err
	}
	if err := s.Add(toTrack(song.Title, append(conductor, gold...))); err != nil {
		return nil, err
	}

	var notes []timed
	active := make(map[uint8]bool)
	var prevOff int64
	release := func(key uint8, at int64) {
		notes = append(notes, timed{tick: at, off: true, msg: gomidi.NoteOff(0, key)})
		delete(active, key)
	}
	for _, ev := range song.Events {
		start := secondsToTick(ev.Onset)
		held := make(map[uint8]bool)
		for _, n := range ev.Notes {
			if n.FromPrevious && prevOff == start {
				held[uint8(n.Pitch.MIDI())] = true
			}
		}
		for _, key := range sortedKeys(active) {
			if !held[key] {
				release(key, prevOff)
			}
		}
		for _, n := range ev.Notes {
			key := uint8(n.Pitch.MIDI())
			if active[key] {
				continue
			}
			notes = append(notes, timed{tick: start, msg: gomidi.NoteOn(0, key, 100)})
			active[key] = true
		}
		prevOff = secondsToTick(ev.Offset())
	}
	for _, key := range sortedKeys(active) {
		release(key, prevOff)
	}
	if err := s.Add(toTrack("notes", notes)); err != nil {
		return nil, err
	}
	return s, nil
}

func sortedKeys(m map[uint8]bool) []uint8 {
	keys := make([]uint8, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Write renders mf to w.
func Write(w io.Writer, mf *smf.SMF) error {
	_, err := mf.WriteTo(w)
	return err
}
