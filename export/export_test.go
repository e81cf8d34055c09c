package export

import (
	"bytes"
	"testing"

	"github.com/jsphweid/chordseg/midi"
	"github.com/jsphweid/chordseg/model"
	"github.com/jsphweid/chordseg/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

func event(onset float64, notes ...model.Note) model.Event {
	return model.Event{Onset: onset, Duration: 1, Notes: notes}
}

func note(key uint8, held bool) model.Note {
	return model.Note{Pitch: model.FromMIDI(key), FromPrevious: held}
}

func reread(t *testing.T, s *smf.SMF) *smf.SMF {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s))
	res, err := smf.ReadFrom(&buf)
	require.NoError(t, err)
	return res
}

func progression() *model.Song {
	events := []model.Event{
		event(0, note(60, false), note(64, false), note(67, false)),
		event(1, note(60, true), note(65, false), note(69, false)),
		event(2, note(59, false), note(62, false), note(67, false)),
		event(4, note(60, false), note(64, false)),
	}
	return model.NewSong("progression", events, []model.Span{
		{Label: 0, Start: 0, Stop: 1},
		{Label: 1, Start: 1, Stop: 2},
		{Label: 2, Start: 2, Stop: 4},
	})
}

func TestRenderRoundTrip(t *testing.T) {
	assert := assert.New(t)
	forms := []string{"C:maj", "F:maj", "G:maj"}
	song := progression()

	s, err := Render(song, vocab.FromForms(forms))
	require.NoError(t, err)

	labels := vocab.New()
	back, err := midi.ToSong(reread(t, s), "", labels)
	require.NoError(t, err)
	assert.Equal("progression", back.Title)
	assert.Equal(forms, labels.Forms())
	require.Len(t, back.Events, 4)
	for i, ev := range back.Events {
		orig := song.Events[i]
		assert.InDelta(orig.Onset, ev.Onset, 1e-9)
		assert.InDelta(orig.Duration, ev.Duration, 1e-9)
		require.Len(t, ev.Notes, len(orig.Notes))
	}
	assert.True(back.Events[1].Notes[0].FromPrevious)
	assert.False(back.Events[3].Notes[0].FromPrevious)
	assert.Equal(song.Tags, back.Tags)
}

func TestAnnotate(t *testing.T) {
	assert := assert.New(t)
	labels := vocab.FromForms([]string{"C:maj", "F:maj", "G:maj"})
	orig := reread(t, mustRender(t, progression(), labels))

	song, err := midi.ToSong(orig, "", labels)
	require.NoError(t, err)
	song.SetPrediction(model.SpansToTags([]model.Span{
		{Label: 0, Start: 0, Stop: 2},
		{Label: 2, Start: 2, Stop: 4},
	}, 4))

	annotated, err := Annotate(orig, song, labels)
	require.NoError(t, err)
	// annotating twice keeps a single prediction track
	annotated, err = Annotate(reread(t, annotated), song, labels)
	require.NoError(t, err)
	annotated = reread(t, annotated)
	require.Len(t, annotated.Tracks, 3)

	var found []string
	for _, track := range annotated.Tracks {
		if trackName(track) != midi.PredictedTrack {
			continue
		}
		for _, evt := range track {
			var text string
			if evt.Message.GetMetaMarker(&text) {
				found = append(found, text)
			}
		}
	}
	assert.Equal([]string{"C:maj", "G:maj"}, found)

	// prediction markers are not read back as gold
	back, err := midi.ToSong(annotated, "", labels)
	require.NoError(t, err)
	assert.Equal(song.Tags, back.Tags)
}

func mustRender(t *testing.T, song *model.Song, labels *vocab.Vocabulary) *smf.SMF {
	s, err := Render(song, labels)
	require.NoError(t, err)
	return s
}

func TestRenderUnknownLabel(t *testing.T) {
	_, err := Render(progression(), vocab.FromForms([]string{"C:maj"}))
	assert.ErrorIs(t, err, vocab.ErrNotFound)
}
