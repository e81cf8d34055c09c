package cmd

import (
	"testing"

	"github.com/jsphweid/chordseg/corpus"
	"github.com/jsphweid/chordseg/lattice"
	"github.com/jsphweid/chordseg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func song(title string, events int, spans ...model.Span) *model.Song {
	evs := make([]model.Event, events)
	for i := range evs {
		evs[i] = model.Event{Onset: float64(i), Duration: 1}
	}
	for i := range spans {
		spans[i].Onset = float64(spans[i].Start)
		spans[i].Offset = float64(spans[i].Stop)
	}
	return model.NewSong(title, evs, spans)
}

func testCorpus() *corpus.Corpus {
	return &corpus.Corpus{
		Songs: []*model.Song{
			song("short", 4, model.Span{Start: 0, Stop: 2}, model.Span{Start: 2, Stop: 4}),
			song("long", 6, model.Span{Start: 0, Stop: 5}, model.Span{Start: 5, Stop: 6}),
		},
		Paths: []string{"short.mid", "long.mid"},
	}
}

func TestFitCorpusLongSpanFails(t *testing.T) {
	c := testCorpus()
	_, err := fitCorpus(c, 3, false)
	assert.ErrorIs(t, err, lattice.ErrSegmentTooLong)
	assert.Len(t, c.Songs, 2)
}

func TestFitCorpusDropLong(t *testing.T) {
	assert := assert.New(t)
	c := testCorpus()
	cfg, err := fitCorpus(c, 3, true)
	require.NoError(t, err)
	assert.Equal(lattice.Config{MaxLength: 4, MaxSegmentLength: 3}, cfg)
	require.Len(t, c.Songs, 1)
	assert.Equal("short", c.Songs[0].Title)
	assert.Equal([]string{"short.mid"}, c.Paths)

	_, err = fitCorpus(testCorpus(), 1, true)
	assert.ErrorIs(err, corpus.ErrEmpty)
}

func TestFitCorpusNoCap(t *testing.T) {
	c := testCorpus()
	cfg, err := fitCorpus(c, 0, false)
	require.NoError(t, err)
	assert.Equal(t, lattice.Config{MaxLength: 6, MaxSegmentLength: 5}, cfg)
	assert.Len(t, c.Songs, 2)
}

func TestSoundingKey(t *testing.T) {
	s := song("key", 3)
	keys := [][]uint8{{60, 64}, {67, 72}, {62}}
	for i, ks := range keys {
		for _, k := range ks {
			s.Events[i].Notes = append(s.Events[i].Notes, model.Note{Pitch: model.FromMIDI(k)})
		}
	}
	assert.Equal(t, "0-4-7", soundingKey(s, model.Span{Start: 0, Stop: 2}))
	assert.Equal(t, "2", soundingKey(s, model.Span{Start: 2, Stop: 3}))
}
