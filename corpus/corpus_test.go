package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/chordseg/db"
	"github.com/jsphweid/chordseg/export"
	"github.com/jsphweid/chordseg/midi"
	"github.com/jsphweid/chordseg/model"
	"github.com/jsphweid/chordseg/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chordEvent(onset float64, keys ...uint8) model.Event {
	e := model.Event{Onset: onset, Duration: 1}
	for _, k := range keys {
		e.Notes = append(e.Notes, model.Note{Pitch: model.FromMIDI(k)})
	}
	return e
}

func writeSong(t *testing.T, path string, forms []string, spans []model.Span) {
	events := []model.Event{chordEvent(0, 60, 64, 67), chordEvent(1, 57, 60, 64), chordEvent(2, 55, 59, 62)}
	s, err := export.Render(model.NewSong("song", events, spans), vocab.FromForms(forms))
	require.NoError(t, err)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, export.Write(f, s))
}

func fixture(t *testing.T) string {
	dir := t.TempDir()
	// b is read before c, so G:maj gets id 1 and A:min id 2
	writeSong(t, filepath.Join(dir, "b.mid"), []string{"C:maj", "G:maj"},
		[]model.Span{{Label: 0, Start: 0, Stop: 2}, {Label: 1, Start: 2, Stop: 3}})
	writeSong(t, filepath.Join(dir, "c.mid"), []string{"A:min", "C:maj"},
		[]model.Span{{Label: 0, Start: 0, Stop: 1}, {Label: 1, Start: 1, Stop: 3}})
	writeSong(t, filepath.Join(dir, "d.mid"), []string{"C:maj"}, nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mid"), []byte("junk"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	return dir
}

func TestLoadDir(t *testing.T) {
	assert := assert.New(t)
	dir := fixture(t)

	for _, workers := range []int{1, 4} {
		c, err := LoadDir(dir, Options{Workers: workers, RequireGold: true})
		require.NoError(t, err)
		require.Len(t, c.Songs, 2)
		assert.Equal([]string{"C:maj", "G:maj", "A:min"}, c.Labels.Forms())
		assert.Equal(filepath.Join(dir, "b.mid"), c.Paths[0])
		assert.Len(c.Skipped, 2)
		assert.ErrorIs(c.Skipped[filepath.Join(dir, "a.mid")], midi.ErrParse)
		assert.ErrorIs(c.Skipped[filepath.Join(dir, "d.mid")], model.ErrNoGoldSpans)

		second := c.Songs[1]
		assert.Equal([]int{2, 0}, []int{second.Spans[0].Label, second.Spans[1].Label})
		assert.Equal(model.Tag{Begin: true, Label: 0}, second.Tags[1])
	}

	c, err := LoadDir(dir, Options{Workers: 2})
	require.NoError(t, err)
	assert.Len(c.Songs, 3)

	c, err = LoadDir(dir, Options{Workers: 2, MaxFiles: 2, RequireGold: true})
	require.NoError(t, err)
	assert.Len(c.Songs, 1)
}

func TestLoadEmpty(t *testing.T) {
	_, err := LoadDir(t.TempDir(), Options{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestStats(t *testing.T) {
	assert := assert.New(t)
	c, err := LoadDir(fixture(t), Options{RequireGold: true})
	require.NoError(t, err)
	st := c.Stats()
	assert.Equal(2, st.Songs)
	assert.Equal(6, st.Events)
	assert.Equal(4, st.Spans)
	assert.Equal(2, st.LongestSpan)
	assert.Equal(map[string]int{"C:maj": 2, "G:maj": 1, "A:min": 1}, st.Histogram)
	assert.Equal("C:maj", st.TopLabels()[0])
	assert.InDelta(6.0, st.Duration, 1e-9)
}

type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
}

func (fakeDynamo) BatchGetItem(in *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
	return &dynamodb.BatchGetItemOutput{Responses: map[string][]map[string]*dynamodb.AttributeValue{
		"songs": {{"PK": {S: aws.String("c.mid")}, "Title": {S: aws.String("Chorale")}}},
	}}, nil
}

func TestApplyMetadata(t *testing.T) {
	c, err := LoadDir(fixture(t), Options{RequireGold: true})
	require.NoError(t, err)
	require.NoError(t, c.ApplyMetadata(db.NewStore(fakeDynamo{}, "songs")))
	assert.Equal(t, "b", c.Songs[0].Title)
	assert.Equal(t, "Chorale", c.Songs[1].Title)
}
