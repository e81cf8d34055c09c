package midi

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jsphweid/chordseg/model"
	"github.com/jsphweid/chordseg/vocab"
	"gitlab.com/gomidi/midi/v2/smf"
)

var (
	ErrRead       = errors.New("midi: could not read file")
	ErrParse      = errors.New("midi: could not parse file")
	ErrTimeFormat = errors.New("midi: only metric time formats are supported")
	ErrNoNotes    = errors.New("midi: no notes")
	ErrBadMarker  = errors.New("midi: marker is not a chord label")
	ErrMeter      = errors.New("midi: time signature finer than the tick resolution")
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// the parser can panic on malformed input
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = fmt.Errorf("%w: %v", ErrParse, r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return res, nil
}

// ReadSong reads a MIDI file into a song titled after the file. Chord
// labels found in marker events are interned into labels. The song id is
// derived from the file name so it is stable across runs.
func ReadSong(path string, labels *vocab.Vocabulary) (*model.Song, error) {
	s, err := ReadMidiFile(path)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	song, err := ToSong(s, title, labels)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	song.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(filepath.Base(path))).String()
	return song, nil
}
