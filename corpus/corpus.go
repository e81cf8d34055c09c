// Package corpus loads annotated MIDI collections.
package corpus

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jsphweid/chordseg/db"
	"github.com/jsphweid/chordseg/midi"
	"github.com/jsphweid/chordseg/model"
	"github.com/jsphweid/chordseg/util"
	"github.com/jsphweid/chordseg/vocab"
	"github.com/labstack/gommon/log"
)

var ErrEmpty = errors.New("corpus: no usable songs")

type Corpus struct {
	Songs []*model.Song
	// Paths[i] is the file Songs[i] was read from.
	Paths  []string
	Labels *vocab.Vocabulary
	// Skipped maps unusable files to the reason.
	Skipped map[string]error
}

type Options struct {
	MaxFiles int
	Workers  int
	// RequireGold skips files without chord markers.
	RequireGold bool
}

// LoadDir reads every MIDI file under dir. Files that fail to parse or
// validate are skipped and logged. Label ids are assigned in file order
// so that they do not depend on scheduling.
func LoadDir(dir string, opts Options) (*Corpus, error) {
	paths, err := util.GatherAllMidiPaths(dir, opts.MaxFiles)
	if err != nil {
		return nil, err
	}
	return Load(paths, opts)
}

func Load(paths []string, opts Options) (*Corpus, error) {
	scratch := vocab.New()
	songs := make([]*model.Song, len(paths))
	var (
		mu      sync.Mutex
		skipped = make(map[string]error)
	)
	// per file failures are recorded, never returned, so the pool error
	// is always nil
	_ = util.ForEach(len(paths), opts.Workers, "Loading", func(i int) error {
		song, err := midi.ReadSong(paths[i], scratch)
		if err == nil && (opts.RequireGold || len(song.Spans) > 0) {
			err = model.Validate(song)
		}
		if err != nil {
			log.Warnf("skipping %v: %v", paths[i], err)
			mu.Lock()
			skipped[paths[i]] = err
			mu.Unlock()
			return nil
		}
		songs[i] = song
		return nil
	})

	c := &Corpus{Labels: vocab.New(), Skipped: skipped}
	for i, song := range songs {
		if song == nil {
			continue
		}
		relabel(song, scratch, c.Labels)
		c.Songs = append(c.Songs, song)
		c.Paths = append(c.Paths, paths[i])
	}
	if len(c.Songs) == 0 {
		return nil, fmt.Errorf("%w: %d files, %d skipped", ErrEmpty, len(paths), len(skipped))
	}
	log.Infof("loaded %d songs with %d labels, skipped %d files", len(c.Songs), c.Labels.Len(), len(skipped))
	return c, nil
}

func relabel(song *model.Song, from, to *vocab.Vocabulary) {
	for i := range song.Spans {
		song.Spans[i].Label = to.Intern(from.MustResolve(song.Spans[i].Label))
	}
	if song.Spans != nil {
		song.Tags = model.SpansToTags(song.Spans, song.Len())
	}
}

// ApplyMetadata fills in titles from the metadata store, keyed by file
// name.
func (c *Corpus) ApplyMetadata(store *db.Store) error {
	keys := make([]string, len(c.Paths))
	for i, p := range c.Paths {
		keys[i] = filepath.Base(p)
	}
	metas, err := store.GetMidiMetadatas(keys)
	if err != nil {
		return err
	}
	for i, key := range keys {
		if m, ok := metas[key]; ok && m.Title != "" {
			c.Songs[i].Title = m.Title
		}
	}
	log.Infof("found metadata for %d of %d songs", len(metas), len(keys))
	return nil
}

// Stats summarizes a corpus.
type Stats struct {
	Songs       int
	Events      int
	Spans       int
	LongestSpan int
	Duration    float64
	// Histogram counts spans per label form.
	Histogram map[string]int
}

func (c *Corpus) Stats() Stats {
	st := Stats{Songs: len(c.Songs), Histogram: make(map[string]int)}
	for _, s := range c.Songs {
		st.Events += s.Len()
		st.Spans += len(s.Spans)
		st.Duration += s.Duration
		for _, sp := range s.Spans {
			st.Histogram[c.Labels.MustResolve(sp.Label)]++
		}
	}
	st.LongestSpan = model.MaxSpanLen(c.Songs)
	return st
}

// TopLabels returns label forms by descending span count.
func (st Stats) TopLabels() []string {
	res := util.GetKeys(st.Histogram)
	sort.SliceStable(res, func(i, j int) bool {
		return st.Histogram[res[i]] > st.Histogram[res[j]]
	})
	return res
}
