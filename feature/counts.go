package feature

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/jsphweid/chordseg/lattice"
	"github.com/jsphweid/chordseg/model"
	"github.com/jsphweid/chordseg/util"
	"github.com/labstack/gommon/log"
)

var (
	ErrCorruptCounts = errors.New("feature: corrupt counts file")
	ErrMissingCounts = errors.New("feature: counts file missing")
)

// Counts maps feature names to how often they fire on gold paths.
type Counts map[string]int

// Write stores one "name<TAB>count" line per feature, sorted by name.
func (c Counts) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, name := range util.GetKeys(c) {
		if strings.ContainsAny(name, "\t\n") {
			return fmt.Errorf("feature name %q cannot be stored", name)
		}
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", name, c[name]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func ReadCounts(r io.Reader) (Counts, error) {
	c := make(Counts)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		name, value, ok := strings.Cut(text, "\t")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: line %d has no count", ErrCorruptCounts, line)
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: line %d: bad count %q", ErrCorruptCounts, line, value)
		}
		if _, dup := c[name]; dup {
			return nil, fmt.Errorf("%w: line %d repeats %q", ErrCorruptCounts, line, name)
		}
		c[name] = n
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCounts, err)
	}
	return c, nil
}

func (c Counts) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.Write(f)
}

func LoadCounts(path string) (Counts, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", ErrMissingCounts, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCounts(f)
}

// Above returns how many features pass a threshold.
func (c Counts) Above(min int) int {
	n := 0
	for _, v := range c {
		if v > min {
			n++
		}
	}
	return n
}

// CountGold is the counting pass: it extracts the features of every gold
// lattice edge and tallies them. Songs are processed on workers sharing
// the extractor's vocabulary.
func CountGold(songs []*model.Song, l *lattice.Lattice, x *RawExtractor, workers int) (Counts, error) {
	var (
		mu    sync.Mutex
		byID  = make(map[int]int)
		edges int
	)
	err := util.ForEach(len(songs), workers, "Counting", func(i int) error {
		song := songs[i]
		gold, err := l.Gold(song.Tags)
		if err != nil {
			return fmt.Errorf("%v: %w", song.Title, err)
		}
		fv := EdgeFeatures(gold.Full(), song, x)
		local := make(map[int]int)
		for _, ids := range fv {
			for _, id := range ids {
				local[id]++
			}
		}
		mu.Lock()
		defer mu.Unlock()
		for id, n := range local {
			byID[id] += n
		}
		edges += len(fv)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c := make(Counts, len(byID))
	for id, n := range byID {
		c[x.vocab.MustResolve(id)] = n
	}
	log.Infof("counted %d features over %d gold edges", len(c), edges)
	return c, nil
}
