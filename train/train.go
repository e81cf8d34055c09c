// Package train prepares training instances for an external weight
// learner and persists the learned model.
package train

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jsphweid/chordseg/feature"
	"github.com/jsphweid/chordseg/lattice"
	"github.com/jsphweid/chordseg/model"
	"github.com/jsphweid/chordseg/util"
	"github.com/jsphweid/chordseg/vocab"
	"github.com/labstack/gommon/log"
)

var ErrNoSongs = errors.New("train: no songs")

// Instance is one song as the learner sees it: the feature ids of every
// edge of its lattice view and the edges of its gold path.
type Instance struct {
	ID       string
	Title    string
	Length   int
	Features [][]int
	Gold     []int
}

// Trainer learns feature weights from instances. numFeatures bounds the
// feature ids seen in them.
type Trainer interface {
	Train(ctx context.Context, instances []Instance, numFeatures int) (model.Weights, error)
}

// Build validates every song and turns it into an Instance on a pool of
// workers sharing the extractor's vocabulary.
func Build(songs []*model.Song, l *lattice.Lattice, x feature.Extractor, workers int) ([]Instance, error) {
	if len(songs) == 0 {
		return nil, ErrNoSongs
	}
	res := make([]Instance, len(songs))
	err := util.ForEach(len(songs), workers, "Extracting", func(i int) error {
		inst, err := instance(songs[i], l, x)
		if err != nil {
			return fmt.Errorf("%v: %w", songs[i].Title, err)
		}
		res[i] = inst
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Infof("built %d instances over %d features", len(res), x.Vocabulary().Len())
	return res, nil
}

func instance(song *model.Song, l *lattice.Lattice, x feature.Extractor) (Instance, error) {
	if err := model.Validate(song); err != nil {
		return Instance{}, err
	}
	v, err := l.Truncate(song.Len())
	if err != nil {
		return Instance{}, err
	}
	gold, err := l.Gold(song.Tags)
	if err != nil {
		return Instance{}, err
	}
	path, err := lattice.Align(gold, v)
	if err != nil {
		return Instance{}, err
	}
	return Instance{
		ID:       song.ID,
		Title:    song.Title,
		Length:   song.Len(),
		Features: feature.EdgeFeatures(v, song, x),
		Gold:     path,
	}, nil
}

// Bundle is what the extract command hands to the learner. Features[i]
// names feature id i.
type Bundle struct {
	Config    lattice.Config
	Labels    []string
	Options   feature.Options
	Counts    feature.Counts
	Features  []string
	Instances []Instance
}

// IDWeights names weights keyed by feature id, as a learner reading the
// instances without the feature names writes them.
func (b *Bundle) IDWeights(raw map[string]float64) (map[string]float64, error) {
	w := make(model.Weights, len(raw))
	for key, v := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: feature id %q", ErrCorruptWeights, key)
		}
		w[id] = v
	}
	return NameWeights(w, vocab.FromForms(b.Features))
}

// Model pairs the bundle's configuration with learned weights.
func (b *Bundle) Model(weights map[string]float64) *Saved {
	return &Saved{
		Config:  b.Config,
		Labels:  b.Labels,
		Options: b.Options,
		Counts:  b.Counts,
		Weights: weights,
	}
}
