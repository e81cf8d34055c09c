package train

import (
	"errors"
	"fmt"

	"github.com/jsphweid/chordseg/chord"
	"github.com/jsphweid/chordseg/decode"
	"github.com/jsphweid/chordseg/feature"
	"github.com/jsphweid/chordseg/lattice"
	"github.com/jsphweid/chordseg/model"
	"github.com/jsphweid/chordseg/util"
	"github.com/jsphweid/chordseg/vocab"
)

var ErrUnknownLabel = errors.New("train: label not in model")

// Saved is a persisted model. Weights are keyed by feature name since
// ids only hold within one process.
type Saved struct {
	Config  lattice.Config
	Labels  []string
	Options feature.Options
	Counts  feature.Counts
	Weights map[string]float64
}

func (s *Saved) Save(path string) error {
	return util.CreateBinary(path, s)
}

func LoadSaved(path string) (*Saved, error) {
	s, err := util.ReadBinary[Saved](path)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// NameWeights turns id keyed weights into name keyed ones.
func NameWeights(w model.Weights, features *vocab.Vocabulary) (map[string]float64, error) {
	res := make(map[string]float64, len(w))
	for id, v := range w {
		name, err := features.Resolve(id)
		if err != nil {
			return nil, fmt.Errorf("weight for feature %d: %w", id, err)
		}
		res[name] = v
	}
	return res, nil
}

// Decoder is a loaded model ready to segment songs. Labels are closed;
// Features and Tags grow as songs are decoded.
type Decoder struct {
	*vocab.Set
	lattice *lattice.Lattice
	x       *feature.ThresholdedExtractor
	weights model.Weights
}

// NewDecoder builds the maximal lattice once and interns every weighted
// feature so that ids line up with the extractor's.
func (s *Saved) NewDecoder() (*Decoder, error) {
	set := vocab.NewSet()
	set.Labels = vocab.FromForms(s.Labels)
	table, err := chord.NewTable(s.Labels)
	if err != nil {
		return nil, err
	}
	ids := make([]int, set.Labels.Len())
	for i := range ids {
		ids[i] = i
	}
	l, err := lattice.Build(s.Config, ids)
	if err != nil {
		return nil, err
	}
	weights := make(model.Weights, len(s.Weights))
	for _, name := range util.GetKeys(s.Weights) {
		weights[set.Features.Intern(name)] = s.Weights[name]
	}
	return &Decoder{
		Set:     set,
		lattice: l,
		x:       feature.NewThresholdedExtractor(s.Options, table, set.Features, s.Counts),
		weights: weights,
	}, nil
}

func (d *Decoder) Config() lattice.Config {
	return d.lattice.Config()
}

// Decode segments song and stores the prediction on it.
func (d *Decoder) Decode(song *model.Song) (decode.Result, error) {
	v, err := d.lattice.Truncate(song.Len())
	if err != nil {
		return decode.Result{}, err
	}
	fv := feature.EdgeFeatures(v, song, d.x)
	return decode.Decode(v, decode.WeightScorer{Features: fv, Weights: d.weights}, song)
}

// LabelIDs maps label forms of gold spans read from input to model ids.
func (d *Decoder) LabelIDs(forms []string) ([]int, error) {
	res := make([]int, len(forms))
	for i, f := range forms {
		id, ok := d.Labels.Lookup(f)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, f)
		}
		res[i] = id
	}
	return res, nil
}

// TagForms spells out per-event tags such as "B-C:maj" and records them
// in the tag namespace.
func (d *Decoder) TagForms(tags []model.Tag) []string {
	res := make([]string, len(tags))
	for i, t := range tags {
		res[i] = t.Form(d.Labels.MustResolve(t.Label))
		d.Tags.Intern(res[i])
	}
	return res
}
