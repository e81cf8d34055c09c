package cmd

import (
	"strings"

	"github.com/jsphweid/chordseg/constants"
	"github.com/jsphweid/chordseg/corpus"
	"github.com/jsphweid/chordseg/db"
	"github.com/jsphweid/chordseg/feature"
	"github.com/jsphweid/chordseg/lattice"
	"github.com/jsphweid/chordseg/model"
	"github.com/jsphweid/chordseg/util"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	workers      int
	maxFiles     int
	maxSegment   int
	withMetadata bool
	dropLong     bool
)

var rootCmd = &cobra.Command{
	Use:   "chordseg",
	Short: "Chord segmentation of symbolic music",
	Long: `chordseg segments MIDI files into labeled chord spans with a
semi-Markov model over a segmentation lattice.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setLogLevel()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	flags.IntVar(&workers, "workers", 0, "worker goroutines (default NumCPU-1)")
	flags.IntVar(&maxFiles, "max-files", 0, "read at most this many files (0 for all)")
	flags.IntVar(&maxSegment, "max-segment", 0, "cap on segment length in events (0 for the corpus maximum)")
	flags.BoolVar(&dropLong, "drop-long", false, "drop songs with a gold span over --max-segment instead of failing")
	flags.BoolVar(&withMetadata, "metadata", false, "look up song titles in the metadata table")
}

func setLogLevel() {
	log.SetHeader("${time_rfc3339} ${level}")
	switch strings.ToLower(constants.GetLogLevel()) {
	case "debug":
		log.SetLevel(log.DEBUG)
	case "warn":
		log.SetLevel(log.WARN)
	case "error":
		log.SetLevel(log.ERROR)
	case "off":
		log.SetLevel(log.OFF)
	default:
		log.SetLevel(log.INFO)
	}
	if verbose {
		log.SetLevel(log.DEBUG)
	}
}

// loadCorpus reads the gold annotated corpus under MEDIA_PATH.
func loadCorpus() (*corpus.Corpus, error) {
	c, err := corpus.LoadDir(constants.GetMediaDir(), corpus.Options{
		MaxFiles:    maxFiles,
		Workers:     util.Workers(workers),
		RequireGold: true,
	})
	if err != nil {
		return nil, err
	}
	if withMetadata {
		store, err := db.Connect()
		if err != nil {
			return nil, err
		}
		if err := c.ApplyMetadata(store); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// corpusLattice sizes the maximal lattice to the corpus.
func corpusLattice(c *corpus.Corpus) (*lattice.Lattice, error) {
	cfg, err := fitCorpus(c, maxSegment, dropLong)
	if err != nil {
		return nil, err
	}
	ids := make([]int, c.Labels.Len())
	for i := range ids {
		ids[i] = i
	}
	log.Infof("lattice: %d events, segments up to %d, %d labels", cfg.MaxLength, cfg.MaxSegmentLength, len(ids))
	return lattice.Build(cfg, ids)
}

// fitCorpus caps the segment length at maxSeg. A gold span longer than
// the cap fails the run unless dropLong, which drops its song instead.
func fitCorpus(c *corpus.Corpus, maxSeg int, dropLong bool) (lattice.Config, error) {
	cfg := lattice.ConfigFor(c.Songs)
	if maxSeg <= 0 || maxSeg >= cfg.MaxSegmentLength {
		return cfg, nil
	}
	cfg.MaxSegmentLength = maxSeg
	if err := cfg.Admits(c.Songs); err == nil || !dropLong {
		return cfg, err
	}
	var songs []*model.Song
	var paths []string
	for i, s := range c.Songs {
		if err := cfg.Admits([]*model.Song{s}); err != nil {
			log.Warnf("dropping %v", err)
			continue
		}
		songs = append(songs, s)
		paths = append(paths, c.Paths[i])
	}
	if len(songs) == 0 {
		return cfg, corpus.ErrEmpty
	}
	c.Songs, c.Paths = songs, paths
	cfg.MaxLength = lattice.ConfigFor(songs).MaxLength
	return cfg, nil
}

// parseFeatureOptions reads the feature flags shared by count and extract.
func parseFeatureOptions(names []string, cheat bool, minCount int) (feature.Options, error) {
	opts := feature.DefaultOptions()
	if len(names) > 0 {
		enabled, err := feature.ParsePredicates(names)
		if err != nil {
			return opts, err
		}
		opts.Enabled = enabled
	}
	opts.Cheat = cheat
	opts.MinCount = minCount
	return opts, nil
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
