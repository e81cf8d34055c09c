package cmd

import (
	"github.com/jsphweid/chordseg/chord"
	"github.com/jsphweid/chordseg/constants"
	"github.com/jsphweid/chordseg/feature"
	"github.com/jsphweid/chordseg/train"
	"github.com/jsphweid/chordseg/util"
	"github.com/jsphweid/chordseg/vocab"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringSliceVar(&featureNames, "features", nil, "feature predicates to enable (default all)")
	extractCmd.Flags().BoolVar(&cheat, "cheat", false, "add song specific features that memorize the gold path")
	extractCmd.Flags().IntVar(&minCount, "min-count", 0, "keep features seen more than this many times")
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extracts training instances",
	Long: `Extracts the features of every lattice edge of every song, keeping
only features counted often enough by the count command, and writes a
training bundle for the learner.`,
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(extract())
	},
}

func extract() error {
	opts, err := parseFeatureOptions(featureNames, cheat, minCount)
	if err != nil {
		return err
	}
	counts, err := feature.LoadCounts(constants.GetCountsPath())
	if err != nil {
		return err
	}
	log.Infof("%d of %d counted features seen more than %d times", counts.Above(minCount), len(counts), minCount)

	c, err := loadCorpus()
	if err != nil {
		return err
	}
	l, err := corpusLattice(c)
	if err != nil {
		return err
	}
	table, err := chord.NewTable(c.Labels.Forms())
	if err != nil {
		return err
	}
	x := feature.NewThresholdedExtractor(opts, table, vocab.New(), counts)
	instances, err := train.Build(c.Songs, l, x, util.Workers(workers))
	if err != nil {
		return err
	}

	bundle := train.Bundle{
		Config:    l.Config(),
		Labels:    c.Labels.Forms(),
		Options:   opts,
		Counts:    counts,
		Features:  x.Vocabulary().Forms(),
		Instances: instances,
	}
	if err := util.EnsureOutputDir(); err != nil {
		return err
	}
	path := constants.GetInstancesPath()
	if err := util.CreateBinary(path, bundle); err != nil {
		return err
	}
	log.Infof("wrote %d instances to %v", len(instances), path)
	return nil
}
