package cmd

import (
	"github.com/jsphweid/chordseg/chord"
	"github.com/jsphweid/chordseg/constants"
	"github.com/jsphweid/chordseg/feature"
	"github.com/jsphweid/chordseg/util"
	"github.com/jsphweid/chordseg/vocab"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

var (
	featureNames []string
	cheat        bool
	minCount     int
)

func init() {
	rootCmd.AddCommand(countCmd)
	countCmd.Flags().StringSliceVar(&featureNames, "features", nil, "feature predicates to enable (default all)")
	countCmd.Flags().BoolVar(&cheat, "cheat", false, "add song specific features that memorize the gold path")
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Counts gold features",
	Long: `Runs the raw extractor over the gold path of every song under
MEDIA_PATH and writes how often each feature fires to COUNTS_PATH.`,
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(count())
	},
}

func count() error {
	opts, err := parseFeatureOptions(featureNames, cheat, 0)
	if err != nil {
		return err
	}
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
	x := feature.NewRawExtractor(opts, table, vocab.New())
	counts, err := feature.CountGold(c.Songs, l, x, util.Workers(workers))
	if err != nil {
		return err
	}
	if err := util.EnsureOutputDir(); err != nil {
		return err
	}
	path := constants.GetCountsPath()
	if err := counts.Save(path); err != nil {
		return err
	}
	log.Infof("wrote %d feature counts to %v", len(counts), path)
	return nil
}
