package cmd

import (
	"github.com/jsphweid/chordseg/constants"
	"github.com/jsphweid/chordseg/train"
	"github.com/jsphweid/chordseg/util"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

var packByID bool

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().BoolVar(&packByID, "by-id", false, "weights are keyed by feature id instead of name")
}

var packCmd = &cobra.Command{
	Use:   "pack <weights.tsv>",
	Short: "Packs learned weights into a model",
	Long: `Combines the training bundle written by extract with the weights
the learner produced ("name<TAB>weight" per line) into the model file at
MODEL_PATH. With --by-id the weights are keyed by the feature ids of the
instances instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(pack(args[0]))
	},
}

func pack(weightsPath string) error {
	bundle, err := util.ReadBinary[train.Bundle](constants.GetInstancesPath())
	if err != nil {
		return err
	}
	weights, err := train.LoadWeights(weightsPath)
	if err != nil {
		return err
	}
	if packByID {
		if weights, err = bundle.IDWeights(weights); err != nil {
			return err
		}
	}
	saved := bundle.Model(weights)
	// fail here rather than at decode time
	if _, err := saved.NewDecoder(); err != nil {
		return err
	}
	path := constants.GetModelPath()
	if err := saved.Save(path); err != nil {
		return err
	}
	log.Infof("wrote model with %d weights over %d labels to %v", len(weights), len(saved.Labels), path)
	return nil
}
