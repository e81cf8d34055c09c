package cmd

import (
	"fmt"
	"math"
	"sort"

	"github.com/jsphweid/chordseg/constants"
	"github.com/jsphweid/chordseg/lattice"
	"github.com/jsphweid/chordseg/train"
	"github.com/jsphweid/chordseg/util"
	"github.com/spf13/cobra"
)

var (
	inspectLength int
	inspectLabels int
	inspectModel  bool
	inspectTop    int
)

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectLength, "length", 16, "instance length in events")
	inspectCmd.Flags().IntVar(&inspectLabels, "labels", 24, "number of labels")
	inspectCmd.Flags().BoolVar(&inspectModel, "model", false, "describe the model at MODEL_PATH instead")
	inspectCmd.Flags().IntVar(&inspectTop, "top", 20, "heaviest weights to list with --model")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspects a lattice or a model",
	Long: `Prints node and edge counts of the lattice for an instance length,
label count and max segment length, or with --model the shape and the
heaviest weights of the saved model.`,
	Run: func(cmd *cobra.Command, args []string) {
		if inspectModel {
			cobra.CheckErr(inspectSaved())
			return
		}
		cobra.CheckErr(inspectLattice())
	},
}

func inspectLattice() error {
	seg := maxSegment
	if seg == 0 {
		seg = constants.DefaultMaxSegment
	}
	labels := make([]int, inspectLabels)
	for i := range labels {
		labels[i] = i
	}
	l, err := lattice.Build(lattice.Config{MaxLength: inspectLength, MaxSegmentLength: seg}, labels)
	if err != nil {
		return err
	}
	printStats(l.Full())
	for _, n := range []int{1, inspectLength / 2} {
		if n < 1 || n == inspectLength {
			continue
		}
		v, err := l.Truncate(n)
		if err != nil {
			return err
		}
		fmt.Printf("prefix of %d events:\n", n)
		printStats(v)
	}
	return nil
}

func printStats(v lattice.View) {
	st := v.Stats()
	fmt.Printf("  nodes: %v\n", st.Nodes)
	fmt.Printf("  edges: %v\n", v.NumEdges())
	for _, kind := range []lattice.EdgeKind{lattice.BeginEdge, lattice.TransitionEdge, lattice.SegmentEdge, lattice.EndEdge} {
		fmt.Printf("    %-10v %v\n", kind, st.Edges[kind])
	}
}

func inspectSaved() error {
	saved, err := train.LoadSaved(constants.GetModelPath())
	if err != nil {
		return err
	}
	fmt.Printf("config: %+v\n", saved.Config)
	fmt.Printf("labels (%d): %v\n", len(saved.Labels), saved.Labels)
	fmt.Printf("predicates: %v\n", saved.Options.Enabled)
	fmt.Printf("bins: %v, min count: %v, cheat: %v\n", saved.Options.Bins, saved.Options.MinCount, saved.Options.Cheat)
	fmt.Printf("counted features: %v, weights: %v\n", len(saved.Counts), len(saved.Weights))

	names := util.GetKeys(saved.Weights)
	sort.SliceStable(names, func(i, j int) bool {
		return math.Abs(saved.Weights[names[i]]) > math.Abs(saved.Weights[names[j]])
	})
	if len(names) > inspectTop {
		names = names[:inspectTop]
	}
	for _, name := range names {
		fmt.Printf("  %+8.4f  %v\n", saved.Weights[name], name)
	}
	return nil
}
