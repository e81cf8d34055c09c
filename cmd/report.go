package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reportTop int

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().IntVar(&reportTop, "top", 25, "labels to list")
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Creates a corpus report",
	Long:  `Summarizes the annotated corpus under MEDIA_PATH.`,
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(report())
	},
}

func report() error {
	c, err := loadCorpus()
	if err != nil {
		return err
	}
	st := c.Stats()
	fmt.Printf("songs: %v\n", st.Songs)
	fmt.Printf("skipped files: %v\n", len(c.Skipped))
	fmt.Printf("events: %v\n", st.Events)
	fmt.Printf("gold spans: %v\n", st.Spans)
	fmt.Printf("longest gold span: %v events\n", st.LongestSpan)
	fmt.Printf("duration: %.1f s\n", st.Duration)
	if st.Spans > 0 {
		fmt.Printf("events per span: %.2f\n", float64(st.Events)/float64(st.Spans))
	}

	top := st.TopLabels()
	fmt.Printf("labels: %v\n", len(top))
	if len(top) > reportTop {
		top = top[:reportTop]
	}
	for _, label := range top {
		n := st.Histogram[label]
		fmt.Printf("  %-12v %6d  %5.2f%%\n", label, n, 100*float64(n)/float64(st.Spans))
	}
	return nil
}
