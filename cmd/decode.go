package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jsphweid/chordseg/chord"
	"github.com/jsphweid/chordseg/constants"
	"github.com/jsphweid/chordseg/eval"
	"github.com/jsphweid/chordseg/export"
	"github.com/jsphweid/chordseg/midi"
	"github.com/jsphweid/chordseg/model"
	"github.com/jsphweid/chordseg/train"
	"github.com/jsphweid/chordseg/util"
	"github.com/jsphweid/chordseg/vocab"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

var annotateDir string

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringVar(&annotateDir, "annotate", "", "write copies of the inputs with predicted chord markers to this directory")
}

var decodeCmd = &cobra.Command{
	Use:   "decode <file or dir>...",
	Short: "Segments MIDI files",
	Long: `Segments MIDI files with the model at MODEL_PATH, prints the
predicted chord spans and, for files with chord markers, the accuracy of
the prediction.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(decodeFiles(args))
	},
}

type decoded struct {
	path  string
	song  *model.Song
	score float64
}

func decodeFiles(args []string) error {
	saved, err := train.LoadSaved(constants.GetModelPath())
	if err != nil {
		return err
	}
	d, err := saved.NewDecoder()
	if err != nil {
		return err
	}

	var paths []string
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			found, err := util.GatherAllMidiPaths(arg, maxFiles)
			if err != nil {
				return err
			}
			paths = append(paths, found...)
			continue
		}
		paths = append(paths, arg)
	}
	if annotateDir != "" {
		if err := os.MkdirAll(annotateDir, 0755); err != nil {
			return err
		}
	}

	results := make([]*decoded, len(paths))
	err = util.ForEach(len(paths), util.Workers(workers), "Decoding", func(i int) error {
		res, err := decodeFile(d, paths[i])
		if err != nil {
			log.Warnf("skipping %v: %v", paths[i], err)
			return nil
		}
		results[i] = res
		return nil
	})
	if err != nil {
		return err
	}

	var scored []*model.Song
	for _, res := range results {
		if res == nil {
			continue
		}
		fmt.Printf("%v (score %.3f)\n", res.path, res.score)
		for _, sp := range res.song.PredictedSpans {
			fmt.Printf("  %8.3f %8.3f  %-12v %v\n", sp.Onset, sp.Offset, d.Labels.MustResolve(sp.Label), soundingKey(res.song, sp))
		}
		if res.song.Tags != nil {
			sc, err := eval.Song(res.song)
			if err != nil {
				return err
			}
			fmt.Printf("  %v\n", sc)
			scored = append(scored, res.song)
		}
	}
	if len(scored) > 1 {
		total, err := eval.Corpus(scored)
		if err != nil {
			return err
		}
		fmt.Printf("total over %d songs: %v\n", len(scored), total)
	}
	return nil
}

func decodeFile(d *train.Decoder, path string) (*decoded, error) {
	mf, err := midi.ReadMidiFile(path)
	if err != nil {
		return nil, err
	}
	labels := vocab.New()
	title := filepath.Base(path)
	song, err := midi.ToSong(mf, title, labels)
	if err != nil {
		return nil, err
	}
	if err := modelGold(d, song, labels); err != nil {
		log.Warnf("not scoring %v: %v", path, err)
		song.Spans, song.Tags = nil, nil
	}
	res, err := d.Decode(song)
	if err != nil {
		return nil, err
	}
	if annotateDir != "" {
		annotated, err := export.Annotate(mf, song, d.Labels)
		if err != nil {
			return nil, err
		}
		f, err := os.Create(filepath.Join(annotateDir, title))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := export.Write(f, annotated); err != nil {
			return nil, err
		}
	}
	return &decoded{path: path, song: song, score: res.Score}, nil
}

// soundingKey lists the pitch classes heard in a span.
func soundingKey(song *model.Song, sp model.Span) string {
	var seen [12]bool
	var pcs []int
	for _, ev := range song.Events[sp.Start:sp.Stop] {
		for _, n := range ev.Notes {
			if pc := n.Pitch.Class(); !seen[pc] {
				seen[pc] = true
				pcs = append(pcs, pc)
			}
		}
	}
	return chord.CreateChordKey(pcs)
}

// modelGold moves gold spans read from a file onto the model's label ids.
func modelGold(d *train.Decoder, song *model.Song, labels *vocab.Vocabulary) error {
	if song.Spans == nil {
		return nil
	}
	ids, err := d.LabelIDs(labels.Forms())
	if err != nil {
		return err
	}
	for i := range song.Spans {
		song.Spans[i].Label = ids[song.Spans[i].Label]
	}
	song.Tags = model.SpansToTags(song.Spans, song.Len())
	return model.Validate(song)
}
