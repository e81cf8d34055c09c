package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/chordseg/constants"
	"github.com/jsphweid/chordseg/live"
	"github.com/jsphweid/chordseg/train"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

var (
	inPort   int
	window   int
	quietFor time.Duration
)

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().IntVar(&inPort, "port", 0, "MIDI input port number")
	listenCmd.Flags().IntVar(&window, "window", 24, "segment at most this many recent events")
	listenCmd.Flags().DurationVar(&quietFor, "quiet", 300*time.Millisecond, "segment after no input for this long")
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Segments live MIDI input",
	Long: `Listens on a MIDI input port and prints the chord segmentation of
the most recent events each time the player pauses.`,
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(listen())
	},
}

func listen() error {
	saved, err := train.LoadSaved(constants.GetModelPath())
	if err != nil {
		return err
	}
	d, err := saved.NewDecoder()
	if err != nil {
		return err
	}
	if max := d.Config().MaxLength; window > max {
		window = max
	}

	defer gomidi.CloseDriver()
	in, err := gomidi.InPort(inPort)
	if err != nil {
		return fmt.Errorf("no MIDI input on port %d (have %v): %w", inPort, gomidi.GetInPorts(), err)
	}

	rec := live.NewRecorder(window)
	start := time.Now()
	debounced := debounce.New(quietFor)
	segment := func() {
		song := rec.Song("live", time.Since(start).Seconds())
		if song.Len() == 0 {
			return
		}
		if _, err := d.Decode(song); err != nil {
			log.Errorf("could not segment: %v", err)
			return
		}
		var labels []string
		for _, sp := range song.PredictedSpans {
			labels = append(labels, d.Labels.MustResolve(sp.Label))
		}
		fmt.Println(strings.Join(labels, " | "))
	}

	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		var ch, key, vel uint8
		at := time.Since(start).Seconds()
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			rec.NoteOn(key, vel, at)
		case msg.GetNoteEnd(&ch, &key):
			rec.NoteOff(key, at)
		default:
			return
		}
		debounced(segment)
	})
	if err != nil {
		return err
	}
	defer stop()
	log.Infof("listening on %v, ctrl-c to stop", in)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	<-ctx.Done()
	return nil
}
