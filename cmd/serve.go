package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jsphweid/chordseg/constants"
	"github.com/jsphweid/chordseg/decode"
	"github.com/jsphweid/chordseg/export"
	"github.com/jsphweid/chordseg/model"
	"github.com/jsphweid/chordseg/train"
	"github.com/labstack/gommon/log"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

// maxBody bounds a segment request.
const maxBody = 8 << 20

var (
	addr    string
	decoder *train.Decoder
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the model over HTTP",
	Long: `Serves the model at MODEL_PATH. POST /segment takes a JSON song
and answers with its predicted chord spans; POST /segment/midi answers
with a MIDI file of the song carrying its chords as markers; GET /labels
lists the labels the model knows.`,
	Run: func(cmd *cobra.Command, args []string) {
		cobra.CheckErr(serve())
	},
}

// LoadServeFiles loads the model the handlers decode with.
func LoadServeFiles() error {
	saved, err := train.LoadSaved(constants.GetModelPath())
	if err != nil {
		return fmt.Errorf("could not load model: %w", err)
	}
	d, err := saved.NewDecoder()
	if err != nil {
		return err
	}
	decoder = d
	log.Infof("loaded model with %d labels, max length %d", d.Labels.Len(), d.Config().MaxLength)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("could not write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

var errNoEvents = errors.New("request has no events")

// segmentRequest decodes the song in the request body, answering the
// request itself when it fails.
func segmentRequest(w http.ResponseWriter, r *http.Request) (*model.Song, decode.Result, bool) {
	reqBody, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, decode.Result{}, false
	}
	var input model.SegmentRequestBody
	if err := json.Unmarshal(reqBody, &input); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("could not unmarshal request body: %w", err))
		return nil, decode.Result{}, false
	}
	if len(input.Events) == 0 {
		writeError(w, http.StatusBadRequest, errNoEvents)
		return nil, decode.Result{}, false
	}

	song := model.NewSong(input.Title, input.Events, nil)
	res, err := decoder.Decode(song)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return nil, decode.Result{}, false
	}
	log.Debugf("segmented %q: %d events, %d spans", song.Title, song.Len(), len(song.PredictedSpans))
	return song, res, true
}

func HandleSegment(w http.ResponseWriter, r *http.Request) {
	song, res, ok := segmentRequest(w, r)
	if !ok {
		return
	}
	out := model.SegmentResponse{
		ID:    song.ID,
		Score: res.Score,
		Spans: make([]model.LabeledSpan, 0, len(song.PredictedSpans)),
		Tags:  decoder.TagForms(song.Predicted),
	}
	for _, sp := range song.PredictedSpans {
		out.Spans = append(out.Spans, model.LabeledSpan{
			Label:  decoder.Labels.MustResolve(sp.Label),
			Onset:  sp.Onset,
			Offset: sp.Offset,
			Start:  sp.Start,
			Stop:   sp.Stop,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleSegmentMIDI answers with the song rendered as a MIDI file, its
// predicted chords as markers.
func HandleSegmentMIDI(w http.ResponseWriter, r *http.Request) {
	song, _, ok := segmentRequest(w, r)
	if !ok {
		return
	}
	rendered := model.NewSong(song.Title, song.Events, song.PredictedSpans)
	mf, err := export.Render(rendered, decoder.Labels)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.WriteHeader(http.StatusOK)
	if err := export.Write(w, mf); err != nil {
		log.Errorf("could not write response: %v", err)
	}
}

func HandleLabels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, decoder.Labels.Forms())
}

// NewRouter routes the segment API. LoadServeFiles must have been called.
func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/segment", HandleSegment).Methods(http.MethodPost)
	router.HandleFunc("/segment/midi", HandleSegmentMIDI).Methods(http.MethodPost)
	router.HandleFunc("/labels", HandleLabels).Methods(http.MethodGet)
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}

func serve() error {
	if err := LoadServeFiles(); err != nil {
		return err
	}
	log.Infof("listening on %v", addr)
	return http.ListenAndServe(addr, NewRouter())
}
