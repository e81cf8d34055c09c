// Package eval scores predicted segmentations against gold ones.
package eval

import (
	"errors"
	"fmt"

	"github.com/jsphweid/chordseg/model"
)

var (
	ErrNoPrediction   = errors.New("eval: song has no prediction")
	ErrLengthMismatch = errors.New("eval: gold and predicted lengths differ")
)

// Score compares one song. Event accuracy looks at every position: an
// event is correct when its predicted label equals its gold label,
// regardless of where segments begin. Segment counts look at exact
// (label, start, stop) matches.
type Score struct {
	Events        int
	CorrectEvents int
	Duration      float64
	// CorrectDuration sums the durations of correct events.
	CorrectDuration float64

	GoldSegments      int
	PredictedSegments int
	MatchedSegments   int
}

// Song scores the prediction stored on s.
func Song(s *model.Song) (Score, error) {
	if s.Predicted == nil {
		return Score{}, fmt.Errorf("%w: %v", ErrNoPrediction, s.Title)
	}
	return Compare(s.Tags, s.Predicted, s.Events)
}

// Compare scores predicted tags against gold tags. events may be nil, in
// which case durations count one per event.
func Compare(gold, predicted []model.Tag, events []model.Event) (Score, error) {
	if len(gold) != len(predicted) {
		return Score{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(gold), len(predicted))
	}
	if events != nil && len(events) != len(gold) {
		return Score{}, fmt.Errorf("%w: %d tags, %d events", ErrLengthMismatch, len(gold), len(events))
	}

	var sc Score
	for i := range gold {
		d := 1.0
		if events != nil {
			d = events[i].Duration
		}
		sc.Events++
		sc.Duration += d
		if gold[i].Label == predicted[i].Label {
			sc.CorrectEvents++
			sc.CorrectDuration += d
		}
	}

	type seg struct{ label, start, stop int }
	goldSpans := make(map[seg]bool)
	for _, sp := range model.TagsToSpans(gold, nil) {
		goldSpans[seg{sp.Label, sp.Start, sp.Stop}] = true
	}
	predSpans := model.TagsToSpans(predicted, nil)
	sc.GoldSegments = len(goldSpans)
	sc.PredictedSegments = len(predSpans)
	for _, sp := range predSpans {
		if goldSpans[seg{sp.Label, sp.Start, sp.Stop}] {
			sc.MatchedSegments++
		}
	}
	return sc, nil
}

// Add accumulates another score.
func (s *Score) Add(o Score) {
	s.Events += o.Events
	s.CorrectEvents += o.CorrectEvents
	s.Duration += o.Duration
	s.CorrectDuration += o.CorrectDuration
	s.GoldSegments += o.GoldSegments
	s.PredictedSegments += o.PredictedSegments
	s.MatchedSegments += o.MatchedSegments
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Accuracy is the fraction of correctly labeled events.
func (s Score) Accuracy() float64 {
	return ratio(float64(s.CorrectEvents), float64(s.Events))
}

// DurationAccuracy is the fraction of time correctly labeled.
func (s Score) DurationAccuracy() float64 {
	return ratio(s.CorrectDuration, s.Duration)
}

func (s Score) Precision() float64 {
	return ratio(float64(s.MatchedSegments), float64(s.PredictedSegments))
}

func (s Score) Recall() float64 {
	return ratio(float64(s.MatchedSegments), float64(s.GoldSegments))
}

func (s Score) F1() float64 {
	p, r := s.Precision(), s.Recall()
	return ratio(2*p*r, p+r)
}

func (s Score) String() string {
	return fmt.Sprintf("events %d/%d (%.2f%%), time %.2f%%, segments P %.3f R %.3f F1 %.3f",
		s.CorrectEvents, s.Events, 100*s.Accuracy(), 100*s.DurationAccuracy(), s.Precision(), s.Recall(), s.F1())
}

// Corpus scores every song with a prediction and sums the results.
// Songs without one are an error.
func Corpus(songs []*model.Song) (Score, error) {
	var total Score
	for _, s := range songs {
		sc, err := Song(s)
		if err != nil {
			return total, err
		}
		total.Add(sc)
	}
	return total, nil
}
