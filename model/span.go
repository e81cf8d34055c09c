package model

import (
	"math"
	"sort"
)

// Span is a labeled half-open range [Start, Stop) of event indices.
type Span struct {
	Label  int     `json:"label"`
	Onset  float64 `json:"onset"`
	Offset float64 `json:"offset"`
	Start  int     `json:"start"`
	Stop   int     `json:"stop"`
}

func (s Span) Len() int {
	return s.Stop - s.Start
}

// Less orders spans by onset, then offset, then label.
func (s Span) Less(o Span) bool {
	if s.Onset != o.Onset {
		return s.Onset < o.Onset
	}
	if s.Offset != o.Offset {
		return s.Offset < o.Offset
	}
	return s.Label < o.Label
}

// Same compares label and range, and times up to a small tolerance.
func (s Span) Same(o Span) bool {
	const eps = 1e-9
	return s.Label == o.Label && s.Start == o.Start && s.Stop == o.Stop &&
		math.Abs(s.Onset-o.Onset) < eps && math.Abs(s.Offset-o.Offset) < eps
}

func SortSpans(spans []Span) {
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Less(spans[j])
	})
}

// Tag is the boundary encoding of one event: Begin marks the first event
// of a segment.
type Tag struct {
	Begin bool
	Label int
}

// Form renders the tag as "B-<label>" or "I-<label>".
func (t Tag) Form(label string) string {
	if t.Begin {
		return "B-" + label
	}
	return "I-" + label
}

// SpansToTags encodes spans covering n events.
func SpansToTags(spans []Span, n int) []Tag {
	tags := make([]Tag, n)
	for _, s := range spans {
		for i := s.Start; i < s.Stop && i < n; i++ {
			tags[i] = Tag{Begin: i == s.Start, Label: s.Label}
		}
	}
	return tags
}

// TagsToSpans decodes tags back to spans. An inside tag whose label
// differs from the running segment also opens a new segment. Times are
// taken from events when they line up with tags.
func TagsToSpans(tags []Tag, events []Event) []Span {
	var spans []Span
	for i, t := range tags {
		if i == 0 || t.Begin || t.Label != tags[i-1].Label {
			spans = append(spans, Span{Label: t.Label, Start: i})
		}
		spans[len(spans)-1].Stop = i + 1
	}
	if len(events) == len(tags) {
		for i := range spans {
			spans[i].Onset = events[spans[i].Start].Onset
			spans[i].Offset = events[spans[i].Stop-1].Offset()
		}
	}
	return spans
}
