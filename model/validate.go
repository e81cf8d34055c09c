package model

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
)

var (
	ErrNoEvents    = errors.New("model: song has no events")
	ErrEventOrder  = errors.New("model: events out of time order")
	ErrEmptySpan   = errors.New("model: empty span")
	ErrSpanRange   = errors.New("model: span outside event range")
	ErrSpanGap     = errors.New("model: spans leave events unlabeled")
	ErrSpanOverlap = errors.New("model: spans overlap")
	ErrTagMismatch = errors.New("model: tags disagree with spans")
	ErrNoGoldSpans = errors.New("model: song has no gold spans")
)

// Validate checks that a labeled song can be compiled: events in time
// order and gold spans tiling [0, N) exactly. Every problem found is
// reported.
func Validate(s *Song) error {
	var result *multierror.Error
	n := len(s.Events)
	if n == 0 {
		return multierror.Append(result, ErrNoEvents)
	}
	for i := 1; i < n; i++ {
		if s.Events[i].Onset < s.Events[i-1].Onset {
			result = multierror.Append(result, fmt.Errorf("%w: event %d", ErrEventOrder, i))
		}
	}
	if len(s.Spans) == 0 {
		result = multierror.Append(result, ErrNoGoldSpans)
		return result.ErrorOrNil()
	}

	spans := make([]Span, len(s.Spans))
	copy(spans, s.Spans)
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Start < spans[j].Start
	})
	next := 0
	for _, sp := range spans {
		switch {
		case sp.Stop <= sp.Start:
			result = multierror.Append(result, fmt.Errorf("%w: [%d,%d)", ErrEmptySpan, sp.Start, sp.Stop))
			continue
		case sp.Start < 0 || sp.Stop > n:
			result = multierror.Append(result, fmt.Errorf("%w: [%d,%d) of %d", ErrSpanRange, sp.Start, sp.Stop, n))
			continue
		case sp.Start > next:
			result = multierror.Append(result, fmt.Errorf("%w: [%d,%d)", ErrSpanGap, next, sp.Start))
		case sp.Start < next:
			result = multierror.Append(result, fmt.Errorf("%w: at %d", ErrSpanOverlap, sp.Start))
		}
		if sp.Stop > next {
			next = sp.Stop
		}
	}
	if next < n {
		result = multierror.Append(result, fmt.Errorf("%w: [%d,%d)", ErrSpanGap, next, n))
	}

	if s.Tags != nil && result.ErrorOrNil() == nil {
		if !sameRanges(TagsToSpans(s.Tags, nil), spans) {
			result = multierror.Append(result, ErrTagMismatch)
		}
	}
	return result.ErrorOrNil()
}

func sameRanges(a, b []Span) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Label != b[i].Label || a[i].Start != b[i].Start || a[i].Stop != b[i].Stop {
			return false
		}
	}
	return true
}

// MaxSpanLen is the longest gold span, in events, over songs.
func MaxSpanLen(songs []*Song) int {
	longest := 0
	for _, s := range songs {
		for _, sp := range s.Spans {
			if sp.Len() > longest {
				longest = sp.Len()
			}
		}
	}
	return longest
}
