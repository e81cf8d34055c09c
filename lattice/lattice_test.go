package lattice

import (
	"fmt"
	"testing"

	"github.com/jsphweid/chordseg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cMaj = 0
	gMaj = 1
	aMin = 2
)

func tagsOf(spans ...model.Span) []model.Tag {
	n := 0
	for _, s := range spans {
		if s.Stop > n {
			n = s.Stop
		}
	}
	return model.SpansToTags(spans, n)
}

func TestKeyPacking(t *testing.T) {
	assert := assert.New(t)
	k := CloseKey(12, 345)
	assert.Equal(12, k.Position())
	assert.Equal(Close, k.Kind())
	assert.Equal(345, k.Label())
	assert.Equal("CLOSE(12,345)", k.String())
	assert.Equal("FINISH(4)", FinishKey(4).String())
	assert.Equal(3, FinishKey(4).Position())

	// position dominates kind, kind dominates label
	assert.Less(uint64(StartKey()), uint64(OpenKey(0, 0)))
	assert.Less(uint64(OpenKey(3, MaxLabels-1)), uint64(CloseKey(3, 0)))
	assert.Less(uint64(CloseKey(3, MaxLabels-1)), uint64(FinishKey(4)))
	assert.Less(uint64(FinishKey(4)), uint64(OpenKey(4, 0)))
}

func TestBuildShape(t *testing.T) {
	cfg := Config{MaxLength: 5, MaxSegmentLength: 2}
	l, err := Build(cfg, []int{aMin, cMaj, gMaj, cMaj})
	require.NoError(t, err)
	assert.Equal(t, []int{cMaj, gMaj, aMin}, l.Labels())

	v := l.Full()
	nL := 3
	st := v.Stats()
	assert.Equal(t, 1+5*(2*nL+1), st.Nodes)
	assert.Equal(t, nL, st.Edges[BeginEdge])
	assert.Equal(t, 4*nL*nL, st.Edges[TransitionEdge])
	// min(i+1, M) open nodes feed each close
	assert.Equal(t, nL*(1+2+2+2+2), st.Edges[SegmentEdge])
	assert.Equal(t, 5*nL, st.Edges[EndEdge])
}

func TestEdgesAreSortedAndForward(t *testing.T) {
	l, err := Build(Config{MaxLength: 6, MaxSegmentLength: 3}, []int{cMaj, gMaj})
	require.NoError(t, err)
	v := l.Full()
	for i := 1; i < v.NumNodes(); i++ {
		assert.Less(t, uint64(v.Key(i-1)), uint64(v.Key(i)))
	}
	for n := 0; n < v.NumNodes(); n++ {
		lo, hi := v.Incoming(n)
		for e := lo; e < hi; e++ {
			require.Equal(t, int32(n), v.Edge(e).Head)
			for _, tail := range v.Tails(e) {
				assert.Less(t, uint64(v.Key(int(tail))), uint64(v.Key(n)))
			}
		}
	}
}

func TestSegmentLengthBound(t *testing.T) {
	for _, m := range []int{1, 2, 4, 9} {
		t.Run(fmt.Sprintf("M=%d", m), func(t *testing.T) {
			l, err := Build(Config{MaxLength: 8, MaxSegmentLength: m}, []int{cMaj, gMaj})
			require.NoError(t, err)
			v := l.Full()
			longest := 0
			for e := 0; e < v.NumEdges(); e++ {
				if s, ok := v.SegmentOf(e); ok {
					require.LessOrEqual(t, s.Stop-s.Start, m)
					require.Greater(t, s.Stop, s.Start)
					if s.Stop-s.Start > longest {
						longest = s.Stop - s.Start
					}
				}
			}
			expected := m
			if expected > 8 {
				expected = 8
			}
			assert.Equal(t, expected, longest)
		})
	}
}

func TestTruncateMatchesFreshBuild(t *testing.T) {
	labels := []int{cMaj, gMaj, aMin}
	big, err := Build(Config{MaxLength: 7, MaxSegmentLength: 3}, labels)
	require.NoError(t, err)
	for n := 1; n <= 7; n++ {
		v, err := big.Truncate(n)
		require.NoError(t, err)
		small, err := Build(Config{MaxLength: n, MaxSegmentLength: 3}, labels)
		require.NoError(t, err)
		fresh := small.Full()

		require.Equal(t, fresh.NumNodes(), v.NumNodes(), "n=%d", n)
		require.Equal(t, fresh.NumEdges(), v.NumEdges(), "n=%d", n)
		assert.Equal(t, FinishKey(n), v.Key(v.Sink()))
		for e := 0; e < v.NumEdges(); e++ {
			assert.Equal(t, fresh.Key(int(fresh.Edge(e).Head)), v.Key(int(v.Edge(e).Head)))
			assert.Equal(t, fresh.Key(int(fresh.Tails(e)[0])), v.Key(int(v.Tails(e)[0])))
		}
	}

	_, err = big.Truncate(0)
	assert.ErrorIs(t, err, ErrLength)
	_, err = big.Truncate(8)
	assert.ErrorIs(t, err, ErrLength)
}

func TestFourEventScenario(t *testing.T) {
	l, err := Build(Config{MaxLength: 4, MaxSegmentLength: 3}, []int{cMaj, gMaj})
	require.NoError(t, err)
	v, err := l.Truncate(4)
	require.NoError(t, err)

	_, ok := v.FindEdge(CloseKey(1, cMaj), OpenKey(0, cMaj))
	assert.True(t, ok)
	_, ok = v.FindEdge(CloseKey(3, gMaj), OpenKey(2, gMaj))
	assert.True(t, ok)
	_, ok = v.FindEdge(OpenKey(2, gMaj), CloseKey(1, cMaj))
	assert.True(t, ok)
	// [0,4) would be longer than M
	_, ok = v.FindEdge(CloseKey(3, cMaj), OpenKey(0, cMaj))
	assert.False(t, ok)

	gold, err := l.Gold(tagsOf(
		model.Span{Label: cMaj, Start: 0, Stop: 2},
		model.Span{Label: gMaj, Start: 2, Stop: 4},
	))
	require.NoError(t, err)
	g := gold.Full()
	assert.Equal(t, 6, g.NumNodes())
	st := g.Stats()
	assert.Equal(t, 2, st.Edges[SegmentEdge])
	assert.Equal(t, 1, st.Edges[TransitionEdge])
	assert.Equal(t, 1, st.Edges[BeginEdge])
	assert.Equal(t, 1, st.Edges[EndEdge])

	path, err := Align(gold, v)
	require.NoError(t, err)
	assert.Equal(t, []Segment{{cMaj, 0, 2}, {gMaj, 2, 4}}, v.Segments(path))

	from, to, pos, ok := v.TransitionOf(path[2])
	require.True(t, ok)
	assert.Equal(t, []int{cMaj, gMaj, 2}, []int{from, to, pos})
}

// segmentations enumerates every way to cut n events into segments of at
// most m events, labeled from labels.
func segmentations(n, m int, labels []int) [][]model.Span {
	if n == 0 {
		return [][]model.Span{nil}
	}
	var res [][]model.Span
	for size := 1; size <= m && size <= n; size++ {
		for _, rest := range segmentations(n-size, m, labels) {
			for _, label := range labels {
				seg := []model.Span{{Label: label, Start: n - size, Stop: n}}
				res = append(res, append(append([]model.Span{}, rest...), seg...))
			}
		}
	}
	return res
}

func TestGoldIsAlwaysSubgraph(t *testing.T) {
	labels := []int{cMaj, gMaj}
	l, err := Build(Config{MaxLength: 6, MaxSegmentLength: 3}, labels)
	require.NoError(t, err)
	for n := 1; n <= 5; n++ {
		v, err := l.Truncate(n)
		require.NoError(t, err)
		for m := 1; m <= 3; m++ {
			for _, spans := range segmentations(n, m, labels) {
				gold, err := l.Gold(tagsOf(spans...))
				require.NoError(t, err)
				require.True(t, IsSubgraph(gold, v), "n=%d spans=%v", n, spans)
			}
		}
	}
}

func TestGoldErrors(t *testing.T) {
	l, err := Build(Config{MaxLength: 4, MaxSegmentLength: 2}, []int{cMaj, gMaj})
	require.NoError(t, err)

	_, err = l.Gold(tagsOf(model.Span{Label: aMin, Start: 0, Stop: 2}))
	assert.ErrorIs(t, err, ErrUnknownLabel)

	_, err = l.Gold(tagsOf(model.Span{Label: cMaj, Start: 0, Stop: 3}))
	assert.ErrorIs(t, err, ErrSegmentTooLong)

	_, err = l.Gold(make([]model.Tag, 5))
	assert.ErrorIs(t, err, ErrLength)
	_, err = l.Gold(nil)
	assert.ErrorIs(t, err, ErrLength)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(Config{MaxLength: 0, MaxSegmentLength: 1}, []int{0})
	assert.ErrorIs(t, err, ErrBadConfig)
	_, err = Build(Config{MaxLength: 1, MaxSegmentLength: 1}, nil)
	assert.ErrorIs(t, err, ErrNoLabels)
	_, err = Build(Config{MaxLength: 1, MaxSegmentLength: 1}, []int{MaxLabels})
	assert.ErrorIs(t, err, ErrTooManyLabels)
}

func TestConfigForAndAdmits(t *testing.T) {
	events := make([]model.Event, 5)
	a := model.NewSong("a", events, []model.Span{{Start: 0, Stop: 3}, {Start: 3, Stop: 5}})
	b := model.NewSong("b", events[:2], []model.Span{{Start: 0, Stop: 2}})
	cfg := ConfigFor([]*model.Song{a, b})
	assert.Equal(t, Config{MaxLength: 5, MaxSegmentLength: 3}, cfg)
	assert.NoError(t, cfg.Admits([]*model.Song{a, b}))

	tight := Config{MaxLength: 5, MaxSegmentLength: 2}
	assert.ErrorIs(t, tight.Admits([]*model.Song{a}), ErrSegmentTooLong)
	short := Config{MaxLength: 4, MaxSegmentLength: 3}
	assert.ErrorIs(t, short.Admits([]*model.Song{a}), ErrLength)
}
