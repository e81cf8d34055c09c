package util

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatherAllMidiPaths(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	for _, name := range []string{"b.mid", "a.MIDI", "sub/c.mid", "notes.txt", "d.mid.bak"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	paths, err := GatherAllMidiPaths(dir, 0)
	require.NoError(t, err)
	assert.Equal([]string{
		filepath.Join(dir, "a.MIDI"),
		filepath.Join(dir, "b.mid"),
		filepath.Join(dir, "sub", "c.mid"),
	}, paths)

	paths, err = GatherAllMidiPaths(dir, 2)
	require.NoError(t, err)
	assert.Len(paths, 2)

	_, err = GatherAllMidiPaths(filepath.Join(dir, "missing"), 0)
	assert.Error(err)
}

func TestBinaryRoundTrip(t *testing.T) {
	type payload struct {
		Names  []string
		Counts map[string]int
	}
	path := filepath.Join(t.TempDir(), "p.gob")
	in := payload{Names: []string{"x", "y"}, Counts: map[string]int{"x": 3}}
	require.NoError(t, CreateBinary(path, in))
	out, err := ReadBinary[payload](path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = ReadBinary[payload](filepath.Join(t.TempDir(), "missing.gob"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGetKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, GetKeys(map[string]bool{"c": true, "a": false, "b": true}))
	assert.Empty(t, GetKeys(map[int]int{}))
}

func TestForEach(t *testing.T) {
	assert := assert.New(t)
	for _, workers := range []int{1, 3, 16} {
		var sum atomic.Int64
		boom := errors.New("boom")
		err := ForEach(10, workers, "", func(i int) error {
			sum.Add(int64(i))
			if i%4 == 0 {
				return boom
			}
			return nil
		})
		assert.Equal(int64(45), sum.Load())
		assert.ErrorIs(err, boom)
		assert.Contains(err.Error(), "item 8")
	}
	assert.NoError(ForEach(0, 2, "", func(int) error { panic("not called") }))
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 3, Workers(3))
	assert.GreaterOrEqual(t, Workers(0), 1)
	assert.Equal(t, 7, Max(7, 2))
}
