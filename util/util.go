package util

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/chordseg/constants"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

func EnsureOutputDir() error {
	return os.MkdirAll(constants.GetOutDir(), 0777)
}

// GatherAllMidiPaths walks path for .mid/.midi files, at most maxNum of
// them unless maxNum is 0. Paths come back sorted.
func GatherAllMidiPaths(path string, maxNum int) ([]string, error) {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			lower := strings.ToLower(s)
			if strings.HasSuffix(lower, ".mid") || strings.HasSuffix(lower, ".midi") {
				res = append(res, s)
			}
		}
		return nil
	}
	if err := filepath.WalkDir(path, walk); err != nil {
		return nil, fmt.Errorf("walking %v: %w", path, err)
	}
	slices.Sort(res)
	if maxNum > 0 && len(res) > maxNum {
		res = res[:maxNum]
	}
	return res, nil
}

// GetKeys returns the keys of m in ascending order.
func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func CreateBinary(filename string, data any) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("couldn't create file %v: %w", filename, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("encoding %v: %w", filename, err)
	}
	return w.Flush()
}

func ReadBinary[A any](path string) (A, error) {
	var data A
	f, err := os.Open(path)
	if err != nil {
		return data, fmt.Errorf("could not load binary file: %w", err)
	}
	defer f.Close()

	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&data); err != nil {
		return data, fmt.Errorf("could not decode binary file %v: %w", path, err)
	}
	return data, nil
}

func Max[A constraints.Ordered](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}
