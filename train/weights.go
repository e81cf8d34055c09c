package train

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var ErrCorruptWeights = errors.New("train: corrupt weights file")

// ReadWeights parses the learner's output, one "name<TAB>weight" line per
// feature. Blank lines are skipped.
func ReadWeights(r io.Reader) (map[string]float64, error) {
	res := make(map[string]float64)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		name, value, ok := strings.Cut(text, "\t")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: line %d", ErrCorruptWeights, line)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: line %d: bad weight %q", ErrCorruptWeights, line, value)
		}
		if _, dup := res[name]; dup {
			return nil, fmt.Errorf("%w: line %d repeats %q", ErrCorruptWeights, line, name)
		}
		res[name] = w
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptWeights, err)
	}
	return res, nil
}

func LoadWeights(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWeights(f)
}
