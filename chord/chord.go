package chord

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrBadLabel     = errors.New("chord: malformed label")
	ErrBadRoot      = errors.New("chord: unknown root spelling")
	ErrBadQuality   = errors.New("chord: unknown quality")
	ErrBadAdded     = errors.New("chord: unknown added note")
	ErrBadInversion = errors.New("chord: inversion out of range")
)

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var letterClasses = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// PitchClassName spells pc with sharps.
func PitchClassName(pc int) string {
	return pitchClassNames[mod12(pc)]
}

// PitchClass returns the pitch class of a letter with an accidental offset
// (+1 per sharp, -1 per flat).
func PitchClass(letter byte, accidental int) (int, error) {
	base, ok := letterClasses[letter]
	if !ok {
		return 0, ErrBadRoot
	}
	return mod12(base + accidental), nil
}

// ParseSpelling reads a spelled pitch name such as "F#", "Bb" or "Ebb".
func ParseSpelling(s string) (int, error) {
	if len(s) == 0 {
		return 0, ErrBadRoot
	}
	acc := 0
	for _, r := range s[1:] {
		switch r {
		case '#':
			acc++
		case 'b':
			acc--
		default:
			return 0, ErrBadRoot
		}
	}
	return PitchClass(s[0], acc)
}

// Chord is a parsed chord label.
type Chord struct {
	// Root is the root pitch class.
	Root    int
	Quality Quality
	// Added is the interval of the added note above the root, or -1.
	Added int
	// Inversion selects which quality tone is in the bass, 0 being the root.
	Inversion int
}

// Tone is one theoretical chord tone.
type Tone struct {
	Interval int
	Degree   Degree
}

// Parse reads a label of the form Root:quality[(addN)][/inv], e.g.
// "C:maj", "Bb:dom7/1" or "F:maj(add6)".
func Parse(form string) (Chord, error) {
	c := Chord{Added: -1}
	root, rest, ok := strings.Cut(form, ":")
	if !ok || rest == "" {
		return c, fmt.Errorf("%w: %q", ErrBadLabel, form)
	}
	pc, err := ParseSpelling(root)
	if err != nil {
		return c, fmt.Errorf("%w: %q", err, form)
	}
	c.Root = pc

	if before, inv, found := strings.Cut(rest, "/"); found {
		n, err := strconv.Atoi(inv)
		if err != nil {
			return c, fmt.Errorf("%w: %q", ErrBadInversion, form)
		}
		c.Inversion = n
		rest = before
	}

	if open := strings.IndexByte(rest, '('); open >= 0 {
		if !strings.HasSuffix(rest, ")") {
			return c, fmt.Errorf("%w: %q", ErrBadLabel, form)
		}
		interval, ok := addedIntervals[rest[open+1:len(rest)-1]]
		if !ok {
			return c, fmt.Errorf("%w: %q", ErrBadAdded, form)
		}
		c.Added = interval
		rest = rest[:open]
	}

	q, ok := qualityByName[rest]
	if !ok {
		return c, fmt.Errorf("%w: %q", ErrBadQuality, form)
	}
	c.Quality = q
	if c.Inversion < 0 || c.Inversion >= len(qualities[q].tones) {
		return c, fmt.Errorf("%w: %q", ErrBadInversion, form)
	}
	return c, nil
}

// String renders the canonical label form.
func (c Chord) String() string {
	var b strings.Builder
	b.WriteString(PitchClassName(c.Root))
	b.WriteByte(':')
	b.WriteString(qualities[c.Quality].name)
	if c.Added >= 0 {
		b.WriteString("(" + addedNames[c.Added] + ")")
	}
	if c.Inversion > 0 {
		b.WriteString("/" + strconv.Itoa(c.Inversion))
	}
	return b.String()
}

// Tones lists the theoretical chord tones, quality tones first.
func (c Chord) Tones() []Tone {
	qt := qualities[c.Quality].tones
	res := make([]Tone, 0, len(qt)+1)
	res = append(res, qt...)
	if c.Added >= 0 {
		res = append(res, Tone{Interval: c.Added, Degree: Added})
	}
	return res
}

// PitchClasses is the set of pitch classes implied by the label.
func (c Chord) PitchClasses() PCSet {
	var s PCSet
	for _, t := range c.Tones() {
		s = s.Add(c.Root + t.Interval)
	}
	return s
}

// Degree reports which chord tone pc is.
func (c Chord) Degree(pc int) (Degree, bool) {
	interval := mod12(pc - c.Root)
	for _, t := range c.Tones() {
		if t.Interval == interval {
			return t.Degree, true
		}
	}
	return NoDegree, false
}

// PitchOf returns the pitch class of the tone with degree d.
func (c Chord) PitchOf(d Degree) (int, bool) {
	for _, t := range c.Tones() {
		if t.Degree == d {
			return mod12(c.Root + t.Interval), true
		}
	}
	return 0, false
}

// Bass is the pitch class the inversion puts in the bass.
func (c Chord) Bass() int {
	return mod12(c.Root + qualities[c.Quality].tones[c.Inversion].Interval)
}

// Family groups qualities for feature gating.
func (c Chord) Family() Family {
	return qualities[c.Quality].family
}

// RootInterval is the upward interval from a's root to b's root.
func RootInterval(a, b Chord) int {
	return mod12(b.Root - a.Root)
}

// PCSet is a set of pitch classes, bit i standing for pitch class i.
type PCSet uint16

func (s PCSet) Add(pc int) PCSet {
	return s | 1<<uint(mod12(pc))
}

func (s PCSet) Has(pc int) bool {
	return s&(1<<uint(mod12(pc))) != 0
}

func (s PCSet) Len() int {
	n := 0
	for pc := 0; pc < 12; pc++ {
		if s.Has(pc) {
			n++
		}
	}
	return n
}

// Classes lists the members in ascending order.
func (s PCSet) Classes() []int {
	var res []int
	for pc := 0; pc < 12; pc++ {
		if s.Has(pc) {
			res = append(res, pc)
		}
	}
	return res
}

// CreateChordKey renders a sorted, dash separated key of pitch classes.
func CreateChordKey(pcs []int) string {
	sorted := make([]int, len(pcs))
	copy(sorted, pcs)
	sort.Ints(sorted)
	var res string
	for i, pc := range sorted {
		res += fmt.Sprintf("%v", pc)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}

func mod12(n int) int {
	return ((n % 12) + 12) % 12
}
