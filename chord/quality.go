package chord

// Quality identifies a chord type.
type Quality int

const (
	Major Quality = iota
	Minor
	Diminished
	Augmented
	Dominant7
	Major7
	Minor7
	HalfDiminished7
	Diminished7
	Suspended2
	Suspended4
	Power
	Italian6
	French6
	German6
)

// Degree names a chord tone by its function.
type Degree int

const (
	NoDegree Degree = iota
	Root
	Third
	Fifth
	Seventh
	Added
)

var degreeNames = map[Degree]string{
	NoDegree: "none",
	Root:     "root",
	Third:    "third",
	Fifth:    "fifth",
	Seventh:  "seventh",
	Added:    "added",
}

func (d Degree) String() string {
	return degreeNames[d]
}

// Family groups qualities that share feature templates.
type Family int

const (
	Triad Family = iota
	// SuspendedTriad replaces the third by a second or a fourth.
	SuspendedTriad
	SeventhChord
	PowerChord
	AugmentedSixth
)

type qualityDef struct {
	name   string
	family Family
	tones  []Tone
}

var qualities = map[Quality]qualityDef{
	Major:           {"maj", Triad, tones(0, 4, 7)},
	Minor:           {"min", Triad, tones(0, 3, 7)},
	Diminished:      {"dim", Triad, tones(0, 3, 6)},
	Augmented:       {"aug", Triad, tones(0, 4, 8)},
	Suspended2:      {"sus2", SuspendedTriad, tones(0, 2, 7)},
	Suspended4:      {"sus4", SuspendedTriad, tones(0, 5, 7)},
	Dominant7:       {"dom7", SeventhChord, tones(0, 4, 7, 10)},
	Major7:          {"maj7", SeventhChord, tones(0, 4, 7, 11)},
	Minor7:          {"min7", SeventhChord, tones(0, 3, 7, 10)},
	HalfDiminished7: {"hdim7", SeventhChord, tones(0, 3, 6, 10)},
	Diminished7:     {"dim7", SeventhChord, tones(0, 3, 6, 9)},
	Power:           {"pow", PowerChord, []Tone{{0, Root}, {7, Fifth}}},
	Italian6:        {"it6", AugmentedSixth, []Tone{{0, Root}, {4, Third}, {10, Seventh}}},
	French6:         {"fr6", AugmentedSixth, tones(0, 4, 6, 10)},
	German6:         {"ger6", AugmentedSixth, tones(0, 4, 7, 10)},
}

var qualityByName = func() map[string]Quality {
	m := make(map[string]Quality, len(qualities))
	for q, def := range qualities {
		m[def.name] = q
	}
	return m
}()

var addedIntervals = map[string]int{
	"add2":  2,
	"add9":  2,
	"add4":  5,
	"add11": 5,
	"add6":  9,
}

var addedNames = map[int]string{2: "add9", 5: "add4", 9: "add6"}

// tones assigns root/third/fifth/seventh degrees by position.
func tones(intervals ...int) []Tone {
	degrees := []Degree{Root, Third, Fifth, Seventh}
	res := make([]Tone, len(intervals))
	for i, iv := range intervals {
		res[i] = Tone{Interval: iv, Degree: degrees[i]}
	}
	return res
}

// Name is the quality's label spelling.
func (q Quality) Name() string {
	return qualities[q].name
}
