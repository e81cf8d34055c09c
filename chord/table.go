package chord

import "fmt"

// Table maps dense label ids to parsed chords.
type Table struct {
	chords []Chord
}

// NewTable parses forms, where forms[i] is the label with id i.
func NewTable(forms []string) (*Table, error) {
	t := &Table{chords: make([]Chord, len(forms))}
	for id, form := range forms {
		c, err := Parse(form)
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", id, err)
		}
		t.chords[id] = c
	}
	return t, nil
}

// Get returns the chord for label id. It panics on ids outside the table.
func (t *Table) Get(id int) Chord {
	return t.chords[id]
}

func (t *Table) Len() int {
	return len(t.chords)
}
