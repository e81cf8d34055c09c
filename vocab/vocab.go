// Package vocab interns string forms into dense integer ids.
//
// A Vocabulary only ever grows: ids are handed out in insertion order,
// never renumbered and never reclaimed. All methods are safe for
// concurrent use.
package vocab

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by lookups for a form or id that was never interned.
var ErrNotFound = errors.New("vocab: not found")

// Vocabulary is a growth-only, thread-safe bidirectional form <-> id table.
type Vocabulary struct {
	mu    sync.RWMutex
	ids   map[string]int
	forms []string
}

// New returns an empty Vocabulary.
func New() *Vocabulary {
	return &Vocabulary{ids: make(map[string]int)}
}

// Intern returns the id of form, allocating the next sequential id if form
// has not been seen before. Concurrent first uses of the same form always
// observe the same id.
func (v *Vocabulary) Intern(form string) int {
	v.mu.RLock()
	id, ok := v.ids[form]
	v.mu.RUnlock()
	if ok {
		return id
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	// another writer may have won the race between the two locks
	if id, ok := v.ids[form]; ok {
		return id
	}
	id = len(v.forms)
	v.forms = append(v.forms, form)
	v.ids[form] = id
	return id
}

// Lookup returns the id of form without allocating.
func (v *Vocabulary) Lookup(form string) (int, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	id, ok := v.ids[form]
	return id, ok
}

// Resolve returns the form interned under id.
func (v *Vocabulary) Resolve(id int) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if id < 0 || id >= len(v.forms) {
		return "", ErrNotFound
	}
	return v.forms[id], nil
}

// MustResolve is Resolve for ids the caller obtained from this Vocabulary.
func (v *Vocabulary) MustResolve(id int) string {
	form, err := v.Resolve(id)
	if err != nil {
		panic("vocab: unknown id in MustResolve")
	}
	return form
}

// Len reports how many forms have been interned.
func (v *Vocabulary) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.forms)
}

// Forms returns a copy of every interned form, indexed by id.
func (v *Vocabulary) Forms() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	res := make([]string, len(v.forms))
	copy(res, v.forms)
	return res
}

// FromForms rebuilds a Vocabulary whose ids match the positions in forms.
// Duplicate forms keep their first id.
func FromForms(forms []string) *Vocabulary {
	v := New()
	for _, f := range forms {
		v.Intern(f)
	}
	return v
}

// Set bundles the independent namespaces used by one run.
type Set struct {
	// Labels holds segment labels (chord symbols).
	Labels *Vocabulary
	// Tags holds per-event boundary tags such as "B-C:maj".
	Tags *Vocabulary
	// Features holds feature names.
	Features *Vocabulary
}

// NewSet returns a Set of empty vocabularies.
func NewSet() *Set {
	return &Set{Labels: New(), Tags: New(), Features: New()}
}
