package lattice

import "fmt"

// Kind is the node type.
type Kind uint8

const (
	Start Kind = iota
	Open
	Close
	Finish
)

const (
	labelBits = 16
	kindBits  = 2

	// MaxLabels bounds the label ids a lattice can carry.
	MaxLabels = 1 << labelBits
)

// Key is a packed node identity: position<<18 | kind<<16 | label.
type Key uint64

func NewKey(pos int, kind Kind, label int) Key {
	return Key(uint64(pos)<<(labelBits+kindBits) | uint64(kind)<<labelBits | uint64(label))
}

func StartKey() Key {
	return NewKey(0, Start, 0)
}

func OpenKey(pos, label int) Key {
	return NewKey(pos, Open, label)
}

func CloseKey(pos, label int) Key {
	return NewKey(pos, Close, label)
}

// FinishKey is the sink of an n event prefix.
func FinishKey(n int) Key {
	return NewKey(n-1, Finish, 0)
}

func (k Key) Position() int {
	return int(k >> (labelBits + kindBits))
}

func (k Key) Kind() Kind {
	return Kind(k>>labelBits) & (1<<kindBits - 1)
}

func (k Key) Label() int {
	return int(k & (MaxLabels - 1))
}

func (k Key) String() string {
	switch k.Kind() {
	case Start:
		return "START"
	case Open:
		return fmt.Sprintf("OPEN(%d,%d)", k.Position(), k.Label())
	case Close:
		return fmt.Sprintf("CLOSE(%d,%d)", k.Position(), k.Label())
	default:
		return fmt.Sprintf("FINISH(%d)", k.Position()+1)
	}
}
