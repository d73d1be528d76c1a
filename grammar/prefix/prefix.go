// Package prefix implements bounded-length terminal sequences used as LR(k) lookaheads.
package prefix

import (
	"fmt"
	"strings"
)

const (
	// MaxLength is the maximum number of symbols a Prefix can hold.
	MaxLength = 4

	// MaxSymbol is the largest symbol ID a Prefix can hold.
	MaxSymbol = 0xfffe

	slotBits = 16
	slotMask = 0xffff
)

// Prefix is an immutable sequence of at most MaxLength symbols packed into an integer.
// Each symbol occupies 16 bits and is stored with a +1 bias so that a zero slot marks
// the end of the sequence. The first symbol lives in the lowest slot.
type Prefix uint64

// Empty is the sequence without symbols.
const Empty = Prefix(0)

// Of packs syms into a Prefix. It panics when the sequence is too long or a symbol is out of range.
func Of(syms ...int) Prefix {
	if len(syms) > MaxLength {
		panic(fmt.Errorf("a prefix can hold at most %v symbols; got: %v", MaxLength, len(syms)))
	}
	var p Prefix
	for i, sym := range syms {
		if sym < 0 || sym > MaxSymbol {
			panic(fmt.Errorf("a symbol is out of range: %v", sym))
		}
		p |= Prefix(sym+1) << (slotBits * i)
	}
	return p
}

func (p Prefix) Len() int {
	n := 0
	for p != 0 {
		n++
		p >>= slotBits
	}
	return n
}

// At returns the i-th symbol. It returns -1 when i is out of range.
func (p Prefix) At(i int) int {
	if i < 0 || i >= MaxLength {
		return -1
	}
	return int((p>>(slotBits*i))&slotMask) - 1
}

// First returns the leading symbol, or -1 for the empty prefix.
func (p Prefix) First() int {
	return p.At(0)
}

// Tail returns the prefix without its leading symbol.
func (p Prefix) Tail() Prefix {
	return p >> slotBits
}

func (p Prefix) Symbols() []int {
	syms := make([]int, 0, MaxLength)
	for ; p != 0; p >>= slotBits {
		syms = append(syms, int(p&slotMask)-1)
	}
	return syms
}

// Concat appends q to p and truncates the result to k symbols.
// When p already holds k symbols, p is returned unchanged.
func (p Prefix) Concat(q Prefix, k int) Prefix {
	l := p.Len()
	if l >= k {
		return p
	}
	r := p | q<<(slotBits*l)
	if k < MaxLength {
		r &= Prefix(1)<<(slotBits*k) - 1
	}
	return r
}

// Less orders prefixes lexicographically by symbol; a proper prefix sorts first.
func (p Prefix) Less(q Prefix) bool {
	for i := 0; i < MaxLength; i++ {
		a := p.At(i)
		b := q.At(i)
		if a != b {
			return a < b
		}
		if a < 0 {
			return false
		}
	}
	return false
}

func (p Prefix) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i, sym := range p.Symbols() {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%v", sym)
	}
	b.WriteString("]")
	return b.String()
}
