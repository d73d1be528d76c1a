package semantics

import (
	"fmt"

	"github.com/nihei9/ordo/spec/mapper"
)

// Cardinality is the shape of an attribute value.
type Cardinality int

const (
	// Empty carries no value at all. Only intermediate results have it.
	Empty Cardinality = iota
	// Value is exactly one value.
	Value
	// Option is zero or one value.
	Option
	// Sequence is any number of values.
	Sequence
)

func (c Cardinality) String() string {
	switch c {
	case Empty:
		return "empty"
	case Value:
		return mapper.CardValue
	case Option:
		return mapper.CardOption
	case Sequence:
		return mapper.CardSequence
	}
	return fmt.Sprintf("<cardinality %d>", int(c))
}

func ParseCardinality(s string) (Cardinality, error) {
	switch s {
	case "empty":
		return Empty, nil
	case mapper.CardValue:
		return Value, nil
	case mapper.CardOption:
		return Option, nil
	case mapper.CardSequence:
		return Sequence, nil
	}
	return Empty, fmt.Errorf("unknown cardinality: %v", s)
}

// many saturates counts; two or more values are a sequence.
const many = 2

// Count bounds the number of values a tree position delivers.
type Count struct {
	Min int
	Max int
}

var (
	countNone = Count{Min: 0, Max: 0}
	countOne  = Count{Min: 1, Max: 1}
	// countUnknown is the start value of a fixpoint: the join identity.
	countUnknown = Count{Min: many, Max: 0}
)

func CountOf(c Cardinality) Count {
	switch c {
	case Value:
		return countOne
	case Option:
		return Count{Min: 0, Max: 1}
	case Sequence:
		return Count{Min: 0, Max: many}
	}
	return countNone
}

func saturate(n int) int {
	if n > many {
		return many
	}
	return n
}

// Concat is the count of two positions in a row.
func (c Count) Concat(d Count) Count {
	return Count{
		Min: saturate(c.Min + d.Min),
		Max: saturate(c.Max + d.Max),
	}
}

// Join is the count of either of two alternatives.
func (c Count) Join(d Count) Count {
	j := c
	if d.Min < j.Min {
		j.Min = d.Min
	}
	if d.Max > j.Max {
		j.Max = d.Max
	}
	return j
}

func (c Count) Cardinality() Cardinality {
	switch {
	case c.Max == 0:
		return Empty
	case c.Max == 1 && c.Min == 1:
		return Value
	case c.Max == 1:
		return Option
	}
	return Sequence
}

// Compose is the cardinality of a value of cardinality d found at each of the positions
// described by c.
func (c Cardinality) Compose(d Cardinality) Cardinality {
	if c == Empty || d == Empty {
		return Empty
	}
	if c == Sequence || d == Sequence {
		return Sequence
	}
	if c == Option || d == Option {
		return Option
	}
	return Value
}
