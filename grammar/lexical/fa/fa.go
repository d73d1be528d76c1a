// Package fa implements the finite automata of the scanner generator: Thompson NFAs built
// from lexical expressions, subset construction, completion, minimization and the
// difference of two languages. Automata run over bytes; code points are lowered to their
// UTF-8 encodings.
package fa

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("ordo.fa")
}

// Label is the sorted set of terminals an accepting state recognizes.
type Label struct {
	Symbols []int
}

func newLabel(syms ...int) *Label {
	set := map[int]struct{}{}
	for _, sym := range syms {
		set[sym] = struct{}{}
	}
	l := &Label{
		Symbols: make([]int, 0, len(set)),
	}
	for sym := range set {
		l.Symbols = append(l.Symbols, sym)
	}
	sort.Ints(l.Symbols)
	return l
}

func (l *Label) Contains(sym int) bool {
	i := sort.SearchInts(l.Symbols, sym)
	return i < len(l.Symbols) && l.Symbols[i] == sym
}

func (l *Label) key() string {
	if l == nil {
		return ""
	}
	return fmt.Sprint(l.Symbols)
}

func (l *Label) String() string {
	return l.key()
}

// Transition moves on any byte in [Lo, Hi].
type Transition struct {
	Lo   byte
	Hi   byte
	Dest int
}

// State is a state of an automaton. A nil Label marks a non-accepting state. Eps holds the
// epsilon transitions of an NFA and is empty in a DFA.
type State struct {
	Label *Label
	Trans []Transition
	Eps   []int
}

// FA is a finite automaton. Error is the reserved error state of a complete DFA, -1 otherwise.
type FA struct {
	States []*State
	Start  int
	Error  int
}

func newFA() *FA {
	return &FA{
		Error: -1,
	}
}

func (a *FA) addState() int {
	a.States = append(a.States, &State{})
	return len(a.States) - 1
}

func (a *FA) addTrans(from int, lo, hi byte, to int) {
	s := a.States[from]
	s.Trans = append(s.Trans, Transition{
		Lo:   lo,
		Hi:   hi,
		Dest: to,
	})
}

func (a *FA) addEps(from, to int) {
	a.States[from].Eps = append(a.States[from].Eps, to)
}

// IsDeterministic reports whether a has no epsilon transitions and no overlapping transitions.
func (a *FA) IsDeterministic() bool {
	for _, s := range a.States {
		if len(s.Eps) > 0 {
			return false
		}
		var seen [256]bool
		for _, t := range s.Trans {
			for b := int(t.Lo); b <= int(t.Hi); b++ {
				if seen[b] {
					return false
				}
				seen[b] = true
			}
		}
	}
	return true
}

// closure returns the epsilon closure of states as a sorted slice.
func (a *FA) closure(states []int) []int {
	seen := map[int]struct{}{}
	stack := make([]int, 0, len(states))
	for _, s := range states {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			stack = append(stack, s)
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range a.States[s].Eps {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			stack = append(stack, t)
		}
	}
	set := make([]int, 0, len(seen))
	for s := range seen {
		set = append(set, s)
	}
	sort.Ints(set)
	return set
}

func (a *FA) move(states []int, b byte) []int {
	var next []int
	for _, s := range states {
		for _, t := range a.States[s].Trans {
			if b >= t.Lo && b <= t.Hi {
				next = append(next, t.Dest)
			}
		}
	}
	return next
}

// labelOf unions the labels of states.
func (a *FA) labelOf(states []int) *Label {
	var syms []int
	accepting := false
	for _, s := range states {
		if l := a.States[s].Label; l != nil {
			accepting = true
			syms = append(syms, l.Symbols...)
		}
	}
	if !accepting {
		return nil
	}
	return newLabel(syms...)
}

// Accepts runs a over input and returns the label of the state it ends in. ok is false when
// the input is rejected.
func (a *FA) Accepts(input []byte) (*Label, bool) {
	states := a.closure([]int{a.Start})
	for _, b := range input {
		states = a.closure(a.move(states, b))
		if len(states) == 0 {
			return nil, false
		}
	}
	l := a.labelOf(states)
	return l, l != nil
}

func (a *FA) String() string {
	var b strings.Builder
	for i, s := range a.States {
		fmt.Fprintf(&b, "%v", i)
		if i == a.Start {
			b.WriteString(" start")
		}
		if i == a.Error {
			b.WriteString(" error")
		}
		if s.Label != nil {
			fmt.Fprintf(&b, " accept%v", s.Label)
		}
		b.WriteString(":")
		for _, t := range s.Trans {
			if t.Lo == t.Hi {
				fmt.Fprintf(&b, " %02X->%v", t.Lo, t.Dest)
				continue
			}
			fmt.Fprintf(&b, " %02X-%02X->%v", t.Lo, t.Hi, t.Dest)
		}
		for _, t := range s.Eps {
			fmt.Fprintf(&b, " eps->%v", t)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// table expands the transitions of a DFA into a dense table; missing transitions are -1.
func (a *FA) table() [][256]int {
	tab := make([][256]int, len(a.States))
	for i, s := range a.States {
		for b := range tab[i] {
			tab[i][b] = -1
		}
		for _, t := range s.Trans {
			for b := int(t.Lo); b <= int(t.Hi); b++ {
				tab[i][b] = t.Dest
			}
		}
	}
	return tab
}

// rangesOf compresses a dense row back into transitions, skipping -1 and skip.
func rangesOf(row *[256]int, skip int) []Transition {
	var trans []Transition
	for b := 0; b < 256; {
		dest := row[b]
		e := b
		for e+1 < 256 && row[e+1] == dest {
			e++
		}
		if dest >= 0 && dest != skip {
			trans = append(trans, Transition{
				Lo:   byte(b),
				Hi:   byte(e),
				Dest: dest,
			})
		}
		b = e + 1
	}
	return trans
}
