package lexical

import (
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/grammar"
)

// ModeSet assigns a scanner mode to every parser state. A mode is a set of terminals in
// which every word has at most one terminal after keyword priority is applied.
type ModeSet struct {
	Modes      []*treeset.Set
	StateModes []int
	// ends[state][mode] is the terminal a DFA state accepts in a mode, or -1.
	ends [][]int
}

// Modes derives the modes greedily: a parser state joins the first mode that stays free of
// ambiguity when extended by its shiftable terminals and the white terminals; otherwise a
// new mode is created.
func (a *Automaton) Modes(shiftable [][]int) (*ModeSet, error) {
	ms := &ModeSet{
		StateModes: make([]int, len(shiftable)),
	}
	for state, syms := range shiftable {
		want := treeset.NewWith(utils.IntComparator)
		for _, sym := range syms {
			if sym == grammar.SymbolEOF {
				continue
			}
			want.Add(sym)
		}
		for _, sym := range a.White {
			want.Add(sym)
		}

		assigned := false
		for i, m := range ms.Modes {
			union := treeset.NewWith(utils.IntComparator, m.Values()...)
			union.Add(want.Values()...)
			if _, _, ok := a.ambiguity(union); ok {
				ms.Modes[i] = union
				ms.StateModes[state] = i
				assigned = true
				break
			}
		}
		if assigned {
			continue
		}
		if x, y, ok := a.ambiguity(want); !ok {
			return nil, &verr.SpecError{
				Code:   verr.CodeScannerAmbiguous,
				Cause:  lexErrAmbiguous,
				Detail: fmt.Sprintf("%v and %v in parser state %v", a.names[x], a.names[y], state),
			}
		}
		ms.StateModes[state] = len(ms.Modes)
		ms.Modes = append(ms.Modes, want)
	}
	if len(ms.Modes) == 0 {
		ms.Modes = append(ms.Modes, treeset.NewWith(utils.IntComparator))
	}

	ms.ends = make([][]int, len(a.DFA.States))
	for s, st := range a.DFA.States {
		ms.ends[s] = make([]int, len(ms.Modes))
		for m, mode := range ms.Modes {
			ms.ends[s][m] = -1
			if st.Label == nil {
				continue
			}
			sym, _, _ := a.resolve(st.Label.Symbols, mode)
			ms.ends[s][m] = sym
		}
	}

	tracer().Debugf("scanner modes: %v for %v parser states", len(ms.Modes), len(shiftable))

	return ms, nil
}

// ambiguity returns ok when no accepting state of the DFA is ambiguous in mode, or else two
// terminals sharing a word.
func (a *Automaton) ambiguity(mode *treeset.Set) (int, int, bool) {
	for _, st := range a.DFA.States {
		if st.Label == nil {
			continue
		}
		if sym, other, ok := a.resolve(st.Label.Symbols, mode); !ok {
			return sym, other, false
		}
	}
	return 0, 0, true
}

// resolve picks the terminal of syms that a state accepts in mode. A keyword wins over
// pattern terminals. When no single terminal wins, ok is false and two of the candidates
// are returned.
func (a *Automaton) resolve(syms []int, mode *treeset.Set) (int, int, bool) {
	var candidates []int
	var keywords []int
	for _, sym := range syms {
		if !mode.Contains(sym) {
			continue
		}
		candidates = append(candidates, sym)
		if a.keywords[sym] {
			keywords = append(keywords, sym)
		}
	}
	switch {
	case len(candidates) == 0:
		return -1, -1, true
	case len(candidates) == 1:
		return candidates[0], -1, true
	case len(keywords) == 1:
		return keywords[0], -1, true
	case len(keywords) > 1:
		return keywords[0], keywords[1], false
	}
	return candidates[0], candidates[1], false
}

// EndSymbol returns the terminal a DFA state accepts in a mode, or -1.
func (ms *ModeSet) EndSymbol(state, mode int) int {
	return ms.ends[state][mode]
}
