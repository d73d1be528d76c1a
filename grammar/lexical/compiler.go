package lexical

import (
	"fmt"
	"strings"

	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/grammar/lexical/fa"
	"github.com/nihei9/ordo/spec/mapper"
)

// Automaton is the minimized DFA of all terminal rules. It does not depend on the parser,
// so it can be built while the parser automaton is under construction.
type Automaton struct {
	DFA       *fa.FA
	Terminals []*Rule
	White     []int
	keywords  map[int]bool
	names     map[int]string
	nfaStates int
	dfaStates int
}

// Build validates s, expands its helpers and builds the minimal DFA. A DFA whose start
// state accepts is rejected since the scanner would match the empty word forever.
func Build(s *LexSpec) (*Automaton, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	terminals, err := Expand(s)
	if err != nil {
		return nil, err
	}

	rules := make([]*fa.Rule, len(terminals))
	keywords := map[int]bool{}
	names := map[int]string{}
	for i, r := range terminals {
		rules[i] = &fa.Rule{
			Symbol: r.Symbol,
			Expr:   r.Expr,
		}
		if r.Keyword {
			keywords[r.Symbol] = true
		}
		names[r.Symbol] = r.displayName()
	}
	nfa, err := fa.BuildNFA(rules)
	if err != nil {
		return nil, err
	}
	dfa := nfa.Determinize()
	min := dfa.Minimize()

	a := &Automaton{
		DFA:       min,
		Terminals: terminals,
		White:     s.White,
		keywords:  keywords,
		names:     names,
		nfaStates: len(nfa.States),
		dfaStates: len(dfa.States),
	}
	if l := min.States[min.Start].Label; l != nil {
		return nil, &verr.SpecError{
			Code:   verr.CodeScannerEmptyWord,
			Cause:  lexErrEmptyWord,
			Detail: a.symbolsString(l.Symbols),
		}
	}

	tracer().Debugf("scanner DFA: %v NFA states, %v DFA states, %v minimized states", a.nfaStates, a.dfaStates, len(min.States))

	return a, nil
}

func (r *Rule) displayName() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.Name
}

func (a *Automaton) symbolsString(syms []int) string {
	names := make([]string, len(syms))
	for i, sym := range syms {
		names[i] = a.names[sym]
	}
	return strings.Join(names, ", ")
}

// Compile partitions the terminals into modes for the parser states and packs the scanner.
// shiftable holds the terminals each parser state accepts.
func (a *Automaton) Compile(shiftable [][]int) (*mapper.ScannerFactory, *ModeSet, error) {
	ms, err := a.Modes(shiftable)
	if err != nil {
		return nil, nil, err
	}
	f, err := a.Pack(ms)
	if err != nil {
		return nil, nil, err
	}
	return f, ms, nil
}

// Report fills the scanner part of a listing.
func (a *Automaton) Report(rep *mapper.Report, ms *ModeSet, f *mapper.ScannerFactory) {
	rep.Scanner = &mapper.ScannerReport{
		NFAStates:       a.nfaStates,
		DFAStates:       a.dfaStates,
		MinimizedStates: len(a.DFA.States),
	}
	if f != nil {
		rep.Scanner.TableSize = len(f.Table)
	}
	if ms == nil {
		return
	}
	for _, m := range ms.Modes {
		var names []string
		for _, v := range m.Values() {
			names = append(names, a.names[v.(int)])
		}
		rep.Modes = append(rep.Modes, names)
	}
}

func (a *Automaton) String() string {
	return fmt.Sprintf("%v terminals, %v states", len(a.Terminals), len(a.DFA.States))
}
