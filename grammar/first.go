package grammar

import (
	"github.com/nihei9/ordo/grammar/prefix"
)

// FirstSet holds the FIRST-k set of every symbol of a grammar.
type FirstSet struct {
	k    int
	sets []*prefix.PrefixSet
}

// First computes the FIRST-k sets by fixpoint iteration over the productions.
// The set of a terminal contains the terminal alone; nonterminals that derive no
// terminal string get an empty set.
func First(g *Grammar, k int) *FirstSet {
	fst := &FirstSet{
		k:    k,
		sets: make([]*prefix.PrefixSet, g.SymbolCount()),
	}
	for sym := range fst.sets {
		if g.IsTerminal(sym) {
			fst.sets[sym] = prefix.NewPrefixSet(prefix.Of(sym))
			continue
		}
		fst.sets[sym] = prefix.NewPrefixSet()
	}

	for {
		more := false
		for p := 0; p < g.ProductionCount(); p++ {
			e := fst.OfSequence(g.RHS(p))
			if fst.sets[g.LHS(p)].AddAll(e) {
				more = true
			}
		}
		if !more {
			break
		}
	}

	return fst
}

func (fst *FirstSet) K() int {
	return fst.k
}

// Of returns the FIRST-k set of sym. Callers must not modify it.
func (fst *FirstSet) Of(sym int) *prefix.PrefixSet {
	return fst.sets[sym]
}

// OfSequence returns the FIRST-k set of a symbol sequence.
// The set of the empty sequence contains the empty prefix.
func (fst *FirstSet) OfSequence(syms []int) *prefix.PrefixSet {
	acc := prefix.NewPrefixSet(prefix.Empty)
	for _, sym := range syms {
		if acc.IsSaturated(fst.k) {
			break
		}
		acc = prefix.Concat(acc, fst.sets[sym], fst.k)
	}
	return acc
}
