package lr

import (
	"testing"

	"github.com/nihei9/ordo/grammar"
)

type testGrammar struct {
	g      *grammar.Grammar
	symTab *grammar.SymbolTable
}

// newTestGrammar builds a grammar from productions written as {lhs, rhs...}.
// Symbols listed in terminals are terminals; the left-hand side of the first production
// is the start symbol.
func newTestGrammar(t *testing.T, terminals []string, prods [][]string) *testGrammar {
	t.Helper()

	symTab := grammar.NewSymbolTable()
	for _, name := range terminals {
		if _, err := symTab.RegisterTerminal(name); err != nil {
			t.Fatal(err)
		}
	}
	var ps [][]int
	for _, prod := range prods {
		var p []int
		for _, name := range prod {
			id, ok := symTab.Lookup(name)
			if !ok {
				var err error
				id, err = symTab.RegisterNonTerminal(name)
				if err != nil {
					t.Fatal(err)
				}
			}
			p = append(p, id)
		}
		ps = append(ps, p)
	}
	g, err := grammar.NewGrammar(symTab, ps)
	if err != nil {
		t.Fatal(err)
	}
	return &testGrammar{
		g:      g,
		symTab: symTab,
	}
}

func (tg *testGrammar) sym(t *testing.T, name string) int {
	t.Helper()
	id, ok := tg.symTab.Lookup(name)
	if !ok {
		t.Fatalf("unknown symbol: %v", name)
	}
	return id
}

func (tg *testGrammar) build(t *testing.T, k, threads int) (*PDA, *Table, error) {
	t.Helper()
	pda, err := Build(tg.g, grammar.First(tg.g, k), threads)
	if err != nil {
		t.Fatal(err)
	}
	tab, err := CreateTable(pda)
	return pda, tab, err
}
