package grammar

import (
	"testing"
)

type testSymbols struct {
	t      *testing.T
	symTab *SymbolTable
}

func newTestSymbols(t *testing.T, terminals []string, nonTerminals []string) *testSymbols {
	t.Helper()

	symTab := NewSymbolTable()
	for _, name := range terminals {
		if _, err := symTab.RegisterTerminal(name); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range nonTerminals {
		if _, err := symTab.RegisterNonTerminal(name); err != nil {
			t.Fatal(err)
		}
	}
	return &testSymbols{
		t:      t,
		symTab: symTab,
	}
}

func (s *testSymbols) id(name string) int {
	s.t.Helper()

	id, ok := s.symTab.Lookup(name)
	if !ok {
		s.t.Fatalf("symbol was not found: %v", name)
	}
	return id
}

func (s *testSymbols) sym(name string) *Symbol {
	s.t.Helper()

	return NewSymbol(s.id(name))
}

func (s *testSymbols) rule(lhs string, rhs Expr) *Rule {
	s.t.Helper()

	return &Rule{
		LHS: s.id(lhs),
		RHS: rhs,
	}
}

func productionStrings(g *Grammar) []string {
	var prods []string
	for p := 0; p < g.ProductionCount(); p++ {
		prods = append(prods, g.ProductionString(p))
	}
	return prods
}
