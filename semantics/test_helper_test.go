package semantics

import (
	"testing"

	"github.com/nihei9/ordo/grammar"
	"github.com/nihei9/ordo/spec/mapper"
)

type testGrammar struct {
	g      *grammar.Grammar
	symTab *grammar.SymbolTable
}

// newTestGrammar builds a grammar from productions written as {lhs, rhs...}; the left-hand
// side of the first production is the start symbol.
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

// mapping builds a mapping; each argument is a list of source names, and a name starting
// with ^ makes an upward argument.
func (tg *testGrammar) mapping(t *testing.T, sym string, fn string, args ...[]string) *Mapping {
	t.Helper()
	m := &Mapping{
		Symbol:   tg.sym(t, sym),
		Function: fn,
	}
	for _, names := range args {
		arg := &MappingArg{}
		for _, name := range names {
			if name[0] == '^' {
				arg.Up = true
				name = name[1:]
			}
			arg.Sources = append(arg.Sources, tg.sym(t, name))
		}
		m.Args = append(m.Args, arg)
	}
	return m
}

func (tg *testGrammar) attr(t *testing.T, oag *mapper.Oag, sym string, name string) int {
	t.Helper()
	for i, a := range oag.Attributes[tg.sym(t, sym)] {
		if a.Name == name {
			return i
		}
	}
	t.Fatalf("%v has no attribute %v", sym, name)
	return -1
}

// checkSchedule runs the visit sequences of every production symbolically and fails when an
// equation reads an occurrence before it is computed, when a child is visited out of order or
// before the inherited attributes of that visit are ready, or when an attribute is computed
// twice or never.
func checkSchedule(t *testing.T, g *grammar.Grammar, oag *mapper.Oag) {
	t.Helper()

	type occ struct {
		offset int
		attr   int
	}
	for prod, sched := range oag.Productions {
		lhs := g.LHS(prod)
		rhs := g.RHS(prod)
		avail := map[occ]bool{}
		for i, sym := range rhs {
			for a, attr := range oag.Attributes[sym] {
				if attr.Pass < 0 && !attr.Inherited {
					avail[occ{i, a}] = true
				}
			}
		}
		computed := map[occ]int{}
		eval := func(e int) {
			eq := sched.Equations[e]
			for _, arg := range eq.Args {
				if !avail[occ{arg.Offset, arg.Attr}] {
					t.Errorf("%v: equation %v reads %+v before it is computed", g.ProductionString(prod), e, arg)
				}
			}
			r := occ{eq.Result.Offset, eq.Result.Attr}
			avail[r] = true
			computed[r]++
		}
		for _, e := range sched.Construction {
			eval(e)
		}
		if len(sched.Visits) != oag.VisitCounts[lhs] {
			t.Errorf("%v: %v visit sequences for %v visits", g.ProductionString(prod), len(sched.Visits), oag.VisitCounts[lhs])
		}
		nextPass := make([]int, len(rhs))
		for pass, steps := range sched.Visits {
			for a, attr := range oag.Attributes[lhs] {
				if attr.Inherited && attr.Pass == pass {
					avail[occ{-1, a}] = true
				}
			}
			for _, v := range steps {
				switch v.Kind {
				case mapper.VisitEval:
					eval(v.Equation)
				case mapper.VisitChild:
					if v.Pass != nextPass[v.Offset] {
						t.Errorf("%v: visit %v of child %v runs before visit %v", g.ProductionString(prod), v.Pass, v.Offset, nextPass[v.Offset])
					}
					nextPass[v.Offset] = v.Pass + 1
					sym := rhs[v.Offset]
					for a, attr := range oag.Attributes[sym] {
						if attr.Pass != v.Pass {
							continue
						}
						if attr.Inherited {
							if !avail[occ{v.Offset, a}] {
								t.Errorf("%v: child %v is visited before its inherited attribute %v", g.ProductionString(prod), v.Offset, attr.Name)
							}
							continue
						}
						avail[occ{v.Offset, a}] = true
					}
				}
			}
			for a, attr := range oag.Attributes[lhs] {
				if !attr.Inherited && attr.Pass == pass && computed[occ{-1, a}] != 1 {
					t.Errorf("%v: %v is not ready at the end of visit %v", g.ProductionString(prod), attr.Name, pass)
				}
			}
		}
		for i, sym := range rhs {
			if nextPass[i] != oag.VisitCounts[sym] {
				t.Errorf("%v: child %v gets %v of %v visits", g.ProductionString(prod), i, nextPass[i], oag.VisitCounts[sym])
			}
		}
		for a, attr := range oag.Attributes[lhs] {
			if !attr.Inherited && computed[occ{-1, a}] != 1 {
				t.Errorf("%v: %v is computed %v times", g.ProductionString(prod), attr.Name, computed[occ{-1, a}])
			}
		}
		for i, sym := range rhs {
			for a, attr := range oag.Attributes[sym] {
				if attr.Inherited && computed[occ{i, a}] != 1 {
					t.Errorf("%v: inherited %v of child %v is computed %v times", g.ProductionString(prod), attr.Name, i, computed[occ{i, a}])
				}
			}
		}
	}
}
