package semantics

import (
	"fmt"
	"strings"

	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/spec/mapper"
)

type scheduler struct {
	at         *Attribution
	needsVisit []bool
	// ids[sym] holds the pairs (a, b) of attribute indices of sym where b depends on a in some
	// context of sym, above or below it.
	ids []map[[2]int]bool
	// passes[sym][attr] is the visit of sym that computes or receives an attribute, or -1.
	passes      [][]int
	visitCounts []int
	funcs       []string
	funcIndex   map[*Function]int
}

// Schedule plans the evaluation of an attribute grammar. Attributes that depend only on the
// subtree of their symbol are computed while the tree is built. The rest are split into
// visits: the attributes of every nonterminal are partitioned into groups of inherited
// attributes handed down and synthesized attributes handed back, and each production gets
// one visit sequence per group of its left-hand side. A circular grammar, or one whose
// productions cannot follow the partition, is reported with a cyclic-attribute error.
func Schedule(at *Attribution) (*mapper.Oag, error) {
	s := &scheduler{
		at:        at,
		funcIndex: map[*Function]int{},
	}
	s.classify()
	s.findVisits()
	if err := s.induceDependencies(); err != nil {
		return nil, err
	}
	if err := s.partition(); err != nil {
		return nil, err
	}

	g := at.Grammar
	oag := &mapper.Oag{
		Attributes:   make([][]*mapper.Attribute, g.SymbolCount()),
		Main:         make([]int, g.SymbolCount()),
		Construction: make([][]int, g.SymbolCount()),
		VisitCounts:  s.visitCounts,
		Terminals:    make([]*mapper.Equation, g.TerminalCount()),
		Productions:  make([]*mapper.Schedule, g.ProductionCount()),
	}
	for sym, attrs := range at.Attributes {
		oag.Main[sym] = -1
		for _, attr := range attrs {
			oag.Attributes[sym] = append(oag.Attributes[sym], &mapper.Attribute{
				Name:      attr.Name,
				Inherited: attr.Inherited(),
				Card:      attr.Type.Card.String(),
				Type:      attr.Type.Host.String(),
				Pass:      s.passes[sym][attr.index],
			})
			if attr.Kind == AttrMain {
				oag.Main[sym] = attr.index
			}
			if !attr.Inherited() && !attr.Visit {
				oag.Construction[sym] = append(oag.Construction[sym], attr.index)
			}
		}
	}
	for sym, b := range at.Terminals {
		if b == nil {
			continue
		}
		oag.Terminals[sym] = s.equation(b)
	}

	var errs verr.SpecErrors
	for prod := range at.Buffers {
		sched, err := s.scheduleProduction(prod)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		oag.Productions[prod] = sched
	}
	if len(errs) > 0 {
		return nil, errs
	}
	oag.Functions = s.funcs

	tracer().Debugf("attribute schedule: %v functions, %v productions", len(oag.Functions), len(oag.Productions))

	return oag, nil
}

// classify marks the attributes computed by visits: inherited attributes and every attribute
// that has an equation reading one of them.
func (s *scheduler) classify() {
	for _, attrs := range s.at.Attributes {
		for _, attr := range attrs {
			attr.Visit = attr.Inherited()
		}
	}
	for changed := true; changed; {
		changed = false
		for _, bufs := range s.at.Buffers {
			for _, b := range bufs {
				if b.Result.Attr.Visit {
					continue
				}
				for _, arg := range b.Args {
					if arg.Attr.Visit {
						b.Result.Attr.Visit = true
						changed = true
						break
					}
				}
			}
		}
	}
}

// findVisits marks the nonterminals whose subtrees need a visit after the tree is built.
func (s *scheduler) findVisits() {
	g := s.at.Grammar
	s.needsVisit = make([]bool, g.SymbolCount())
	for sym := g.TerminalCount(); sym < g.SymbolCount(); sym++ {
		for _, attr := range s.at.Attributes[sym] {
			if attr.Visit {
				s.needsVisit[sym] = true
				break
			}
		}
	}
	for changed := true; changed; {
		changed = false
		for prod := 0; prod < g.ProductionCount(); prod++ {
			lhs := g.LHS(prod)
			if s.needsVisit[lhs] {
				continue
			}
			needs := false
			for _, b := range s.at.Buffers[prod] {
				if b.Result.Attr.Visit {
					needs = true
					break
				}
			}
			for _, sym := range g.RHS(prod) {
				if s.needsVisit[sym] {
					needs = true
					break
				}
			}
			if needs {
				s.needsVisit[lhs] = true
				changed = true
			}
		}
	}
}

// induceDependencies computes, for every nonterminal, which of its visit attributes depend on
// which others through the equations of the productions around and below it. A production
// whose dependencies, extended by the induced ones, form a cycle makes the grammar circular.
func (s *scheduler) induceDependencies() error {
	g := s.at.Grammar
	s.ids = make([]map[[2]int]bool, g.SymbolCount())
	for sym := range s.ids {
		s.ids[sym] = map[[2]int]bool{}
	}
	for changed := true; changed; {
		changed = false
		for prod := 0; prod < g.ProductionCount(); prod++ {
			pg := s.buildGraph(prod, false)
			rhs := g.RHS(prod)
			for pos := -1; pos < len(rhs); pos++ {
				sym := g.LHS(prod)
				if pos >= 0 {
					sym = rhs[pos]
				}
				if g.IsTerminal(sym) {
					continue
				}
				if s.project(pg, pos, sym) {
					changed = true
				}
			}
		}
	}

	var errs verr.SpecErrors
	for prod := 0; prod < g.ProductionCount(); prod++ {
		pg := s.buildGraph(prod, false)
		if _, residue := pg.sort(); len(residue) > 0 {
			errs = append(errs, s.cyclicError(prod, pg, residue))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// project adds to ids[sym] the paths of pg between visit attributes of the occurrence of sym
// at pos.
func (s *scheduler) project(pg *prodGraph, pos int, sym int) bool {
	changed := false
	attrs := s.at.Attributes[sym]
	for _, a := range attrs {
		if !a.Visit {
			continue
		}
		from, ok := pg.occs[occKey{offset: pos, attr: a.index}]
		if !ok {
			continue
		}
		reach := pg.reaches(from)
		for _, b := range attrs {
			if !b.Visit || b == a {
				continue
			}
			to, ok := pg.occs[occKey{offset: pos, attr: b.index}]
			if !ok || !reach[to] {
				continue
			}
			pair := [2]int{a.index, b.index}
			if !s.ids[sym][pair] {
				s.ids[sym][pair] = true
				changed = true
			}
		}
	}
	return changed
}

// partition splits the visit attributes of every nonterminal into visits. Working back from
// the last visit, it alternately takes the synthesized and the inherited attributes whose
// dependents are all placed already, so each visit hands down what the one before it made
// computable.
func (s *scheduler) partition() error {
	g := s.at.Grammar
	s.passes = make([][]int, g.SymbolCount())
	s.visitCounts = make([]int, g.SymbolCount())
	for sym, attrs := range s.at.Attributes {
		s.passes[sym] = make([]int, len(attrs))
		remaining := map[int]bool{}
		for _, a := range attrs {
			s.passes[sym][a.index] = -1
			if a.Visit {
				remaining[a.index] = true
			}
		}

		// groups[0] is the synthesized group of the last visit, groups[1] its inherited group,
		// and so on towards the first visit.
		var groups [][]int
		inherited := false
		empty := 0
		for len(remaining) > 0 {
			var group []int
			for added := true; added; {
				added = false
				for _, a := range attrs {
					if !remaining[a.index] || a.Inherited() != inherited || !s.placeable(sym, a.index, remaining) {
						continue
					}
					group = append(group, a.index)
					delete(remaining, a.index)
					added = true
				}
			}
			if len(group) == 0 {
				empty++
				if empty == 2 {
					return &verr.SpecError{
						Code:   verr.CodeCyclicAttribute,
						Cause:  semErrCyclic,
						Detail: g.SymbolName(sym),
					}
				}
			} else {
				empty = 0
			}
			groups = append(groups, group)
			inherited = !inherited
		}
		if len(groups)%2 == 1 {
			groups = append(groups, nil)
		}

		count := len(groups) / 2
		for i, group := range groups {
			for _, a := range group {
				s.passes[sym][a] = count - 1 - i/2
			}
		}
		if count == 0 && s.needsVisit[sym] {
			count = 1
		}
		s.visitCounts[sym] = count
	}
	return nil
}

// placeable reports whether every attribute depending on attr is placed already.
func (s *scheduler) placeable(sym int, attr int, remaining map[int]bool) bool {
	for pair := range s.ids[sym] {
		if pair[0] == attr && remaining[pair[1]] {
			return false
		}
	}
	return true
}

type occKey struct {
	offset int
	attr   int
}

type childVisit struct {
	offset int
	pass   int
}

// prodGraph is the dependency graph of one production. Nodes are attribute occurrences,
// equations and, with visits, one marker per child visit and one per end of a visit of the
// left-hand side.
type prodGraph struct {
	*depGraph
	occs     map[occKey]int
	eqNodes  map[int]int
	visitFor map[int]childVisit
	leaves   map[int]bool
}

func (s *scheduler) buildGraph(prod int, visits bool) *prodGraph {
	g := s.at.Grammar
	pg := &prodGraph{
		depGraph: newDepGraph(),
		occs:     map[occKey]int{},
		eqNodes:  map[int]int{},
		visitFor: map[int]childVisit{},
		leaves:   map[int]bool{},
	}
	occ := func(offset int, attr *Attribute) int {
		k := occKey{offset: offset, attr: attr.index}
		if n, ok := pg.occs[k]; ok {
			return n
		}
		o := Occurrence{Offset: offset, Attr: attr}
		n := pg.addNode(fmt.Sprintf("%v(%v)", o, s.at.attrName(attr)))
		pg.occs[k] = n
		return n
	}
	for e, b := range s.at.Buffers[prod] {
		n := pg.addNode(b.String())
		pg.eqNodes[n] = e
		for _, arg := range b.Args {
			pg.addEdge(occ(arg.Offset, arg.Attr), n)
		}
		pg.addEdge(n, occ(b.Result.Offset, b.Result.Attr))
	}

	lhs := g.LHS(prod)
	rhs := g.RHS(prod)
	if !visits {
		for pos := -1; pos < len(rhs); pos++ {
			sym := lhs
			if pos >= 0 {
				sym = rhs[pos]
			}
			if g.IsTerminal(sym) {
				continue
			}
			for pair := range s.ids[sym] {
				pg.addEdge(occ(pos, s.at.Attributes[sym][pair[0]]), occ(pos, s.at.Attributes[sym][pair[1]]))
			}
		}
		return pg
	}

	var work []int
	for i, sym := range rhs {
		if g.IsTerminal(sym) {
			continue
		}
		prev := -1
		for k := 0; k < s.visitCounts[sym]; k++ {
			v := pg.addNode(fmt.Sprintf("visit %v of $%v", k+1, i+1))
			pg.visitFor[v] = childVisit{offset: i, pass: k}
			work = append(work, v)
			if prev >= 0 {
				pg.addEdge(prev, v)
			}
			prev = v
			for _, attr := range s.at.Attributes[sym] {
				if s.passes[sym][attr.index] != k {
					continue
				}
				if attr.Inherited() {
					pg.addEdge(occ(i, attr), v)
				} else {
					pg.addEdge(v, occ(i, attr))
				}
			}
		}
	}
	n := s.visitCounts[lhs]
	if n == 0 {
		return pg
	}
	leaves := make([]int, n)
	for k := range leaves {
		leaves[k] = pg.addNode(fmt.Sprintf("end of visit %v", k+1))
		pg.leaves[leaves[k]] = true
		if k > 0 {
			pg.addEdge(leaves[k-1], leaves[k])
		}
	}
	for _, attr := range s.at.Attributes[lhs] {
		k := s.passes[lhs][attr.index]
		switch {
		case k < 0:
		case attr.Inherited():
			if k > 0 {
				pg.addEdge(leaves[k-1], occ(-1, attr))
			}
		default:
			pg.addEdge(occ(-1, attr), leaves[k])
		}
	}
	for node, e := range pg.eqNodes {
		if s.at.Buffers[prod][e].Result.Attr.Visit {
			work = append(work, node)
		}
	}
	for _, node := range work {
		pg.addEdge(node, leaves[n-1])
	}
	return pg
}

func (s *scheduler) cyclicError(prod int, pg *prodGraph, residue []int) *verr.SpecError {
	var names []string
	for _, n := range residue {
		if _, ok := pg.eqNodes[n]; ok {
			continue
		}
		names = append(names, pg.labels[n])
	}
	return &verr.SpecError{
		Code:   verr.CodeCyclicAttribute,
		Cause:  semErrCyclic,
		Detail: fmt.Sprintf("%v: %v", s.at.Grammar.ProductionString(prod), strings.Join(names, ", ")),
	}
}

func (s *scheduler) scheduleProduction(prod int) (*mapper.Schedule, *verr.SpecError) {
	pg := s.buildGraph(prod, true)
	order, residue := pg.sort()
	if len(residue) > 0 {
		return nil, s.cyclicError(prod, pg, residue)
	}

	sched := &mapper.Schedule{
		Equations:    []*mapper.Equation{},
		Construction: []int{},
		Visits:       make([][]*mapper.Visit, s.visitCounts[s.at.Grammar.LHS(prod)]),
	}
	for i := range sched.Visits {
		sched.Visits[i] = []*mapper.Visit{}
	}
	for _, b := range s.at.Buffers[prod] {
		sched.Equations = append(sched.Equations, s.equation(b))
	}
	pass := 0
	for _, n := range order {
		if e, ok := pg.eqNodes[n]; ok {
			if s.at.Buffers[prod][e].Result.Attr.Visit {
				sched.Visits[pass] = append(sched.Visits[pass], &mapper.Visit{
					Kind:     mapper.VisitEval,
					Equation: e,
				})
			} else {
				sched.Construction = append(sched.Construction, e)
			}
			continue
		}
		if v, ok := pg.visitFor[n]; ok {
			sched.Visits[pass] = append(sched.Visits[pass], &mapper.Visit{
				Kind:   mapper.VisitChild,
				Offset: v.offset,
				Pass:   v.pass,
			})
			continue
		}
		if pg.leaves[n] {
			pass++
		}
	}
	return sched, nil
}

func (s *scheduler) equation(b *AttributionBuffer) *mapper.Equation {
	eq := &mapper.Equation{
		Result: mapper.Occurrence{
			Offset: b.Result.Offset,
			Attr:   b.Result.Attr.index,
		},
		Args:       []mapper.Occurrence{},
		ArgCards:   []string{},
		ResultCard: b.Result.Attr.Type.Card.String(),
		Function:   -1,
		Merger:     b.Merger,
	}
	for _, arg := range b.Args {
		eq.Args = append(eq.Args, mapper.Occurrence{
			Offset: arg.Offset,
			Attr:   arg.Attr.index,
		})
		eq.ArgCards = append(eq.ArgCards, arg.Attr.Type.Card.String())
	}
	if b.Function != nil {
		i, ok := s.funcIndex[b.Function]
		if !ok {
			i = len(s.funcs)
			s.funcs = append(s.funcs, b.Function.Name)
			s.funcIndex[b.Function] = i
		}
		eq.Function = i
	}
	return eq
}
