package lr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nihei9/ordo/compressor"
	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/spec/mapper"
)

// Table is the dense action table of an automaton. Actions are packed with
// mapper.EncodeAction; row s, column x holds the action of state s on symbol x.
type Table struct {
	pda         *PDA
	symbolCount int
	actions     []int
	resolvers   *resolverSet
}

// CreateTable emits shift, reduce and special actions for every state.
// Shift-reduce conflicts and reduce-reduce conflicts that the lookahead cannot decide are
// collected and returned together; a table is only returned when there are none.
func CreateTable(pda *PDA) (*Table, error) {
	g := pda.Grammar
	t := &Table{
		pda:         pda,
		symbolCount: g.SymbolCount(),
		actions:     make([]int, len(pda.States)*g.SymbolCount()),
		resolvers:   newResolverSet(),
	}

	var errs verr.SpecErrors
	for _, s := range pda.States {
		for sym, dest := range s.Shift {
			t.set(s.ID, sym, mapper.EncodeAction(mapper.ActionShift, dest.ID))
		}
		sym2Items := map[int][]*Item{}
		var syms []int
		for _, it := range s.Items {
			if it.Remaining(g) > 0 {
				continue
			}
			for _, sym := range it.Lookahead.Firsts() {
				if _, ok := sym2Items[sym]; !ok {
					syms = append(syms, sym)
				}
				sym2Items[sym] = append(sym2Items[sym], it)
			}
		}
		sort.Ints(syms)

		for _, sym := range syms {
			items := sym2Items[sym]
			if kind, _ := mapper.DecodeAction(t.get(s.ID, sym)); kind != mapper.ActionError {
				for _, it := range items {
					what := fmt.Sprintf("%v and reduce %v", kind, t.prodString(it.Production))
					errs = append(errs, &verr.SpecError{
						Code:   verr.CodeConflictSR,
						Cause:  errShiftReduce,
						Detail: t.conflictDetail(s, sym, what),
					})
				}
				continue
			}
			if len(items) == 1 {
				t.set(s.ID, sym, mapper.EncodeAction(mapper.ActionReduce, items[0].Production))
				continue
			}
			r, err := t.resolveReduceReduce(s, sym, items)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			idx := t.resolvers.register(r, s.ID, sym)
			t.set(s.ID, sym, mapper.EncodeAction(mapper.ActionSpecial, idx))
		}
	}
	// The driver accepts when a start production is reduced onto the initial state with
	// the end of input ahead, so the state after the start symbol must not act on it.
	if s, ok := pda.States[0].Shift[g.Start()]; ok {
		if kind, _ := t.Action(s.ID, g.EOF()); kind != mapper.ActionError {
			errs = append(errs, &verr.SpecError{
				Code:   verr.CodeConflictSR,
				Cause:  errShiftReduce,
				Detail: t.conflictDetail(s, g.EOF(), fmt.Sprintf("accept and %v", kind)),
			})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	tracer().Debugf("action table: %v states x %v symbols, %v resolvers", len(pda.States), t.symbolCount, len(t.resolvers.resolvers))

	return t, nil
}

func (t *Table) set(state, sym, action int) {
	t.actions[state*t.symbolCount+sym] = action
}

func (t *Table) get(state, sym int) int {
	return t.actions[state*t.symbolCount+sym]
}

// Action returns the decoded action of state on sym.
func (t *Table) Action(state, sym int) (mapper.ActionKind, int) {
	return mapper.DecodeAction(t.get(state, sym))
}

func (t *Table) StateCount() int {
	return len(t.pda.States)
}

func (t *Table) PDA() *PDA {
	return t.pda
}

func (t *Table) Resolvers() []*mapper.ConflictResolver {
	return t.resolvers.resolvers
}

// Shiftable returns the terminals state has a non-error action on, in ascending order.
func (t *Table) Shiftable(state int) []int {
	var syms []int
	for sym := 0; sym < t.pda.Grammar.TerminalCount(); sym++ {
		if kind, _ := t.Action(state, sym); kind != mapper.ActionError {
			syms = append(syms, sym)
		}
	}
	return syms
}

// ParserTable compresses the table. modes holds the scanner mode of every state.
func (t *Table) ParserTable(modes []int) (*mapper.ParserTable, error) {
	g := t.pda.Grammar
	if len(modes) != len(t.pda.States) {
		return nil, fmt.Errorf("mode count mismatch; states: %v, modes: %v", len(t.pda.States), len(modes))
	}
	orig, err := compressor.NewOriginalTable(t.actions, t.symbolCount)
	if err != nil {
		return nil, err
	}
	tab := compressor.NewActionTable(mapper.EncodeAction(mapper.ActionError, 0))
	if err := tab.Compress(orig); err != nil {
		return nil, err
	}

	lhs := make([]int, g.ProductionCount())
	rhsLens := make([]int, g.ProductionCount())
	for p := range lhs {
		lhs[p] = g.LHS(p)
		rhsLens[p] = len(g.RHS(p))
	}

	return &mapper.ParserTable{
		StateCount:    len(t.pda.States),
		SymbolCount:   t.symbolCount,
		TerminalCount: g.TerminalCount(),
		StartState:    0,
		StartSymbol:   g.Start(),
		EOFSymbol:     g.EOF(),
		LHS:           lhs,
		RHSLengths:    rhsLens,
		Modes:         modes,
		Actions:       tab,
	}, nil
}

// Report fills the automaton part of a listing.
func (t *Table) Report(rep *mapper.Report, modes []int) {
	g := t.pda.Grammar
	for _, s := range t.pda.States {
		sr := &mapper.StateReport{
			Number: s.ID,
		}
		if s.ID < len(modes) {
			sr.Mode = modes[s.ID]
		}
		for _, it := range s.Items {
			sr.Items = append(sr.Items, it.String(g))
		}
		for _, sym := range s.ShiftSymbols() {
			sr.Shift = append(sr.Shift, &mapper.Transition{
				Symbol: g.SymbolName(sym),
				State:  s.Shift[sym].ID,
			})
		}
		for _, it := range s.Items {
			if it.Remaining(g) > 0 {
				continue
			}
			red := &mapper.Reduce{
				Production: it.Production,
			}
			for _, p := range it.Lookahead.Slice() {
				red.Lookahead = append(red.Lookahead, t.symbolsString(p.Symbols()))
			}
			sr.Reduce = append(sr.Reduce, red)
		}
		rep.States = append(rep.States, sr)
	}
	for i, r := range t.resolvers.resolvers {
		origin := t.resolvers.origins[i]
		rr := &mapper.ResolverReport{
			Number: i,
			State:  origin.state,
			Symbol: g.SymbolName(origin.symbol),
		}
		for _, l := range r.Lines {
			_, prod := mapper.DecodeAction(l.Action)
			rr.Lines = append(rr.Lines, fmt.Sprintf("%v => reduce %v", t.symbolsString(l.Terminals), t.prodString(prod)))
		}
		rep.Resolvers = append(rep.Resolvers, rr)
	}
}

func (t *Table) String() string {
	var b strings.Builder
	g := t.pda.Grammar
	for _, s := range t.pda.States {
		fmt.Fprintf(&b, "%v:", s.ID)
		for sym := 0; sym < t.symbolCount; sym++ {
			kind, op := t.Action(s.ID, sym)
			if kind == mapper.ActionError {
				continue
			}
			fmt.Fprintf(&b, " %v=%v/%v", g.SymbolName(sym), kind, op)
		}
		b.WriteString("\n")
	}
	return b.String()
}
