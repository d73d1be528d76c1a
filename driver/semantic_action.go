package driver

import (
	"fmt"

	"github.com/nihei9/ordo/driver/lexer"
	"github.com/nihei9/ordo/semantics"
	"github.com/nihei9/ordo/spec/mapper"
)

type SemanticActionSet interface {
	// Shift runs when the driver shifts a terminal onto the state stack. `tok` is the token
	// of the terminal.
	Shift(tok *lexer.Token) error

	// Reduce runs when the driver reduces an RHS of a production to its LHS. `prod` is
	// a number of the production.
	Reduce(prod int) error

	// Accept runs when the driver accepts an input.
	Accept() error
}

var _ SemanticActionSet = &Evaluator{}

type equation struct {
	*mapper.Equation
	fn         *semantics.Function
	argCards   []semantics.Cardinality
	resultCard semantics.Cardinality
}

// Evaluator computes the attributes of a mapper while the parser runs. Construction
// equations are evaluated on every reduce; the remaining ones are evaluated by the visits of
// the finished tree, each node visited as many times as its symbol has visits. A subtree that
// no visit can reach any more is released to the arena as soon as possible.
type Evaluator struct {
	oag       *mapper.Oag
	lhs       []int
	rhsLen    []int
	terminals []*equation
	prods     [][]*equation
	arena     *Arena
	stack     []int
	root      int
	result    interface{}
}

// NewEvaluator resolves every function of m in lib.
func NewEvaluator(m *mapper.CompiledMapper, lib *semantics.Library) (*Evaluator, error) {
	oag := m.Oag
	funcs := make([]*semantics.Function, len(oag.Functions))
	for i, name := range oag.Functions {
		f, ok := lib.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("function not found in the library: %v", name)
		}
		funcs[i] = f
	}
	compile := func(eq *mapper.Equation) (*equation, error) {
		if eq == nil {
			return nil, nil
		}
		e := &equation{
			Equation: eq,
			argCards: make([]semantics.Cardinality, len(eq.ArgCards)),
		}
		if eq.Function >= 0 {
			e.fn = funcs[eq.Function]
		}
		for i, c := range eq.ArgCards {
			card, err := semantics.ParseCardinality(c)
			if err != nil {
				return nil, err
			}
			e.argCards[i] = card
		}
		card, err := semantics.ParseCardinality(eq.ResultCard)
		if err != nil {
			return nil, err
		}
		e.resultCard = card
		return e, nil
	}

	ev := &Evaluator{
		oag:       oag,
		lhs:       m.Parser.LHS,
		rhsLen:    m.Parser.RHSLengths,
		terminals: make([]*equation, len(oag.Terminals)),
		prods:     make([][]*equation, len(oag.Productions)),
		arena:     NewArena(),
		root:      -1,
	}
	for sym, eq := range oag.Terminals {
		e, err := compile(eq)
		if err != nil {
			return nil, err
		}
		ev.terminals[sym] = e
	}
	for prod, sched := range oag.Productions {
		if sched == nil {
			continue
		}
		ev.prods[prod] = make([]*equation, len(sched.Equations))
		for i, eq := range sched.Equations {
			e, err := compile(eq)
			if err != nil {
				return nil, err
			}
			ev.prods[prod][i] = e
		}
	}
	return ev, nil
}

func (ev *Evaluator) Shift(tok *lexer.Token) error {
	sym := tok.TerminalID
	node := ev.arena.Alloc(sym, -1, len(ev.oag.Attributes[sym]), nil)
	ev.stack = append(ev.stack, node)
	eq := ev.terminals[sym]
	if eq == nil {
		return nil
	}
	v, err := eq.fn.Call([]interface{}{string(tok.Lexeme)}, []semantics.Cardinality{semantics.Value})
	if err != nil {
		return fmt.Errorf("%v:%v: %w", tok.Row+1, tok.Col+1, err)
	}
	ev.arena.Node(node).Attrs[eq.Result.Attr] = v
	return nil
}

func (ev *Evaluator) Reduce(prod int) error {
	lhs := ev.lhs[prod]
	n := ev.rhsLen[prod]
	children := ev.stack[len(ev.stack)-n:]
	node := ev.arena.Alloc(lhs, prod, len(ev.oag.Attributes[lhs]), children)
	ev.stack = append(ev.stack[:len(ev.stack)-n], node)

	if sched := ev.oag.Productions[prod]; sched != nil {
		for _, i := range sched.Construction {
			if err := ev.eval(node, ev.prods[prod][i]); err != nil {
				return err
			}
		}
	}
	if !ev.oag.NeedsVisit(lhs) {
		ev.arena.ReleaseChildren(node)
	}
	return nil
}

func (ev *Evaluator) Accept() error {
	if len(ev.stack) != 1 {
		return fmt.Errorf("the evaluator stack must hold exactly one node; got: %v", len(ev.stack))
	}
	root := ev.stack[0]
	ev.stack = ev.stack[:0]
	sym := ev.arena.Node(root).Symbol
	for pass := 0; pass < ev.oag.VisitCounts[sym]; pass++ {
		if err := ev.visit(root, pass); err != nil {
			return err
		}
	}
	if main := ev.oag.Main[sym]; main >= 0 {
		ev.result = ev.arena.Node(root).Attrs[main]
	}
	ev.root = root
	tracer().Debugf("accepted; nodes allocated: %v, live: %v", ev.arena.Cap(), ev.arena.Live())
	return nil
}

// visit runs visit pass of node. The children are released after the last visit.
func (ev *Evaluator) visit(node int, pass int) error {
	n := ev.arena.Node(node)
	prod := n.Production
	if prod < 0 {
		return nil
	}
	last := pass == ev.oag.VisitCounts[n.Symbol]-1
	sched := ev.oag.Productions[prod]
	if sched != nil && pass < len(sched.Visits) {
		for _, v := range sched.Visits[pass] {
			switch v.Kind {
			case mapper.VisitEval:
				if err := ev.eval(node, ev.prods[prod][v.Equation]); err != nil {
					return err
				}
			case mapper.VisitChild:
				if err := ev.visit(ev.arena.Node(node).Children[v.Offset], v.Pass); err != nil {
					return err
				}
			}
		}
	}
	if last {
		ev.arena.ReleaseChildren(node)
	}
	return nil
}

func (ev *Evaluator) occurrence(node int, o mapper.Occurrence) *interface{} {
	n := node
	if o.Offset >= 0 {
		n = ev.arena.Node(node).Children[o.Offset]
	}
	return &ev.arena.Node(n).Attrs[o.Attr]
}

func (ev *Evaluator) eval(node int, eq *equation) error {
	args := make([]interface{}, len(eq.Args))
	for i, a := range eq.Args {
		args[i] = *ev.occurrence(node, a)
	}
	var v interface{}
	var err error
	if eq.fn != nil {
		v, err = eq.fn.Call(args, eq.argCards)
	} else {
		v, err = semantics.Merge(eq.Merger, args, eq.argCards, eq.resultCard)
	}
	if err != nil {
		return err
	}
	*ev.occurrence(node, eq.Result) = v
	return nil
}

// Result returns the main attribute of the root, or nil when the start symbol is not mapped.
func (ev *Evaluator) Result() interface{} {
	return ev.result
}

// Release returns the tree of the last accepted input to the arena.
func (ev *Evaluator) Release() {
	if ev.root >= 0 {
		ev.arena.Release(ev.root)
		ev.root = -1
	}
	ev.result = nil
}

func (ev *Evaluator) Arena() *Arena {
	return ev.arena
}
