package fa

import (
	"fmt"

	"github.com/nihei9/ordo/grammar"
	"github.com/nihei9/ordo/utf8"
)

// Rule is a lexical rule whose expression no longer refers to other rules.
type Rule struct {
	Symbol int
	Expr   grammar.Expr
}

type fragment struct {
	start int
	end   int
}

type nfaBuilder struct {
	a *FA
}

// BuildNFA builds one NFA recognizing the union of rules. The end state of every rule is
// labeled with its symbol.
func BuildNFA(rules []*Rule) (*FA, error) {
	b := &nfaBuilder{
		a: newFA(),
	}
	b.a.Start = b.a.addState()
	for _, r := range rules {
		f, err := b.build(r.Expr)
		if err != nil {
			return nil, fmt.Errorf("in the rule of symbol %v: %w", r.Symbol, err)
		}
		b.a.addEps(b.a.Start, f.start)
		b.a.States[f.end].Label = newLabel(r.Symbol)
	}

	tracer().Debugf("NFA: %v rules, %v states", len(rules), len(b.a.States))

	return b.a, nil
}

func (b *nfaBuilder) build(e grammar.Expr) (fragment, error) {
	switch e := e.(type) {
	case *grammar.Range:
		return b.buildRange(e)
	case *grammar.Sequence:
		start := b.a.addState()
		end := start
		for _, item := range e.Items {
			f, err := b.build(item)
			if err != nil {
				return fragment{}, err
			}
			b.a.addEps(end, f.start)
			end = f.end
		}
		return fragment{start: start, end: end}, nil
	case *grammar.Choice:
		start := b.a.addState()
		end := b.a.addState()
		for _, item := range e.Items {
			f, err := b.build(item)
			if err != nil {
				return fragment{}, err
			}
			b.a.addEps(start, f.start)
			b.a.addEps(f.end, end)
		}
		return fragment{start: start, end: end}, nil
	case *grammar.Loop:
		body, err := b.build(e.Body)
		if err != nil {
			return fragment{}, err
		}
		start := b.a.addState()
		end := b.a.addState()
		b.a.addEps(start, body.start)
		b.a.addEps(body.end, end)
		b.a.addEps(body.end, body.start)
		return fragment{start: start, end: end}, nil
	case *grammar.Without:
		return b.buildWithout(e)
	case *grammar.Symbol:
		return fragment{}, fmt.Errorf("an unexpanded symbol reference: %v", e)
	}
	return fragment{}, fmt.Errorf("unknown expression: %T", e)
}

func (b *nfaBuilder) buildRange(r *grammar.Range) (fragment, error) {
	seqs, err := utf8.GenByteSeqs(r.Lo, r.Hi)
	if err != nil {
		return fragment{}, err
	}
	start := b.a.addState()
	end := b.a.addState()
	for _, seq := range seqs {
		from := start
		for i, br := range seq {
			to := end
			if i < len(seq)-1 {
				to = b.a.addState()
			}
			b.a.addTrans(from, br.From, br.To, to)
			from = to
		}
	}
	return fragment{start: start, end: end}, nil
}

// buildWithout builds both operands as separate minimal DFAs, subtracts them and embeds
// the result as a fragment.
func (b *nfaBuilder) buildWithout(e *grammar.Without) (fragment, error) {
	left, err := compileExpr(e.Left)
	if err != nil {
		return fragment{}, err
	}
	right, err := compileExpr(e.Right)
	if err != nil {
		return fragment{}, err
	}
	return b.embed(Without(left, right)), nil
}

func (b *nfaBuilder) embed(d *FA) fragment {
	if d.Start == d.Error {
		return fragment{start: b.a.addState(), end: b.a.addState()}
	}
	ids := make([]int, len(d.States))
	for i := range d.States {
		if i == d.Error {
			continue
		}
		ids[i] = b.a.addState()
	}
	end := b.a.addState()
	for i, s := range d.States {
		if i == d.Error {
			continue
		}
		for _, t := range s.Trans {
			if t.Dest == d.Error {
				continue
			}
			b.a.addTrans(ids[i], t.Lo, t.Hi, ids[t.Dest])
		}
		if s.Label != nil {
			b.a.addEps(ids[i], end)
		}
	}
	return fragment{start: ids[d.Start], end: end}
}

// compileExpr returns the minimal complete DFA of a single expression.
func compileExpr(e grammar.Expr) (*FA, error) {
	nfa, err := BuildNFA([]*Rule{{Symbol: 0, Expr: e}})
	if err != nil {
		return nil, err
	}
	return nfa.Determinize().Minimize(), nil
}
