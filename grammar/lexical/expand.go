package lexical

import (
	"fmt"

	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/grammar"
)

// Expand inlines every rule reference and returns the terminal rules with expressions free of
// symbols. A rule that refers to itself, directly or through other rules, is rejected.
func Expand(s *LexSpec) ([]*Rule, error) {
	e := &expander{
		spec:     s,
		done:     map[int]grammar.Expr{},
		visiting: map[int]bool{},
	}
	var terminals []*Rule
	for _, r := range s.Rules {
		expr, err := e.rule(r)
		if err != nil {
			return nil, err
		}
		if r.Helper {
			continue
		}
		terminals = append(terminals, &Rule{
			Symbol:  r.Symbol,
			Name:    r.Name,
			Alias:   r.Alias,
			Expr:    expr,
			Keyword: r.Keyword || isLiteral(expr),
			Row:     r.Row,
			Col:     r.Col,
		})
	}
	return terminals, nil
}

type expander struct {
	spec     *LexSpec
	done     map[int]grammar.Expr
	visiting map[int]bool
}

func (e *expander) rule(r *Rule) (grammar.Expr, error) {
	if expr, ok := e.done[r.Symbol]; ok {
		return expr, nil
	}
	if e.visiting[r.Symbol] {
		return nil, &verr.SpecError{
			Code:   verr.CodeRecursiveHelper,
			Cause:  lexErrRecursiveHelper,
			Detail: r.Name,
			Row:    r.Row,
			Col:    r.Col,
		}
	}
	e.visiting[r.Symbol] = true
	expr, err := e.expr(r.Expr)
	if err != nil {
		return nil, err
	}
	e.visiting[r.Symbol] = false
	e.done[r.Symbol] = expr
	return expr, nil
}

func (e *expander) expr(x grammar.Expr) (grammar.Expr, error) {
	switch x := x.(type) {
	case *grammar.Symbol:
		r, ok := e.spec.rule(x.ID)
		if !ok {
			return nil, &verr.SpecError{
				Code:   verr.CodeUndefinedSymbol,
				Cause:  lexErrUnknownRule,
				Detail: fmt.Sprintf("symbol %v", x.ID),
			}
		}
		return e.rule(r)
	case *grammar.Choice:
		items, err := e.exprs(x.Items)
		if err != nil {
			return nil, err
		}
		return &grammar.Choice{Items: items}, nil
	case *grammar.Sequence:
		items, err := e.exprs(x.Items)
		if err != nil {
			return nil, err
		}
		return &grammar.Sequence{Items: items}, nil
	case *grammar.Loop:
		body, err := e.expr(x.Body)
		if err != nil {
			return nil, err
		}
		return grammar.NewLoop(body), nil
	case *grammar.Without:
		left, err := e.expr(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.expr(x.Right)
		if err != nil {
			return nil, err
		}
		return grammar.NewWithout(left, right), nil
	case *grammar.Range:
		return x, nil
	}
	return nil, fmt.Errorf("unknown expression: %T", x)
}

func (e *expander) exprs(xs []grammar.Expr) ([]grammar.Expr, error) {
	items := make([]grammar.Expr, len(xs))
	for i, x := range xs {
		item, err := e.expr(x)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return items, nil
}

// isLiteral reports whether x matches exactly one non-empty word.
func isLiteral(x grammar.Expr) bool {
	switch x := x.(type) {
	case *grammar.Range:
		return x.Lo == x.Hi
	case *grammar.Sequence:
		if len(x.Items) == 0 {
			return false
		}
		for _, item := range x.Items {
			if !isLiteral(item) {
				return false
			}
		}
		return true
	case *grammar.Choice:
		return len(x.Items) == 1 && isLiteral(x.Items[0])
	}
	return false
}
