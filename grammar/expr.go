package grammar

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Expr is an EBNF expression. The set of implementations is closed:
// *Range, *Choice, *Sequence, *Loop, *Symbol and *Without.
type Expr interface {
	isExpr()
	String() string
}

// Range matches one code point in [Lo, Hi]. Ranges are lexical only.
type Range struct {
	Lo rune
	Hi rune
}

// Choice matches any one of its items.
type Choice struct {
	Items []Expr
}

// Sequence matches its items one after another. An empty sequence matches the empty word.
type Sequence struct {
	Items []Expr
}

// Loop matches its body one or more times.
type Loop struct {
	Body Expr
}

// Symbol refers to a grammar symbol by ID.
type Symbol struct {
	ID int
}

// Without matches the words of Left that are not words of Right. Lexical only.
type Without struct {
	Left  Expr
	Right Expr
}

func (*Range) isExpr()    {}
func (*Choice) isExpr()   {}
func (*Sequence) isExpr() {}
func (*Loop) isExpr()     {}
func (*Symbol) isExpr()   {}
func (*Without) isExpr()  {}

func NewRange(lo, hi rune) *Range {
	return &Range{Lo: lo, Hi: hi}
}

func NewChar(c rune) *Range {
	return &Range{Lo: c, Hi: c}
}

// NewString returns the sequence of the code points of s.
func NewString(s string) Expr {
	items := make([]Expr, 0, utf8.RuneCountInString(s))
	for _, c := range s {
		items = append(items, NewChar(c))
	}
	if len(items) == 1 {
		return items[0]
	}
	return &Sequence{Items: items}
}

func NewChoice(items ...Expr) Expr {
	if len(items) == 1 {
		return items[0]
	}
	return &Choice{Items: items}
}

func NewSequence(items ...Expr) Expr {
	if len(items) == 1 {
		return items[0]
	}
	return &Sequence{Items: items}
}

func NewLoop(body Expr) *Loop {
	return &Loop{Body: body}
}

func NewSymbol(id int) *Symbol {
	return &Symbol{ID: id}
}

func NewWithout(left, right Expr) *Without {
	return &Without{Left: left, Right: right}
}

// Empty returns the expression matching only the empty word.
func Empty() *Sequence {
	return &Sequence{}
}

// Optional matches e or the empty word.
func Optional(e Expr) *Choice {
	return &Choice{Items: []Expr{e, Empty()}}
}

// Star matches e zero or more times.
func Star(e Expr) *Choice {
	return &Choice{Items: []Expr{NewLoop(e), Empty()}}
}

// Walk calls f for e and its subexpressions in depth-first pre-order.
// When f returns false, the subexpressions of that node are skipped.
func Walk(e Expr, f func(e Expr) bool) {
	if !f(e) {
		return
	}
	switch e := e.(type) {
	case *Choice:
		for _, item := range e.Items {
			Walk(item, f)
		}
	case *Sequence:
		for _, item := range e.Items {
			Walk(item, f)
		}
	case *Loop:
		Walk(e.Body, f)
	case *Without:
		Walk(e.Left, f)
		Walk(e.Right, f)
	}
}

// ReferencedSymbols returns the IDs of all symbols e refers to, in order of first appearance.
func ReferencedSymbols(e Expr) []int {
	seen := map[int]struct{}{}
	var ids []int
	Walk(e, func(e Expr) bool {
		if sym, ok := e.(*Symbol); ok {
			if _, ok := seen[sym.ID]; !ok {
				seen[sym.ID] = struct{}{}
				ids = append(ids, sym.ID)
			}
		}
		return true
	})
	return ids
}

func (e *Range) String() string {
	if e.Lo == e.Hi {
		return fmt.Sprintf("%q", e.Lo)
	}
	return fmt.Sprintf("%q..%q", e.Lo, e.Hi)
}

func (e *Choice) String() string {
	return joinExprs(e.Items, " | ")
}

func (e *Sequence) String() string {
	if len(e.Items) == 0 {
		return "()"
	}
	return joinExprs(e.Items, " ")
}

func (e *Loop) String() string {
	return fmt.Sprintf("(%v)+", e.Body)
}

func (e *Symbol) String() string {
	return fmt.Sprintf("#%v", e.ID)
}

func (e *Without) String() string {
	return fmt.Sprintf("(%v - %v)", e.Left, e.Right)
}

func joinExprs(items []Expr, sep string) string {
	var b strings.Builder
	b.WriteString("(")
	for i, item := range items {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(item.String())
	}
	b.WriteString(")")
	return b.String()
}
