package grammar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	verr "github.com/nihei9/ordo/error"
)

// Rule is an EBNF rule of the parser section.
type Rule struct {
	LHS int
	RHS Expr
}

// User is an occurrence of a symbol on the right-hand side of a production.
type User struct {
	Production int
	Offset     int
}

// Grammar is a context-free grammar over dense symbol IDs. Each production is stored as
// []int{lhs, rhs...}. Helper symbols created by Translate follow the symbols of the table.
type Grammar struct {
	names         []string
	terminalCount int
	start         int
	prods         [][]int
	alternatives  [][]int
	users         [][]User
}

// NewGrammar builds a grammar from plain productions. The start symbol is the left-hand
// side of the first production.
func NewGrammar(symTab *SymbolTable, prods [][]int) (*Grammar, error) {
	if len(prods) == 0 {
		return nil, &verr.SpecError{
			Code:  verr.CodeUndefinedSymbol,
			Cause: semErrNoProduction,
		}
	}
	g := &Grammar{
		names:         symTab.Names(),
		terminalCount: symTab.TerminalCount(),
		start:         prods[0][0],
		prods:         prods,
	}
	if err := g.index(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Grammar) index() error {
	g.alternatives = make([][]int, len(g.names))
	g.users = make([][]User, len(g.names))
	for p, prod := range g.prods {
		for _, sym := range prod {
			if sym < 0 || sym >= len(g.names) {
				return fmt.Errorf("production %v refers to an unknown symbol: %v", p, sym)
			}
		}
		if g.IsTerminal(prod[0]) {
			return fmt.Errorf("a terminal cannot be the left-hand side of a production: %v", g.names[prod[0]])
		}
		g.alternatives[prod[0]] = append(g.alternatives[prod[0]], p)
		for i, sym := range prod[1:] {
			g.users[sym] = append(g.users[sym], User{
				Production: p,
				Offset:     i,
			})
		}
	}

	var undefined []string
	for sym := g.terminalCount; sym < len(g.names); sym++ {
		if len(g.alternatives[sym]) == 0 {
			undefined = append(undefined, g.names[sym])
		}
	}
	if len(undefined) > 0 {
		return &verr.SpecError{
			Code:   verr.CodeUndefinedSymbol,
			Cause:  semErrUndefinedSym,
			Detail: strings.Join(undefined, ", "),
		}
	}
	return nil
}

func (g *Grammar) SymbolCount() int {
	return len(g.names)
}

func (g *Grammar) TerminalCount() int {
	return g.terminalCount
}

func (g *Grammar) IsTerminal(sym int) bool {
	return sym >= 0 && sym < g.terminalCount
}

func (g *Grammar) Start() int {
	return g.start
}

func (g *Grammar) EOF() int {
	return SymbolEOF
}

func (g *Grammar) SymbolName(sym int) string {
	if sym < 0 || sym >= len(g.names) {
		return "<" + strconv.Itoa(sym) + ">"
	}
	return g.names[sym]
}

func (g *Grammar) SymbolNames() []string {
	return append([]string{}, g.names...)
}

func (g *Grammar) ProductionCount() int {
	return len(g.prods)
}

// Production returns the production as []int{lhs, rhs...}. Callers must not modify it.
func (g *Grammar) Production(p int) []int {
	return g.prods[p]
}

func (g *Grammar) LHS(p int) int {
	return g.prods[p][0]
}

func (g *Grammar) RHS(p int) []int {
	return g.prods[p][1:]
}

// Alternatives returns the productions whose left-hand side is sym.
func (g *Grammar) Alternatives(sym int) []int {
	return g.alternatives[sym]
}

// Users returns the occurrences of sym on right-hand sides.
func (g *Grammar) Users(sym int) []User {
	return g.users[sym]
}

// Unreachable returns the symbols that cannot be reached from the start symbol, in ascending order.
// The end of input is always reachable.
func (g *Grammar) Unreachable() []int {
	reached := make([]bool, len(g.names))
	reached[SymbolEOF] = true
	reached[g.start] = true
	stack := []int{g.start}
	for len(stack) > 0 {
		sym := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.alternatives[sym] {
			for _, s := range g.RHS(p) {
				if !reached[s] {
					reached[s] = true
					stack = append(stack, s)
				}
			}
		}
	}
	var syms []int
	for sym, ok := range reached {
		if !ok {
			syms = append(syms, sym)
		}
	}
	return syms
}

func (g *Grammar) ProductionString(p int) string {
	var b strings.Builder
	prod := g.prods[p]
	fmt.Fprintf(&b, "%v ::=", g.SymbolName(prod[0]))
	for _, sym := range prod[1:] {
		fmt.Fprintf(&b, " %v", g.SymbolName(sym))
	}
	return b.String()
}

// Translate lowers EBNF rules into plain productions. Every choice, loop or nested sequence
// gets a helper symbol allocated above the symbols of symTab; loops become left-recursive
// pairs `H' ::= H | H' H`. Identical helpers and duplicate productions are removed and the
// remaining helpers are renumbered densely. The left-hand side of the first rule is the
// start symbol.
func Translate(rules []*Rule, symTab *SymbolTable) (*Grammar, error) {
	if len(rules) == 0 {
		return nil, &verr.SpecError{
			Code:  verr.CodeUndefinedSymbol,
			Cause: semErrNoProduction,
		}
	}

	tr := &translator{
		symTab: symTab,
		base:   symTab.Size(),
	}
	var prods [][]int
	for _, rule := range rules {
		if symTab.IsTerminal(rule.LHS) {
			return nil, fmt.Errorf("a terminal cannot be the left-hand side of a rule: %v", symTab.Name(rule.LHS))
		}
		tr.lhsName = symTab.Name(rule.LHS)
		alts, err := tr.alternatives(rule.RHS)
		if err != nil {
			return nil, err
		}
		for _, alt := range alts {
			prods = append(prods, append([]int{rule.LHS}, alt...))
		}
	}

	tr.mergeHelpers(prods)

	renum := map[int]int{}
	names := symTab.Names()
	for h, alts := range tr.helpers {
		if tr.mergedInto[h] != h {
			continue
		}
		renum[tr.base+h] = len(names)
		names = append(names, tr.helperNames[h])
		for _, alt := range alts {
			prods = append(prods, append([]int{tr.base + h}, alt...))
		}
	}
	for _, prod := range prods {
		for i, sym := range prod {
			if sym >= tr.base {
				prod[i] = renum[tr.resolve(sym)]
			}
		}
	}

	g := &Grammar{
		names:         names,
		terminalCount: symTab.TerminalCount(),
		start:         rules[0].LHS,
		prods:         removeDuplicateProductions(prods),
	}
	if err := g.index(); err != nil {
		return nil, err
	}

	tracer().Debugf("translated %v rules into %v productions; helpers: %v", len(rules), len(g.prods), len(names)-symTab.Size())

	return g, nil
}

type translator struct {
	symTab      *SymbolTable
	base        int
	lhsName     string
	helpers     [][][]int
	helperNames []string
	mergedInto  []int
}

func (tr *translator) newHelper(alts [][]int) int {
	h := len(tr.helpers)
	tr.helpers = append(tr.helpers, alts)
	tr.helperNames = append(tr.helperNames, fmt.Sprintf("%v$%v", tr.lhsName, h+1))
	tr.mergedInto = append(tr.mergedInto, h)
	return tr.base + h
}

func (tr *translator) alternatives(e Expr) ([][]int, error) {
	if c, ok := e.(*Choice); ok {
		var alts [][]int
		for _, item := range c.Items {
			as, err := tr.alternatives(item)
			if err != nil {
				return nil, err
			}
			alts = append(alts, as...)
		}
		return alts, nil
	}
	seq, err := tr.sequence(e)
	if err != nil {
		return nil, err
	}
	return [][]int{seq}, nil
}

func (tr *translator) sequence(e Expr) ([]int, error) {
	switch e := e.(type) {
	case *Sequence:
		seq := []int{}
		for _, item := range e.Items {
			s, err := tr.sequence(item)
			if err != nil {
				return nil, err
			}
			seq = append(seq, s...)
		}
		return seq, nil
	case *Symbol:
		return []int{e.ID}, nil
	}
	sym, err := tr.symbol(e)
	if err != nil {
		return nil, err
	}
	return []int{sym}, nil
}

func (tr *translator) symbol(e Expr) (int, error) {
	switch e := e.(type) {
	case *Symbol:
		return e.ID, nil
	case *Choice:
		alts, err := tr.alternatives(e)
		if err != nil {
			return 0, err
		}
		return tr.newHelper(alts), nil
	case *Sequence:
		seq, err := tr.sequence(e)
		if err != nil {
			return 0, err
		}
		return tr.newHelper([][]int{seq}), nil
	case *Loop:
		body, err := tr.sequence(e.Body)
		if err != nil {
			return 0, err
		}
		h := tr.newHelper(nil)
		tr.helpers[h-tr.base] = [][]int{
			body,
			append([]int{h}, body...),
		}
		return h, nil
	case *Range:
		return 0, &verr.SpecError{
			Code:   verr.CodeIllegalInParser,
			Cause:  semErrRangeInParser,
			Detail: fmt.Sprintf("%v in the rule of %v", e, tr.lhsName),
		}
	case *Without:
		return 0, &verr.SpecError{
			Code:   verr.CodeIllegalInParser,
			Cause:  semErrWithoutInParser,
			Detail: fmt.Sprintf("in the rule of %v", tr.lhsName),
		}
	}
	return 0, fmt.Errorf("unknown expression: %T", e)
}

func (tr *translator) resolve(sym int) int {
	if sym < tr.base {
		return sym
	}
	h := sym - tr.base
	for tr.mergedInto[h] != h {
		h = tr.mergedInto[h]
	}
	return tr.base + h
}

// mergeHelpers merges helpers with identical alternatives until nothing changes.
// A helper referring to itself is compared with the self reference abstracted away.
func (tr *translator) mergeHelpers(prods [][]int) {
	for {
		key2Helper := map[string]int{}
		merged := false
		for h := range tr.helpers {
			if tr.mergedInto[h] != h {
				continue
			}
			key := tr.helperKey(h)
			if rep, ok := key2Helper[key]; ok {
				tr.mergedInto[h] = rep
				merged = true
				continue
			}
			key2Helper[key] = h
		}
		if !merged {
			return
		}
	}
}

func (tr *translator) helperKey(h int) string {
	self := tr.base + h
	alts := make([]string, 0, len(tr.helpers[h]))
	for _, alt := range tr.helpers[h] {
		var b strings.Builder
		for _, sym := range alt {
			sym = tr.resolve(sym)
			if sym == self {
				b.WriteString("@ ")
				continue
			}
			fmt.Fprintf(&b, "%v ", sym)
		}
		alts = append(alts, b.String())
	}
	sort.Strings(alts)
	return strings.Join(alts, "|")
}

func removeDuplicateProductions(prods [][]int) [][]int {
	seen := map[string]struct{}{}
	result := make([][]int, 0, len(prods))
	for _, prod := range prods {
		var b strings.Builder
		for _, sym := range prod {
			fmt.Fprintf(&b, "%v ", sym)
		}
		key := b.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, prod)
	}
	return result
}
