package compiler

import (
	"fmt"
	"strings"

	mlspec "github.com/nihei9/maleeni/spec"
	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/grammar"
	"github.com/nihei9/ordo/grammar/lexical"
	"github.com/nihei9/ordo/semantics"
	"github.com/nihei9/ordo/spec"
)

// Spec is a checked description: the lowered grammar, the scanner rules and the mappings
// over the symbols of one symbol table.
type Spec struct {
	Name     string
	Symbols  *grammar.SymbolTable
	Grammar  *grammar.Grammar
	LexSpec  *lexical.LexSpec
	Mappings []*semantics.Mapping

	// Aliases holds the literal of every anonymous terminal, indexed by terminal.
	Aliases []string
}

type GrammarBuilder struct {
	AST *spec.RootNode

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Spec, error) {
	var name string
	var white []*spec.ParameterNode
	for _, dir := range b.AST.Directives {
		switch dir.Name {
		case "name":
			if len(dir.Parameters) != 1 {
				b.addError(verr.CodeInvalidOption, semErrDirInvalidParam, "'name' takes just one ID parameter", dir.Pos)
				continue
			}
			name = dir.Parameters[0].ID
		case "white":
			if len(dir.Parameters) == 0 {
				b.addError(verr.CodeInvalidOption, semErrDirInvalidParam, "'white' takes at least one ID parameter", dir.Pos)
				continue
			}
			white = append(white, dir.Parameters...)
		default:
			b.addError(verr.CodeInvalidOption, semErrDirInvalidName, dir.Name, dir.Pos)
		}
	}
	if name == "" && len(b.errs) == 0 {
		b.errs = append(b.errs, &verr.SpecError{
			Code:  verr.CodeInvalidOption,
			Cause: semErrNoGrammarName,
		})
	}

	b.checkSpellingInconsistenciesOfUserDefinedIDs(b.AST)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	symTabAndLexSpec := b.genSymbolTableAndLexSpec(b.AST, white)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	g, err := b.genGrammar(b.AST, symTabAndLexSpec)
	if err != nil {
		return nil, err
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	mappings := b.genMappings(b.AST, symTabAndLexSpec.symTab)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	aliases := make([]string, symTabAndLexSpec.symTab.TerminalCount())
	for lit, sym := range symTabAndLexSpec.lit2Sym {
		aliases[sym] = lit
	}

	return &Spec{
		Name:     name,
		Symbols:  symTabAndLexSpec.symTab,
		Grammar:  g,
		LexSpec:  symTabAndLexSpec.lexSpec,
		Mappings: mappings,
		Aliases:  aliases,
	}, nil
}

func (b *GrammarBuilder) addError(code verr.Code, cause error, detail string, pos spec.Position) {
	b.errs = append(b.errs, &verr.SpecError{
		Code:   code,
		Cause:  cause,
		Detail: detail,
		Row:    pos.Row,
		Col:    pos.Col,
	})
}

func (b *GrammarBuilder) checkSpellingInconsistenciesOfUserDefinedIDs(root *spec.RootNode) {
	var ids []string
	for _, rule := range root.Parser {
		ids = append(ids, rule.LHS)
	}
	for _, rule := range root.Scanner {
		ids = append(ids, rule.LHS)
	}

	duplicated := mlspec.FindSpellingInconsistencies(ids)
	for _, dup := range duplicated {
		b.errs = append(b.errs, &verr.SpecError{
			Code:   verr.CodeSpelling,
			Cause:  semErrSpelling,
			Detail: strings.Join(dup, ", "),
		})
	}
}

// walkExpr calls f for e and its subexpressions in depth-first pre-order.
func walkExpr(e *spec.ExprNode, f func(e *spec.ExprNode)) {
	f(e)
	for _, c := range e.Children {
		walkExpr(c, f)
	}
}

type symbolTableAndLexSpec struct {
	symTab  *grammar.SymbolTable
	lexSpec *lexical.LexSpec
	lit2Sym map[string]int
	sym2Lit map[int]string
	parser  map[string]*spec.RuleNode
	scanner map[string]*spec.RuleNode
	// scanSym holds the ID of every scanner rule; helpers get IDs above the symbol table.
	scanSym map[string]int
}

// genSymbolTableAndLexSpec registers the end of input, the terminals and the nonterminals
// in that order. Scanner rules used by the parser or named as white are terminals, in the
// order of the scanner section; string literals of the parser section follow as anonymous
// terminals named x_1, x_2 and so on.
func (b *GrammarBuilder) genSymbolTableAndLexSpec(root *spec.RootNode, white []*spec.ParameterNode) *symbolTableAndLexSpec {
	parser := map[string]*spec.RuleNode{}
	for _, rule := range root.Parser {
		if _, ok := parser[rule.LHS]; ok {
			b.addError(verr.CodeDuplicateSymbol, semErrDuplicateRule, rule.LHS, rule.Pos)
			continue
		}
		parser[rule.LHS] = rule
	}
	scanner := map[string]*spec.RuleNode{}
	for _, rule := range root.Scanner {
		if _, ok := scanner[rule.LHS]; ok {
			b.addError(verr.CodeDuplicateSymbol, semErrDuplicateRule, rule.LHS, rule.Pos)
			continue
		}
		if _, ok := parser[rule.LHS]; ok {
			b.addError(verr.CodeDuplicateSymbol, semErrDuplicateName, rule.LHS, rule.Pos)
			continue
		}
		scanner[rule.LHS] = rule
	}

	used := map[string]bool{}
	var lits []string
	seenLits := map[string]bool{}
	for _, rule := range root.Parser {
		walkExpr(rule.RHS, func(e *spec.ExprNode) {
			switch e.Kind {
			case spec.ExprSymbol:
				if _, ok := parser[e.ID]; ok {
					return
				}
				if _, ok := scanner[e.ID]; ok {
					used[e.ID] = true
					return
				}
				b.addError(verr.CodeUndefinedSymbol, semErrUndefinedSym, e.ID, e.Pos)
			case spec.ExprString:
				if !seenLits[e.Text] {
					seenLits[e.Text] = true
					lits = append(lits, e.Text)
				}
			case spec.ExprChar, spec.ExprRange:
				b.addError(verr.CodeIllegalInParser, semErrRangeInParser, fmt.Sprintf("in the rule of %v", rule.LHS), e.Pos)
			case spec.ExprWithout:
				b.addError(verr.CodeIllegalInParser, semErrWithoutInParser, fmt.Sprintf("in the rule of %v", rule.LHS), e.Pos)
			}
		})
	}

	isWhite := map[string]bool{}
	for _, param := range white {
		if _, ok := scanner[param.ID]; !ok {
			b.addError(verr.CodeUndefinedSymbol, semErrWhiteNotScanner, param.ID, param.Pos)
			continue
		}
		if used[param.ID] {
			b.addError(verr.CodeIllegalInParser, semErrWhiteUsed, param.ID, param.Pos)
			continue
		}
		isWhite[param.ID] = true
	}
	if len(b.errs) > 0 {
		return nil
	}

	symTab := grammar.NewSymbolTable()
	scanSym := map[string]int{}
	for _, rule := range root.Scanner {
		if !used[rule.LHS] && !isWhite[rule.LHS] {
			continue
		}
		sym, err := symTab.RegisterTerminal(rule.LHS)
		if err != nil {
			b.addError(verr.CodeDuplicateSymbol, err, rule.LHS, rule.Pos)
			continue
		}
		scanSym[rule.LHS] = sym
	}
	lit2Sym := map[string]int{}
	sym2Lit := map[int]string{}
	n := 0
	for _, lit := range lits {
		var name string
		for {
			n++
			name = fmt.Sprintf("x_%v", n)
			_, inParser := parser[name]
			_, inScanner := scanner[name]
			if !inParser && !inScanner {
				break
			}
		}
		sym, err := symTab.RegisterTerminal(name)
		if err != nil {
			b.errs = append(b.errs, &verr.SpecError{
				Code:   verr.CodeInternal,
				Cause:  err,
				Detail: lit,
			})
			continue
		}
		lit2Sym[lit] = sym
		sym2Lit[sym] = lit
	}
	for _, rule := range root.Parser {
		if _, err := symTab.RegisterNonTerminal(rule.LHS); err != nil {
			b.addError(verr.CodeDuplicateSymbol, err, rule.LHS, rule.Pos)
		}
	}
	next := symTab.Size()
	for _, rule := range root.Scanner {
		if _, ok := scanSym[rule.LHS]; ok {
			continue
		}
		scanSym[rule.LHS] = next
		next++
	}

	st := &symbolTableAndLexSpec{
		symTab:  symTab,
		lit2Sym: lit2Sym,
		sym2Lit: sym2Lit,
		parser:  parser,
		scanner: scanner,
		scanSym: scanSym,
	}
	st.lexSpec = b.genLexSpec(root, st, white)
	return st
}

func (b *GrammarBuilder) genLexSpec(root *spec.RootNode, st *symbolTableAndLexSpec, white []*spec.ParameterNode) *lexical.LexSpec {
	lexSpec := &lexical.LexSpec{}
	refs := map[string][]string{}
	for _, rule := range root.Scanner {
		rule := rule
		expr := toExpr(rule.RHS, func(e *spec.ExprNode) grammar.Expr {
			if e.Kind == spec.ExprString {
				return grammar.NewString(e.Text)
			}
			if sym, ok := st.scanSym[e.ID]; ok {
				refs[rule.LHS] = append(refs[rule.LHS], e.ID)
				return grammar.NewSymbol(sym)
			}
			if _, ok := st.parser[e.ID]; ok {
				b.addError(verr.CodeUndefinedSymbol, semErrNonTermInScanner, fmt.Sprintf("%v in the rule of %v", e.ID, rule.LHS), e.Pos)
			} else {
				b.addError(verr.CodeUndefinedSymbol, semErrUndefinedSym, e.ID, e.Pos)
			}
			return grammar.Empty()
		})
		sym := st.scanSym[rule.LHS]
		lexSpec.Rules = append(lexSpec.Rules, &lexical.Rule{
			Symbol: sym,
			Name:   rule.LHS,
			Expr:   expr,
			Helper: !st.symTab.IsTerminal(sym),
			Row:    rule.Pos.Row,
			Col:    rule.Pos.Col,
		})
	}
	for sym := 0; sym < st.symTab.TerminalCount(); sym++ {
		lit, ok := st.sym2Lit[sym]
		if !ok {
			continue
		}
		lexSpec.Rules = append(lexSpec.Rules, &lexical.Rule{
			Symbol:  sym,
			Name:    st.symTab.Name(sym),
			Alias:   lit,
			Expr:    grammar.NewString(lit),
			Keyword: true,
		})
	}
	for _, param := range white {
		lexSpec.White = append(lexSpec.White, st.scanSym[param.ID])
	}

	// A helper is used when a terminal rule reaches it.
	reached := map[string]bool{}
	var stack []string
	for _, rule := range root.Scanner {
		if st.symTab.IsTerminal(st.scanSym[rule.LHS]) {
			reached[rule.LHS] = true
			stack = append(stack, rule.LHS)
		}
	}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, ref := range refs[name] {
			if !reached[ref] {
				reached[ref] = true
				stack = append(stack, ref)
			}
		}
	}
	for _, rule := range root.Scanner {
		if !reached[rule.LHS] {
			b.addError(verr.CodeUnreachableSymbol, semErrUnusedHelper, rule.LHS, rule.Pos)
		}
	}

	return lexSpec
}

// toExpr converts an expression node; resolve converts symbol and string nodes.
func toExpr(e *spec.ExprNode, resolve func(e *spec.ExprNode) grammar.Expr) grammar.Expr {
	children := func() []grammar.Expr {
		items := make([]grammar.Expr, len(e.Children))
		for i, c := range e.Children {
			items[i] = toExpr(c, resolve)
		}
		return items
	}
	switch e.Kind {
	case spec.ExprChoice:
		return grammar.NewChoice(children()...)
	case spec.ExprSequence:
		return grammar.NewSequence(children()...)
	case spec.ExprWithout:
		items := children()
		return grammar.NewWithout(items[0], items[1])
	case spec.ExprLoop:
		return grammar.NewLoop(toExpr(e.Children[0], resolve))
	case spec.ExprStar:
		return grammar.Star(toExpr(e.Children[0], resolve))
	case spec.ExprOption:
		return grammar.Optional(toExpr(e.Children[0], resolve))
	case spec.ExprChar:
		return grammar.NewChar([]rune(e.Text)[0])
	case spec.ExprRange:
		return grammar.NewRange(e.From, e.To)
	}
	return resolve(e)
}

func (b *GrammarBuilder) genGrammar(root *spec.RootNode, st *symbolTableAndLexSpec) (*grammar.Grammar, error) {
	rules := make([]*grammar.Rule, 0, len(root.Parser))
	for _, rule := range root.Parser {
		lhs, _ := st.symTab.Lookup(rule.LHS)
		rules = append(rules, &grammar.Rule{
			LHS: lhs,
			RHS: toExpr(rule.RHS, func(e *spec.ExprNode) grammar.Expr {
				if e.Kind == spec.ExprString {
					return grammar.NewSymbol(st.lit2Sym[e.Text])
				}
				sym, _ := st.symTab.Lookup(e.ID)
				return grammar.NewSymbol(sym)
			}),
		})
	}
	g, err := grammar.Translate(rules, st.symTab)
	if err != nil {
		return nil, err
	}

	white := map[int]bool{}
	for _, sym := range st.lexSpec.White {
		white[sym] = true
	}
	for _, sym := range g.Unreachable() {
		if sym >= st.symTab.Size() || white[sym] {
			continue
		}
		name := st.symTab.Name(sym)
		if g.IsTerminal(sym) {
			var pos spec.Position
			if rule, ok := st.scanner[name]; ok {
				pos = rule.Pos
			} else {
				name = fmt.Sprintf("%q", st.sym2Lit[sym])
			}
			b.addError(verr.CodeUnreachableSymbol, semErrUnusedTerminal, name, pos)
			continue
		}
		b.addError(verr.CodeUnreachableSymbol, semErrUnusedProduction, name, st.parser[name].Pos)
	}

	return g, nil
}

func (b *GrammarBuilder) genMappings(root *spec.RootNode, symTab *grammar.SymbolTable) []*semantics.Mapping {
	var mappings []*semantics.Mapping
	for _, m := range root.Mappings {
		sym, ok := symTab.Lookup(m.Symbol)
		if !ok {
			b.addError(verr.CodeUnknownSymbol, semErrUnknownMapping, m.Symbol, m.Pos)
			continue
		}
		mapping := &semantics.Mapping{
			Symbol:   sym,
			Function: m.Function,
			Row:      m.Pos.Row,
			Col:      m.Pos.Col,
		}
		for _, arg := range m.Args {
			a := &semantics.MappingArg{
				Up:  arg.Up,
				Row: arg.Pos.Row,
				Col: arg.Pos.Col,
			}
			for _, src := range arg.Sources {
				id, ok := symTab.Lookup(src)
				if !ok {
					b.addError(verr.CodeUnknownSymbol, semErrUnknownMapping, src, arg.Pos)
					continue
				}
				a.Sources = append(a.Sources, id)
			}
			mapping.Args = append(mapping.Args, a)
		}
		mappings = append(mappings, mapping)
	}
	return mappings
}
