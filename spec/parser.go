package spec

import (
	"io"

	verr "github.com/nihei9/ordo/error"
)

type RootNode struct {
	Directives []*DirectiveNode
	Parser     []*RuleNode
	Scanner    []*RuleNode
	Mappings   []*MappingNode
}

type DirectiveNode struct {
	Name       string
	Parameters []*ParameterNode
	Pos        Position
}

type ParameterNode struct {
	ID  string
	Pos Position
}

type RuleNode struct {
	LHS string
	RHS *ExprNode
	Pos Position
}

type ExprKind int

const (
	ExprChoice ExprKind = iota
	ExprSequence
	ExprWithout
	ExprLoop
	ExprStar
	ExprOption
	ExprSymbol
	ExprString
	ExprChar
	ExprRange
)

// ExprNode is a node of a rule's right-hand side. Choice, sequence and without nodes have
// children; the postfix operators have one. Symbol nodes carry ID, string and character
// nodes Text, range nodes From and To.
type ExprNode struct {
	Kind     ExprKind
	Children []*ExprNode
	ID       string
	Text     string
	From     rune
	To       rune
	Pos      Position
}

type MappingNode struct {
	Symbol   string
	Function string
	Args     []*ArgumentNode
	Pos      Position
}

// ArgumentNode is an argument of a mapping: alternative sources, or one source taken from
// above when Up is set.
type ArgumentNode struct {
	Sources []string
	Up      bool
	Pos     Position
}

type section int

const (
	sectionNone section = iota
	sectionParser
	sectionScanner
	sectionMapping
)

func raiseSyntaxError(cause *SyntaxError, pos Position) {
	panic(syntaxErrorAt(cause, pos))
}

func Parse(src io.Reader) (*RootNode, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	p, err := newParser(b)
	if err != nil {
		return nil, err
	}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return root, nil
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
	section   section
}

func newParser(src []byte) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			specErr, ok := err.(*verr.SpecError)
			if !ok {
				panic(err)
			}
			retErr = specErr
		}
	}()
	return p.parseRoot(), nil
}

func (p *parser) parseRoot() *RootNode {
	root := &RootNode{}
	for !p.consume(tokenKindEOF) {
		switch {
		case p.consume(tokenKindDirective):
			root.Directives = append(root.Directives, p.parseDirective())
		case p.consume(tokenKindSection):
			p.enterSection()
		case p.consume(tokenKindID):
			switch p.section {
			case sectionParser:
				root.Parser = append(root.Parser, p.parseRule())
			case sectionScanner:
				root.Scanner = append(root.Scanner, p.parseRule())
			case sectionMapping:
				root.Mappings = append(root.Mappings, p.parseMapping())
			default:
				raiseSyntaxError(synErrNoSection, p.lastTok.pos)
			}
		default:
			raiseSyntaxError(synErrUnexpectedToken, p.peek().pos)
		}
	}
	if len(root.Parser) == 0 {
		raiseSyntaxError(synErrNoParserRule, p.lastTok.pos)
	}
	return root
}

func (p *parser) enterSection() {
	var next section
	switch p.lastTok.text {
	case "parser":
		next = sectionParser
	case "scanner":
		next = sectionScanner
	case "mapping":
		next = sectionMapping
	default:
		raiseSyntaxError(synErrUnknownSection, p.lastTok.pos)
	}
	if next <= p.section {
		raiseSyntaxError(synErrSectionOrder, p.lastTok.pos)
	}
	p.section = next
}

func (p *parser) parseDirective() *DirectiveNode {
	dir := &DirectiveNode{
		Name: p.lastTok.text,
		Pos:  p.lastTok.pos,
	}
	for !p.consume(tokenKindSemicolon) {
		if !p.consume(tokenKindID) {
			if p.peek().kind == tokenKindEOF {
				raiseSyntaxError(synErrDirNoSemicolon, dir.Pos)
			}
			raiseSyntaxError(synErrDirParamNotID, p.peek().pos)
		}
		dir.Parameters = append(dir.Parameters, &ParameterNode{
			ID:  p.lastTok.text,
			Pos: p.lastTok.pos,
		})
	}
	return dir
}

func (p *parser) parseRule() *RuleNode {
	rule := &RuleNode{
		LHS: p.lastTok.text,
		Pos: p.lastTok.pos,
	}
	if !p.consume(tokenKindColon) {
		if p.peek().kind == tokenKindArrow {
			raiseSyntaxError(synErrMappingInGrammar, p.peek().pos)
		}
		raiseSyntaxError(synErrNoColon, p.peek().pos)
	}
	rule.RHS = p.parseChoice()
	if !p.consume(tokenKindSemicolon) {
		raiseSyntaxError(synErrNoSemicolon, p.peek().pos)
	}
	return rule
}

func (p *parser) parseChoice() *ExprNode {
	pos := p.peek().pos
	alts := []*ExprNode{p.parseWithout()}
	for p.consume(tokenKindOr) {
		alts = append(alts, p.parseWithout())
	}
	if len(alts) == 1 {
		return alts[0]
	}
	return &ExprNode{
		Kind:     ExprChoice,
		Children: alts,
		Pos:      pos,
	}
}

func (p *parser) parseWithout() *ExprNode {
	left := p.parseSequence()
	if !p.consume(tokenKindMinus) {
		return left
	}
	pos := p.lastTok.pos
	right := p.parseSequence()
	if len(right.Children) == 0 && right.Kind == ExprSequence {
		raiseSyntaxError(synErrNoPrimary, p.peek().pos)
	}
	return &ExprNode{
		Kind:     ExprWithout,
		Children: []*ExprNode{left, right},
		Pos:      pos,
	}
}

// parseSequence returns a single element as is and an empty sequence for an empty alternative.
func (p *parser) parseSequence() *ExprNode {
	pos := p.peek().pos
	var elems []*ExprNode
	for {
		elem := p.parsePostfix()
		if elem == nil {
			break
		}
		elems = append(elems, elem)
	}
	if len(elems) == 1 {
		return elems[0]
	}
	return &ExprNode{
		Kind:     ExprSequence,
		Children: elems,
		Pos:      pos,
	}
}

func (p *parser) parsePostfix() *ExprNode {
	elem := p.parsePrimary()
	if elem == nil {
		return nil
	}
	for {
		var kind ExprKind
		switch {
		case p.consume(tokenKindStar):
			kind = ExprStar
		case p.consume(tokenKindPlus):
			kind = ExprLoop
		case p.consume(tokenKindOption):
			kind = ExprOption
		default:
			return elem
		}
		elem = &ExprNode{
			Kind:     kind,
			Children: []*ExprNode{elem},
			Pos:      p.lastTok.pos,
		}
	}
}

func (p *parser) parsePrimary() *ExprNode {
	switch {
	case p.consume(tokenKindID):
		if p.peek().kind == tokenKindColon || p.peek().kind == tokenKindArrow {
			raiseSyntaxError(synErrNoSemicolon, p.lastTok.pos)
		}
		return &ExprNode{
			Kind: ExprSymbol,
			ID:   p.lastTok.text,
			Pos:  p.lastTok.pos,
		}
	case p.consume(tokenKindString):
		return &ExprNode{
			Kind: ExprString,
			Text: p.lastTok.text,
			Pos:  p.lastTok.pos,
		}
	case p.consume(tokenKindChar):
		from := p.lastTok
		if !p.consume(tokenKindRange) {
			return &ExprNode{
				Kind: ExprChar,
				Text: from.text,
				Pos:  from.pos,
			}
		}
		if !p.consume(tokenKindChar) {
			raiseSyntaxError(synErrRangeNoChar, p.peek().pos)
		}
		lo, hi := []rune(from.text)[0], []rune(p.lastTok.text)[0]
		if lo > hi {
			raiseSyntaxError(synErrInvalidRange, from.pos)
		}
		return &ExprNode{
			Kind: ExprRange,
			From: lo,
			To:   hi,
			Pos:  from.pos,
		}
	case p.consume(tokenKindRange):
		raiseSyntaxError(synErrRangeNoChar, p.lastTok.pos)
	case p.consume(tokenKindGroupOpen):
		pos := p.lastTok.pos
		expr := p.parseChoice()
		if !p.consume(tokenKindGroupClose) {
			raiseSyntaxError(synErrUnclosedGroup, pos)
		}
		return expr
	}
	return nil
}

func (p *parser) parseMapping() *MappingNode {
	m := &MappingNode{
		Symbol: p.lastTok.text,
		Pos:    p.lastTok.pos,
	}
	if !p.consume(tokenKindArrow) {
		raiseSyntaxError(synErrNoArrow, p.peek().pos)
	}
	if !p.consume(tokenKindID) {
		raiseSyntaxError(synErrNoFunction, p.peek().pos)
	}
	m.Function = p.lastTok.text
	if p.consume(tokenKindGroupOpen) {
		open := p.lastTok.pos
		if !p.consume(tokenKindGroupClose) {
			for {
				m.Args = append(m.Args, p.parseArgument())
				if p.consume(tokenKindComma) {
					continue
				}
				if !p.consume(tokenKindGroupClose) {
					raiseSyntaxError(synErrUnclosedArgs, open)
				}
				break
			}
		}
	}
	if !p.consume(tokenKindSemicolon) {
		raiseSyntaxError(synErrNoSemicolon, p.peek().pos)
	}
	return m
}

func (p *parser) parseArgument() *ArgumentNode {
	arg := &ArgumentNode{
		Pos: p.peek().pos,
	}
	if p.consume(tokenKindUp) {
		arg.Up = true
		if !p.consume(tokenKindID) {
			raiseSyntaxError(synErrNoSource, p.peek().pos)
		}
		arg.Sources = []string{p.lastTok.text}
		return arg
	}
	for {
		if !p.consume(tokenKindID) {
			raiseSyntaxError(synErrNoSource, p.peek().pos)
		}
		arg.Sources = append(arg.Sources, p.lastTok.text)
		if !p.consume(tokenKindOr) {
			return arg
		}
	}
}

func (p *parser) peek() *token {
	if p.peekedTok == nil {
		tok, err := p.lex.next()
		if err != nil {
			if specErr, ok := err.(*verr.SpecError); ok {
				panic(specErr)
			}
			panic(&verr.SpecError{
				Code:  verr.CodeSyntax,
				Cause: err,
			})
		}
		p.peekedTok = tok
	}
	return p.peekedTok
}

func (p *parser) consume(expected tokenKind) bool {
	tok := p.peek()
	if tok.kind != expected {
		return false
	}
	p.peekedTok = nil
	p.lastTok = tok
	return true
}
