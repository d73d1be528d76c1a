package driver

import (
	"fmt"
	"strings"

	"github.com/nihei9/ordo/driver/lexer"
	"github.com/nihei9/ordo/spec/mapper"
)

type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             *lexer.Token
	ExpectedTerminals []string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v:%v: %v", e.Row+1, e.Col+1, e.Message)
	if e.Token != nil && !e.Token.EOF {
		fmt.Fprintf(&b, ": %q", e.Token.Lexeme)
	}
	if len(e.ExpectedTerminals) > 0 {
		fmt.Fprintf(&b, "; expected: %v", strings.Join(e.ExpectedTerminals, ", "))
	}
	return b.String()
}

type Parser struct {
	gram       *grammarImpl
	toks       TokenStream
	actions    SemanticActionSet
	stateStack []int
}

// NewParser returns a parser of m reading toks. actions may be nil.
func NewParser(m *mapper.CompiledMapper, toks TokenStream, actions SemanticActionSet) *Parser {
	return &Parser{
		gram:    NewGrammar(m),
		toks:    toks,
		actions: actions,
	}
}

// Parse parses the whole input. The parser accepts when it reduces a production of the start
// symbol onto the initial state with the end of input ahead. The first syntax error stops
// the parser and is returned as a *SyntaxError.
func (p *Parser) Parse() error {
	p.stateStack = p.stateStack[:0]
	p.push(p.gram.InitialState())
	tok, err := p.nextToken()
	if err != nil {
		return err
	}

	for {
		if tok.Invalid {
			return &SyntaxError{
				Row:     tok.Row,
				Col:     tok.Col,
				Message: "invalid token",
				Token:   tok,
			}
		}
		term := p.terminal(tok)
		kind, op := p.gram.Action(p.top(), term)
		if kind == mapper.ActionSpecial {
			kind, op = p.resolve(op)
		}
		switch kind {
		case mapper.ActionShift:
			p.push(op)
			if p.actions != nil {
				if err := p.actions.Shift(tok); err != nil {
					return err
				}
			}
			tok, err = p.nextToken()
			if err != nil {
				return err
			}
		case mapper.ActionReduce:
			accepted, err := p.reduce(op, term)
			if err != nil {
				return err
			}
			if p.actions != nil {
				if err := p.actions.Reduce(op); err != nil {
					return err
				}
			}
			if accepted {
				if p.actions != nil {
					return p.actions.Accept()
				}
				return nil
			}
		default:
			return &SyntaxError{
				Row:               tok.Row,
				Col:               tok.Col,
				Message:           "unexpected token",
				Token:             tok,
				ExpectedTerminals: p.searchLookahead(p.top()),
			}
		}
	}
}

func (p *Parser) nextToken() (*lexer.Token, error) {
	return p.toks.Next(p.gram.Mode(p.top()))
}

func (p *Parser) terminal(tok *lexer.Token) int {
	if tok.EOF {
		return p.gram.EOF()
	}
	return tok.TerminalID
}

// resolve picks the action of the first resolver line whose terminals the input starts with.
// The first terminal of every line is the current token.
func (p *Parser) resolve(r int) (mapper.ActionKind, int) {
	for _, l := range p.gram.Resolver(r).Lines {
		if p.toks.Lookahead(l.Terminals[1:]) {
			return mapper.DecodeAction(l.Action)
		}
	}
	return mapper.ActionError, 0
}

func (p *Parser) reduce(prod int, term int) (bool, error) {
	lhs := p.gram.LHS(prod)
	p.pop(p.gram.AlternativeSymbolCount(prod))
	if lhs == p.gram.StartSymbol() && p.top() == p.gram.InitialState() && term == p.gram.EOF() {
		return true, nil
	}
	kind, next := p.gram.Action(p.top(), lhs)
	if kind != mapper.ActionShift {
		return false, fmt.Errorf("no goto entry; state: %v, symbol: %v", p.top(), lhs)
	}
	p.push(next)
	return false, nil
}

func (p *Parser) top() int {
	return p.stateStack[len(p.stateStack)-1]
}

func (p *Parser) push(state int) {
	p.stateStack = append(p.stateStack, state)
}

func (p *Parser) pop(n int) {
	p.stateStack = p.stateStack[:len(p.stateStack)-n]
}

func (p *Parser) searchLookahead(state int) []string {
	kinds := []string{}
	for term := 0; term < p.gram.TerminalCount(); term++ {
		if kind, _ := p.gram.Action(state, term); kind == mapper.ActionError {
			continue
		}
		kinds = append(kinds, p.gram.Terminal(term))
	}
	return kinds
}
