package driver

import "github.com/nihei9/ordo/spec/mapper"

type grammarImpl struct {
	m *mapper.CompiledMapper
}

func NewGrammar(m *mapper.CompiledMapper) *grammarImpl {
	return &grammarImpl{
		m: m,
	}
}

func (g *grammarImpl) InitialState() int {
	return g.m.Parser.StartState
}

func (g *grammarImpl) StartSymbol() int {
	return g.m.Parser.StartSymbol
}

func (g *grammarImpl) Action(state int, sym int) (mapper.ActionKind, int) {
	return g.m.Parser.Action(state, sym)
}

func (g *grammarImpl) Mode(state int) int {
	return g.m.Parser.Modes[state]
}

func (g *grammarImpl) Resolver(r int) *mapper.ConflictResolver {
	return g.m.Resolvers[r]
}

func (g *grammarImpl) AlternativeSymbolCount(prod int) int {
	return g.m.Parser.RHSLengths[prod]
}

func (g *grammarImpl) TerminalCount() int {
	return g.m.Parser.TerminalCount
}

func (g *grammarImpl) LHS(prod int) int {
	return g.m.Parser.LHS[prod]
}

func (g *grammarImpl) EOF() int {
	return g.m.Parser.EOFSymbol
}

func (g *grammarImpl) Terminal(terminal int) string {
	if terminal == g.EOF() {
		return "<eof>"
	}
	return g.m.TerminalText(terminal)
}
