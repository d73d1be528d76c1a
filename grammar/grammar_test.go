package grammar

import (
	"testing"

	verr "github.com/nihei9/ordo/error"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTable(t *testing.T) {
	symTab := NewSymbolTable()
	id, ok := symTab.Lookup(SymbolNameEOF)
	require.True(t, ok)
	assert.Equal(t, SymbolEOF, id)

	a, err := symTab.RegisterTerminal("a")
	require.NoError(t, err)
	again, err := symTab.RegisterTerminal("a")
	require.NoError(t, err)
	assert.Equal(t, a, again)

	s, err := symTab.RegisterNonTerminal("s")
	require.NoError(t, err)
	assert.Greater(t, s, a)

	_, err = symTab.RegisterTerminal("b")
	assert.Error(t, err)
	_, err = symTab.RegisterNonTerminal("a")
	assert.Error(t, err)

	assert.Equal(t, 2, symTab.TerminalCount())
	assert.Equal(t, 3, symTab.Size())
	assert.True(t, symTab.IsTerminal(a))
	assert.False(t, symTab.IsTerminal(s))
}

func TestTranslate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ordo.grammar")
	defer teardown()

	t.Run("a repetition is lowered into a left-recursive helper", func(t *testing.T) {
		s := newTestSymbols(t, []string{"plus", "num"}, []string{"expr", "term"})
		g, err := Translate([]*Rule{
			s.rule("expr", NewSequence(s.sym("term"), Star(NewSequence(s.sym("plus"), s.sym("term"))))),
			s.rule("term", s.sym("num")),
		}, s.symTab)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"expr ::= term expr$2",
			"term ::= num",
			"expr$1 ::= plus term",
			"expr$1 ::= expr$1 plus term",
			"expr$2 ::= expr$1",
			"expr$2 ::=",
		}, productionStrings(g))
		assert.Equal(t, s.id("expr"), g.Start())
		assert.Equal(t, 7, g.SymbolCount())
		assert.Equal(t, 3, g.TerminalCount())
		assert.Len(t, g.Unreachable(), 0)
	})

	t.Run("identical helpers are merged", func(t *testing.T) {
		s := newTestSymbols(t, []string{"x"}, []string{"S", "A", "B"})
		g, err := Translate([]*Rule{
			s.rule("S", NewSequence(s.sym("A"), s.sym("B"))),
			s.rule("A", NewLoop(s.sym("x"))),
			s.rule("B", NewLoop(s.sym("x"))),
		}, s.symTab)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"S ::= A B",
			"A ::= A$1",
			"B ::= A$1",
			"A$1 ::= x",
			"A$1 ::= A$1 x",
		}, productionStrings(g))
		assert.Equal(t, 6, g.SymbolCount())
	})

	t.Run("alternatives become separate productions", func(t *testing.T) {
		s := newTestSymbols(t, []string{"a", "b"}, []string{"S"})
		g, err := Translate([]*Rule{
			s.rule("S", NewChoice(s.sym("a"), s.sym("b"), s.sym("a"))),
		}, s.symTab)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"S ::= a",
			"S ::= b",
		}, productionStrings(g))
		assert.Equal(t, []int{0, 1}, g.Alternatives(s.id("S")))
		assert.Equal(t, []User{{Production: 0, Offset: 0}}, g.Users(s.id("a")))
	})

	t.Run("a range cannot appear in a parser rule", func(t *testing.T) {
		s := newTestSymbols(t, []string{"a"}, []string{"S"})
		_, err := Translate([]*Rule{
			s.rule("S", NewSequence(s.sym("a"), NewRange('0', '9'))),
		}, s.symTab)
		assert.Equal(t, verr.CodeIllegalInParser, verr.CodeOf(err))
	})

	t.Run("a without expression cannot appear in a parser rule", func(t *testing.T) {
		s := newTestSymbols(t, []string{"a", "b"}, []string{"S"})
		_, err := Translate([]*Rule{
			s.rule("S", NewWithout(s.sym("a"), s.sym("b"))),
		}, s.symTab)
		assert.Equal(t, verr.CodeIllegalInParser, verr.CodeOf(err))
	})

	t.Run("a nonterminal without rules is undefined", func(t *testing.T) {
		s := newTestSymbols(t, []string{"a"}, []string{"S", "T"})
		_, err := Translate([]*Rule{
			s.rule("S", NewSequence(s.sym("a"), s.sym("T"))),
		}, s.symTab)
		assert.Equal(t, verr.CodeUndefinedSymbol, verr.CodeOf(err))
	})

	t.Run("symbols unreachable from the start symbol are reported", func(t *testing.T) {
		s := newTestSymbols(t, []string{"a", "b"}, []string{"S", "T"})
		g, err := Translate([]*Rule{
			s.rule("S", s.sym("a")),
			s.rule("T", s.sym("b")),
		}, s.symTab)
		require.NoError(t, err)
		assert.Equal(t, []int{s.id("b"), s.id("T")}, g.Unreachable())
	})
}
