package compiler

import (
	"bytes"
	"fmt"
	"testing"

	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/semantics"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ordo.lr")
	defer teardown()

	s := mustBuild(t, calcSrc)
	m, rep, err := Compile(s)
	require.NoError(t, err)
	assert.Nil(t, rep)

	assert.Equal(t, "calc", m.Name)
	assert.Equal(t, 1, m.K)
	assert.Equal(t, s.Grammar.SymbolNames(), m.Symbols)
	assert.Equal(t, s.Grammar.TerminalCount(), m.TerminalCount)
	assert.Equal(t, s.Aliases, m.Aliases)
	assert.Empty(t, m.Resolvers)
	assert.Equal(t, m.Parser.StateCount, len(m.Parser.Modes))
	assert.Equal(t, s.Grammar.Start(), m.Parser.StartSymbol)
	assert.Equal(t, []int{2}, m.Scanner.White)
	assert.ElementsMatch(t, []string{"int", "first", "product", "sum"}, m.Oag.Functions)

	fp, err := m.ComputeFingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp, m.Fingerprint)
	assert.NotEmpty(t, m.Fingerprint)
}

func TestCompile_Options(t *testing.T) {
	s := mustBuild(t, calcSrc)
	tests := []struct {
		caption string
		opts    []CompileOption
		cause   error
	}{
		{
			caption: "k must be at least 1",
			opts:    []CompileOption{Lookahead(0)},
			cause:   semErrInvalidLookahead,
		},
		{
			caption: "k must be at most 4",
			opts:    []CompileOption{Lookahead(5)},
			cause:   semErrInvalidLookahead,
		},
		{
			caption: "at least one thread is needed",
			opts:    []CompileOption{Threads(0)},
			cause:   semErrInvalidThreads,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, _, err := Compile(s, tt.opts...)
			require.Error(t, err)
			specErr, ok := err.(*verr.SpecError)
			require.True(t, ok, "unexpected error type: %T", err)
			assert.Equal(t, verr.CodeInvalidOption, specErr.Code)
			assert.Equal(t, tt.cause, specErr.Cause)
		})
	}
}

func TestCompile_ThreadIndependence(t *testing.T) {
	s := mustBuild(t, calcSrc)
	for _, k := range []int{1, 2} {
		base, _, err := Compile(s, Lookahead(k))
		require.NoError(t, err)
		for _, threads := range []int{2, 8} {
			t.Run(fmt.Sprintf("k=%v threads=%v", k, threads), func(t *testing.T) {
				m, _, err := Compile(s, Lookahead(k), Threads(threads))
				require.NoError(t, err)
				assert.Equal(t, base.Fingerprint, m.Fingerprint)
			})
		}
	}
}

func TestCompile_Output(t *testing.T) {
	s := mustBuild(t, calcSrc)
	var verbose, listing, stat bytes.Buffer
	m, rep, err := Compile(s, WithOutput(Output{
		Verbose:    &verbose,
		Listing:    &listing,
		Statistics: &stat,
	}))
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.Contains(t, verbose.String(), "LR(1) automaton")
	assert.Contains(t, stat.String(), "name: calc")
	assert.Contains(t, stat.String(), fmt.Sprintf("resolvers: %v", len(m.Resolvers)))

	lst := listing.String()
	assert.Contains(t, lst, "# calc (LR(1))")
	assert.Contains(t, lst, "## Productions")
	assert.Contains(t, lst, "## States")
	assert.Contains(t, lst, "## Scanner modes")
	assert.Contains(t, lst, "## Visits")

	assert.Len(t, rep.States, m.Parser.StateCount)
	assert.Len(t, rep.Productions, len(m.Parser.LHS))
	assert.Len(t, rep.Modes, m.Scanner.ModeCount)
	for _, sym := range rep.Symbols {
		if sym.Terminal {
			assert.Empty(t, sym.First, sym.Name)
			continue
		}
		assert.NotEmpty(t, sym.First, sym.Name)
	}
}

func TestCompile_TwoVisits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ordo.semantics")
	defer teardown()

	src := `
#name passes;

%%parser
top : hdr p ;
p   : a y ;
a   : w x ;
w   : num ;
hdr : num ;
x   : "!" ;
y   : "?" ;

%%scanner
num   : ('0'..'9')+ ;
space : ' '+ ;
#white space;

%%mapping
num => int ;
hdr => first(num) ;
w   => %v(num, ^hdr) ;
a   => first(w) ;
y   => first(^a) ;
x   => first(^y) ;
`
	for _, fn := range []string{"pair", "sum"} {
		t.Run(fn, func(t *testing.T) {
			s := mustBuild(t, fmt.Sprintf(src, fn))
			var listing bytes.Buffer
			_, _, err := Compile(s, WithOutput(Output{
				Listing: &listing,
			}))
			require.NoError(t, err)
			assert.Contains(t, listing.String(), "visit 2 of $1")
		})
	}
}

func TestCompile_Reporting(t *testing.T) {
	s := mustBuild(t, calcSrc)
	_, rep, err := Compile(s, EnableReporting())
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, "calc", rep.Name)
	assert.Equal(t, 1, rep.K)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		opts    []CompileOption
		code    verr.Code
	}{
		{
			caption: "an ambiguous grammar has a shift/reduce conflict",
			src: `
#name amb;
%parser
e : e "+" e | n ;
%scanner
n : '0'..'9' ;
`,
			code: verr.CodeConflictSR,
		},
		{
			caption: "a terminal accepting the empty word is rejected",
			src: `
#name empty;
%parser
s : a ;
%scanner
a : 'a'* ;
`,
			code: verr.CodeScannerEmptyWord,
		},
		{
			caption: "a function missing from the library is rejected",
			src: `
#name fn;
%parser
s : a ;
%scanner
a : 'a' ;
%mapping
s => nothing(a) ;
`,
			code: verr.CodeUnknownFunction,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			s := mustBuild(t, tt.src)
			_, _, err := Compile(s, tt.opts...)
			require.Error(t, err)
			assert.Equal(t, tt.code, verr.CodeOf(err))
		})
	}
}

func TestCompile_Library(t *testing.T) {
	s := mustBuild(t, `
#name lib;
%parser
s : a ;
%scanner
a : 'a' ;
%mapping
a => shout ;
`)
	_, _, err := Compile(s)
	require.Error(t, err)

	lib := semantics.Standard().MustRegister("shout", func(s string) string { return s + "!" })
	m, _, err := Compile(s, WithLibrary(lib))
	require.NoError(t, err)
	assert.Contains(t, m.Oag.Functions, "shout")
}
