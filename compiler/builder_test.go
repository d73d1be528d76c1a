package compiler

import (
	"errors"
	"testing"

	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/grammar"
)

func TestGrammarBuilder_Build(t *testing.T) {
	s := mustBuild(t, calcSrc)

	if s.Name != "calc" {
		t.Fatalf("unexpected name: %v", s.Name)
	}

	// Terminals come first in the order of the scanner section, literals follow.
	expectedTerminals := []string{"$eof", "num", "space", "x_1", "x_2", "x_3", "x_4"}
	for i, name := range expectedTerminals {
		if got := s.Symbols.Name(i); got != name {
			t.Fatalf("unexpected terminal #%v; want: %v, got: %v", i, name, got)
		}
	}
	if s.Symbols.TerminalCount() != len(expectedTerminals) {
		t.Fatalf("unexpected terminal count: %v", s.Symbols.TerminalCount())
	}
	expectedAliases := map[string]string{
		"x_1": "+",
		"x_2": "*",
		"x_3": "(",
		"x_4": ")",
	}
	for name, lit := range expectedAliases {
		sym, ok := s.Symbols.Lookup(name)
		if !ok {
			t.Fatalf("symbol not found: %v", name)
		}
		if s.Aliases[sym] != lit {
			t.Fatalf("unexpected alias of %v; want: %q, got: %q", name, lit, s.Aliases[sym])
		}
	}

	expr, _ := s.Symbols.Lookup("expr")
	if s.Grammar.Start() != expr {
		t.Fatalf("the first parser rule must be the start symbol; got: %v", s.Grammar.SymbolName(s.Grammar.Start()))
	}
	if s.Grammar.LHS(0) != expr {
		t.Fatalf("the first production must be of the start symbol: %v", s.Grammar.ProductionString(0))
	}

	space, _ := s.Symbols.Lookup("space")
	if len(s.LexSpec.White) != 1 || s.LexSpec.White[0] != space {
		t.Fatalf("unexpected white symbols: %v", s.LexSpec.White)
	}
	var helper, keywords int
	for _, r := range s.LexSpec.Rules {
		if r.Helper {
			helper++
			if r.Name != "digit" {
				t.Fatalf("unexpected helper: %v", r.Name)
			}
			if r.Symbol < s.Symbols.Size() {
				t.Fatalf("a helper must not occupy a grammar symbol: %v", r.Symbol)
			}
		}
		if r.Keyword {
			keywords++
			if r.Alias == "" {
				t.Fatalf("a keyword needs an alias: %v", r.Name)
			}
		}
	}
	if helper != 1 || keywords != 4 {
		t.Fatalf("unexpected rules; helpers: %v, keywords: %v", helper, keywords)
	}

	if len(s.Mappings) != 4 {
		t.Fatalf("unexpected mappings: %v", len(s.Mappings))
	}
	factor, _ := s.Symbols.Lookup("factor")
	m := s.Mappings[1]
	if m.Symbol != factor || m.Function != "first" || len(m.Args) != 1 || len(m.Args[0].Sources) != 2 {
		t.Fatalf("unexpected mapping: %+v", m)
	}
}

func TestGrammarBuilder_LiteralNames(t *testing.T) {
	s := mustBuild(t, `
#name lit;

%parser
s   : "a" x_1 ;

%scanner
x_1 : 'b' ;
`)
	if _, ok := s.Symbols.Lookup("x_2"); !ok {
		t.Fatal("a literal must skip names taken by rules")
	}
	sym, _ := s.Symbols.Lookup("x_2")
	if s.Aliases[sym] != "a" {
		t.Fatalf("unexpected alias: %v", s.Aliases[sym])
	}
	if !s.Grammar.IsTerminal(sym) {
		t.Fatal("a literal must be a terminal")
	}
}

func TestGrammarBuilder_Errors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		code    verr.Code
		cause   error
	}{
		{
			caption: "a description needs a name",
			src:     `%parser s : a ; %scanner a : 'a' ;`,
			code:    verr.CodeInvalidOption,
			cause:   semErrNoGrammarName,
		},
		{
			caption: "the name directive takes one parameter",
			src:     `#name a b; %parser s : a ; %scanner a : 'a' ;`,
			code:    verr.CodeInvalidOption,
			cause:   semErrDirInvalidParam,
		},
		{
			caption: "unknown directives are rejected",
			src:     `#name n; #mode a; %parser s : a ; %scanner a : 'a' ;`,
			code:    verr.CodeInvalidOption,
			cause:   semErrDirInvalidName,
		},
		{
			caption: "names differing only in spelling are rejected",
			src:     `#name n; %parser s : foo_bar ; %scanner fooBar : 'a' ; foo_bar : 'b' ;`,
			code:    verr.CodeSpelling,
			cause:   semErrSpelling,
		},
		{
			caption: "a parser rule is defined once",
			src:     `#name n; %parser s : a ; s : a a ; %scanner a : 'a' ;`,
			code:    verr.CodeDuplicateSymbol,
			cause:   semErrDuplicateRule,
		},
		{
			caption: "a name is either a terminal or a non-terminal",
			src:     `#name n; %parser s : a ; a : s ; %scanner a : 'a' ;`,
			code:    verr.CodeDuplicateSymbol,
			cause:   semErrDuplicateName,
		},
		{
			caption: "undefined symbols are rejected",
			src:     `#name n; %parser s : a b ; %scanner a : 'a' ;`,
			code:    verr.CodeUndefinedSymbol,
			cause:   semErrUndefinedSym,
		},
		{
			caption: "a character range cannot appear in the parser section",
			src:     `#name n; %parser s : 'a'..'z' ;`,
			code:    verr.CodeIllegalInParser,
			cause:   semErrRangeInParser,
		},
		{
			caption: "a difference cannot appear in the parser section",
			src:     `#name n; %parser s : a - b ; %scanner a : 'a' ; b : 'b' ;`,
			code:    verr.CodeIllegalInParser,
			cause:   semErrWithoutInParser,
		},
		{
			caption: "a white symbol must be a scanner rule",
			src:     `#name n; #white t; %parser s : a ; t : a ; %scanner a : 'a' ;`,
			code:    verr.CodeUndefinedSymbol,
			cause:   semErrWhiteNotScanner,
		},
		{
			caption: "a white symbol cannot be used in the parser section",
			src:     `#name n; #white a; %parser s : a ; %scanner a : 'a' ;`,
			code:    verr.CodeIllegalInParser,
			cause:   semErrWhiteUsed,
		},
		{
			caption: "a scanner rule cannot refer to a parser rule",
			src:     `#name n; %parser s : a ; %scanner a : s ;`,
			code:    verr.CodeUndefinedSymbol,
			cause:   semErrNonTermInScanner,
		},
		{
			caption: "an unused scanner rule is rejected",
			src:     `#name n; %parser s : a ; %scanner a : 'a' ; b : 'b' ;`,
			code:    verr.CodeUnreachableSymbol,
			cause:   semErrUnusedHelper,
		},
		{
			caption: "an unreachable production is rejected",
			src:     `#name n; %parser s : a ; t : a ; %scanner a : 'a' ;`,
			code:    verr.CodeUnreachableSymbol,
			cause:   semErrUnusedProduction,
		},
		{
			caption: "a mapping of an unknown symbol is rejected",
			src:     `#name n; %parser s : a ; %scanner a : 'a' ; %mapping t => string ;`,
			code:    verr.CodeUnknownSymbol,
			cause:   semErrUnknownMapping,
		},
		{
			caption: "a mapping argument of an unknown symbol is rejected",
			src:     `#name n; %parser s : a ; %scanner a : 'a' ; %mapping s => first(b) ;`,
			code:    verr.CodeUnknownSymbol,
			cause:   semErrUnknownMapping,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := build(t, tt.src)
			if err == nil {
				t.Fatal("an error must occur")
			}
			var specErrs verr.SpecErrors
			if !errors.As(err, &specErrs) {
				t.Fatalf("unexpected error type: %T: %v", err, err)
			}
			for _, e := range specErrs {
				if e.Code == tt.code && e.Cause == tt.cause {
					return
				}
			}
			t.Fatalf("the expected error did not occur; want: %v (%v), got: %v", tt.cause, tt.code, err)
		})
	}
}

func TestGrammarBuilder_HelperSymbols(t *testing.T) {
	s := mustBuild(t, calcSrc)
	for _, r := range s.LexSpec.Rules {
		if r.Helper {
			continue
		}
		if !s.Symbols.IsTerminal(r.Symbol) {
			t.Fatalf("%v must be a terminal", r.Name)
		}
		if r.Symbol == grammar.SymbolEOF {
			t.Fatalf("%v must not take the EOF symbol", r.Name)
		}
	}
}
