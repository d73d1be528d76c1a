package compiler

import (
	"strings"
	"testing"

	"github.com/nihei9/ordo/spec"
)

func build(t *testing.T, src string) (*Spec, error) {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := GrammarBuilder{
		AST: ast,
	}
	return b.Build()
}

func mustBuild(t *testing.T, src string) *Spec {
	t.Helper()

	s, err := build(t, src)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

const calcSrc = `
#name calc;

%parser
expr   : term ("+" term)* ;
term   : factor ("*" factor)* ;
factor : num | "(" expr ")" ;

%scanner
num    : digit+ ;
digit  : '0'..'9' ;
space  : (' ' | '\t' | '\n' | '\r')+ ;
#white space;

%mapping
num    => int ;
factor => first(num | expr) ;
term   => product(factor) ;
expr   => sum(term) ;
`
