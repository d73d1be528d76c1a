package driver

import (
	"strings"
	"testing"

	"github.com/nihei9/ordo/compiler"
	"github.com/nihei9/ordo/spec"
	"github.com/nihei9/ordo/spec/mapper"
)

func compile(t *testing.T, src string, opts ...compiler.CompileOption) *mapper.CompiledMapper {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := compiler.GrammarBuilder{
		AST: ast,
	}
	s, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	m, _, err := compiler.Compile(s, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

const calcSrc = `
#name calc;

%parser
expr   : term ("+" term)* ;
term   : factor ("*" factor)* ;
factor : num | "(" expr ")" ;

%scanner
num    : ('0'..'9')+ ;
space  : (' ' | '\t' | '\n' | '\r')+ ;
#white space;

%mapping
num    => int ;
factor => first(num | expr) ;
term   => product(factor) ;
expr   => sum(term) ;
`
