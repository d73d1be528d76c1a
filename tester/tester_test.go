package tester

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nihei9/ordo/compiler"
	"github.com/nihei9/ordo/spec"
)

func TestTester_Run(t *testing.T) {
	descSrc := `
#name calc;

%parser
expr   : term ("+" term)* ;
term   : factor ("*" factor)* ;
factor : num | "(" expr ")" ;

%scanner
num    : ('0'..'9')+ ;
space  : (' ' | '\t' | '\n')+ ;
#white space;

%mapping
num    => int ;
factor => first(num | expr) ;
term   => product(factor) ;
expr   => sum(term) ;
`

	tests := []struct {
		testSrc string
		error   bool
	}{
		{
			testSrc: `
Test
---
1 + 2 * 3
---
7
`,
		},
		{
			testSrc: `
Test
---
(1 + 2)
  * 3
---
9
`,
		},
		{
			testSrc: `
Test
---
1 + 2 * 3
---
9
`,
			error: true,
		},
		{
			testSrc: `
Test
---
1 + * 3
---
error: unexpected token
`,
		},
		{
			testSrc: `
Test
---
1 + 2
---
error: unexpected token
`,
			error: true,
		},
		{
			testSrc: `
Test
---
1 + x
---
error: unexpected token
`,
			error: true,
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
			ast, err := spec.Parse(strings.NewReader(descSrc))
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
			m, _, err := compiler.Compile(s)
			if err != nil {
				t.Fatal(err)
			}
			c, err := ParseTestCase(strings.NewReader(tt.testSrc))
			if err != nil {
				t.Fatal(err)
			}
			tester := &Tester{
				Mapper: m,
				Cases: []*TestCaseWithMetadata{
					{
						TestCase: c,
					},
				},
			}
			rs := tester.Run()
			if tt.error {
				errOccurred := false
				for _, r := range rs {
					if r.Error != nil {
						errOccurred = true
					}
				}
				if !errOccurred {
					t.Fatal("this test must fail, but it passed")
				}
			} else {
				for _, r := range rs {
					if r.Error != nil {
						t.Fatalf("unexpected error occurred: %v", r)
					}
				}
			}
		})
	}
}

func TestParseTestCase(t *testing.T) {
	c, err := ParseTestCase(strings.NewReader("Title\n---\na\n---\nb\n---\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Description != "Title" || string(c.Source) != "a" || c.Expected != "b\n---" {
		t.Fatalf("unexpected test case: %+v", c)
	}

	_, err = ParseTestCase(strings.NewReader("Title\n---\na\n"))
	if err == nil {
		t.Fatal("a test case without a result must be rejected")
	}
}
