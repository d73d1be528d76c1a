package spec

import (
	"testing"

	verr "github.com/nihei9/ordo/error"
)

func TestLexer_Run(t *testing.T) {
	tok := func(kind tokenKind, text string) *token {
		return &token{
			kind: kind,
			text: text,
		}
	}
	sym := func(kind tokenKind) *token {
		return &token{
			kind: kind,
		}
	}

	tests := []struct {
		caption string
		src     string
		tokens  []*token
		err     *SyntaxError
	}{
		{
			caption: "the lexer can recognize all kinds of tokens",
			src:     `%parser #white id "str" 'c' : ; | - * + ? ( ) .. => ^ ,`,
			tokens: []*token{
				tok(tokenKindSection, "parser"),
				tok(tokenKindDirective, "white"),
				tok(tokenKindID, "id"),
				tok(tokenKindString, "str"),
				tok(tokenKindChar, "c"),
				sym(tokenKindColon),
				sym(tokenKindSemicolon),
				sym(tokenKindOr),
				sym(tokenKindMinus),
				sym(tokenKindStar),
				sym(tokenKindPlus),
				sym(tokenKindOption),
				sym(tokenKindGroupOpen),
				sym(tokenKindGroupClose),
				sym(tokenKindRange),
				sym(tokenKindArrow),
				sym(tokenKindUp),
				sym(tokenKindComma),
				sym(tokenKindEOF),
			},
		},
		{
			caption: "escape sequences are interpreted",
			src:     `"a\n\t\r\\\"\'" '\'' '\u{3b1}' "\u{1F600}"`,
			tokens: []*token{
				tok(tokenKindString, "a\n\t\r\\\"'"),
				tok(tokenKindChar, "'"),
				tok(tokenKindChar, "α"),
				tok(tokenKindString, "\U0001F600"),
				sym(tokenKindEOF),
			},
		},
		{
			caption: "comments and white spaces are skipped",
			src: `// a comment
a // another comment
	b`,
			tokens: []*token{
				tok(tokenKindID, "a"),
				tok(tokenKindID, "b"),
				sym(tokenKindEOF),
			},
		},
		{
			caption: "adjacent tokens need no separator",
			src:     `a:'0'..'9'+;`,
			tokens: []*token{
				tok(tokenKindID, "a"),
				sym(tokenKindColon),
				tok(tokenKindChar, "0"),
				sym(tokenKindRange),
				tok(tokenKindChar, "9"),
				sym(tokenKindPlus),
				sym(tokenKindSemicolon),
				sym(tokenKindEOF),
			},
		},
		{
			caption: "an unknown escape sequence is an error",
			src:     `"\q"`,
			err:     synErrInvalidEscSeq,
		},
		{
			caption: "an empty string is an error",
			src:     `""`,
			err:     synErrEmptyString,
		},
		{
			caption: "a character literal holds one character",
			src:     `'ab'`,
			err:     synErrInvalidToken,
		},
		{
			caption: "an invalid character is an error",
			src:     `a @ b`,
			err:     synErrInvalidToken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			l, err := newLexer([]byte(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			n := 0
			for {
				tok, err := l.next()
				if err != nil {
					if tt.err == nil {
						t.Fatalf("unexpected error: %v", err)
					}
					specErr, ok := err.(*verr.SpecError)
					if !ok {
						t.Fatalf("unexpected error type: %T", err)
					}
					if specErr.Cause != tt.err {
						t.Fatalf("unexpected error; want: %v, got: %v", tt.err, specErr.Cause)
					}
					if specErr.Code != verr.CodeSyntax {
						t.Fatalf("unexpected code: %v", specErr.Code)
					}
					return
				}
				if n >= len(tt.tokens) {
					t.Fatalf("too many tokens; got: %+v", tok)
				}
				expected := tt.tokens[n]
				if tok.kind != expected.kind || tok.text != expected.text {
					t.Fatalf("unexpected token; want: %v %q, got: %v %q", expected.kind, expected.text, tok.kind, tok.text)
				}
				n++
				if tok.kind == tokenKindEOF {
					break
				}
			}
			if tt.err != nil {
				t.Fatalf("expected error: %v", tt.err)
			}
		})
	}
}

func TestLexer_Position(t *testing.T) {
	l, err := newLexer([]byte("a\n  bc : d"))
	if err != nil {
		t.Fatal(err)
	}
	expected := []Position{
		newPosition(1, 1),
		newPosition(2, 3),
		newPosition(2, 6),
		newPosition(2, 8),
	}
	for _, pos := range expected {
		tok, err := l.next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.pos != pos {
			t.Fatalf("unexpected position of %q; want: %+v, got: %+v", tok.text, pos, tok.pos)
		}
	}
}
