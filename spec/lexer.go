package spec

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	verr "github.com/nihei9/ordo/error"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

type tokenKind int

const (
	tokenKindEOF tokenKind = iota
	tokenKindID
	tokenKindString
	tokenKindChar
	tokenKindSection
	tokenKindDirective
	tokenKindColon
	tokenKindSemicolon
	tokenKindOr
	tokenKindMinus
	tokenKindStar
	tokenKindPlus
	tokenKindOption
	tokenKindGroupOpen
	tokenKindGroupClose
	tokenKindRange
	tokenKindArrow
	tokenKindUp
	tokenKindComma
)

func (k tokenKind) String() string {
	switch k {
	case tokenKindEOF:
		return "eof"
	case tokenKindID:
		return "id"
	case tokenKindString:
		return "string"
	case tokenKindChar:
		return "character"
	case tokenKindSection:
		return "section"
	case tokenKindDirective:
		return "directive"
	}
	for lit, kind := range literals {
		if kind == k {
			return lit
		}
	}
	return fmt.Sprintf("<token %d>", int(k))
}

var literals = map[string]tokenKind{
	":":  tokenKindColon,
	";":  tokenKindSemicolon,
	"|":  tokenKindOr,
	"-":  tokenKindMinus,
	"*":  tokenKindStar,
	"+":  tokenKindPlus,
	"?":  tokenKindOption,
	"(":  tokenKindGroupOpen,
	")":  tokenKindGroupClose,
	"..": tokenKindRange,
	"=>": tokenKindArrow,
	"^":  tokenKindUp,
	",":  tokenKindComma,
}

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

var (
	lexerOnce sync.Once
	lexerDFA  *lexmachine.Lexer
	lexerErr  error
)

// descriptionLexer compiles the lexer of the description language once.
func descriptionLexer() (*lexmachine.Lexer, error) {
	lexerOnce.Do(func() {
		lex := lexmachine.NewLexer()
		lex.Add([]byte(`//[^\n]*`), skip)
		lex.Add([]byte(`( |\t|\r|\n)+`), skip)
		lex.Add([]byte(`%[a-z]+`), makeToken(tokenKindSection))
		lex.Add([]byte(`#[a-z]+`), makeToken(tokenKindDirective))
		lex.Add([]byte(`[A-Za-z_][A-Za-z0-9_]*`), makeToken(tokenKindID))
		lex.Add([]byte(`"([^"\\\n]|\\[^\n])*"`), makeToken(tokenKindString))
		lex.Add([]byte(`'([^'\\\n]|\\[^\n]|\\u[{][0-9A-Fa-f]+[}])'`), makeToken(tokenKindChar))
		for lit, kind := range literals {
			pat := "\\" + strings.Join(strings.Split(lit, ""), "\\")
			lex.Add([]byte(pat), makeToken(kind))
		}
		if err := lex.Compile(); err != nil {
			lexerErr = fmt.Errorf("cannot compile the lexer of the description language: %w", err)
			return
		}
		lexerDFA = lex
	})
	return lexerDFA, lexerErr
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(kind tokenKind) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(kind), string(m.Bytes), m), nil
	}
}

type lexer struct {
	s *lexmachine.Scanner
}

func newLexer(src []byte) (*lexer, error) {
	lex, err := descriptionLexer()
	if err != nil {
		return nil, err
	}
	s, err := lex.Scanner(src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		s: s,
	}, nil
}

func (l *lexer) next() (*token, error) {
	tok, err, eos := l.s.Next()
	if err != nil {
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			return nil, &verr.SpecError{
				Code:   verr.CodeSyntax,
				Cause:  synErrInvalidToken,
				Detail: string(ui.Text),
				Row:    ui.StartLine,
				Col:    ui.StartColumn,
			}
		}
		return nil, err
	}
	if eos {
		return &token{
			kind: tokenKindEOF,
		}, nil
	}
	t := tok.(*lexmachine.Token)
	pos := newPosition(t.StartLine, t.StartColumn)
	text := string(t.Lexeme)
	kind := tokenKind(t.Type)
	switch kind {
	case tokenKindSection, tokenKindDirective:
		text = text[1:]
	case tokenKindString:
		s, err := unescape(text[1 : len(text)-1])
		if err != nil {
			return nil, syntaxErrorAt(err, pos)
		}
		if s == "" {
			return nil, syntaxErrorAt(synErrEmptyString, pos)
		}
		text = s
	case tokenKindChar:
		s, err := unescape(text[1 : len(text)-1])
		if err != nil {
			return nil, syntaxErrorAt(err, pos)
		}
		if len([]rune(s)) != 1 {
			return nil, syntaxErrorAt(synErrCharLength, pos)
		}
		text = s
	}
	return &token{
		kind: kind,
		text: text,
		pos:  pos,
	}, nil
}

// unescape interprets \n \t \r \\ \' \" and \u{hex}.
func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i >= len(s) {
			return "", synErrInvalidEscSeq
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '\'', '"':
			b.WriteByte(s[i])
		case 'u':
			end := strings.IndexByte(s[i:], '}')
			if i+1 >= len(s) || s[i+1] != '{' || end < 0 {
				return "", synErrInvalidEscSeq
			}
			cp, err := strconv.ParseUint(s[i+2:i+end], 16, 32)
			if err != nil || cp > 0x10ffff || cp >= 0xd800 && cp <= 0xdfff {
				return "", synErrInvalidEscSeq
			}
			b.WriteRune(rune(cp))
			i += end
		default:
			return "", synErrInvalidEscSeq
		}
	}
	return b.String(), nil
}

func syntaxErrorAt(cause error, pos Position) *verr.SpecError {
	return &verr.SpecError{
		Code:  verr.CodeSyntax,
		Cause: cause,
		Row:   pos.Row,
		Col:   pos.Col,
	}
}
