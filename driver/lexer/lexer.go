package lexer

import (
	"io"

	"github.com/nihei9/ordo/spec/mapper"
)

// Token represents a token.
type Token struct {
	// TerminalID is the terminal the lexeme was recognized as. It is meaningless for the EOF
	// and invalid tokens.
	TerminalID int

	// Row is a row number where a lexeme appears.
	Row int

	// Col is a column number where a lexeme appears.
	// Note that Col is counted in code points, not bytes.
	Col int

	// Lexeme is a byte sequence matched a pattern of a lexical specification.
	Lexeme []byte

	// When this field is true, it means the token is the EOF token.
	EOF bool

	// When this field is true, it means the token is an error token.
	Invalid bool
}

type lexerState struct {
	srcPtr int
	row    int
	col    int
}

// Lexer runs a packed scanner table. The parser chooses the mode of every token; white
// terminals are recognized in every mode and skipped.
type Lexer struct {
	f                 *mapper.ScannerFactory
	eof               int
	src               []byte
	state             lexerState
	lastAcceptedState lexerState
	white             map[int]bool
	// modeOf holds a mode recognizing each terminal, or -1.
	modeOf []int
}

// NewLexer returns a new lexer.
func NewLexer(m *mapper.CompiledMapper, src io.Reader) (*Lexer, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	l := &Lexer{
		f:     m.Scanner,
		eof:   m.Parser.EOFSymbol,
		src:   b,
		white: map[int]bool{},
	}
	for _, sym := range m.Scanner.White {
		l.white[sym] = true
	}
	l.modeOf = findModes(m.Scanner, m.TerminalCount)
	return l, nil
}

// findModes walks the states reachable from the start state and records the first mode in
// which each terminal is accepted.
func findModes(f *mapper.ScannerFactory, terminalCount int) []int {
	modeOf := make([]int, terminalCount)
	for i := range modeOf {
		modeOf[i] = -1
	}
	visited := map[int]bool{f.Start: true}
	queue := []int{f.Start}
	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]
		for mode := 0; mode < f.ModeCount; mode++ {
			if sym := f.EndSymbol(state, mode); sym >= 0 && sym < terminalCount && modeOf[sym] < 0 {
				modeOf[sym] = mode
			}
		}
		for _, dest := range f.Destinations(state) {
			if !visited[dest] {
				visited[dest] = true
				queue = append(queue, dest)
			}
		}
	}
	return modeOf
}

// Next returns the next token recognized in mode, skipping white terminals.
func (l *Lexer) Next(mode int) (*Token, error) {
	for {
		tok := l.next(mode)
		if tok.EOF || tok.Invalid || !l.white[tok.TerminalID] {
			return tok, nil
		}
	}
}

// Lookahead reports whether the input after the current position starts with terms. Each
// terminal is scanned in a mode that recognizes it. The position is left unchanged.
func (l *Lexer) Lookahead(terms []int) bool {
	saved := l.state
	defer func() {
		l.state = saved
	}()
	for _, term := range terms {
		mode := 0
		if term != l.eof {
			if term < 0 || term >= len(l.modeOf) || l.modeOf[term] < 0 {
				return false
			}
			mode = l.modeOf[term]
		}
		tok, err := l.Next(mode)
		if err != nil || tok.Invalid {
			return false
		}
		if tok.EOF {
			if term != l.eof {
				return false
			}
			continue
		}
		if term == l.eof || tok.TerminalID != term {
			return false
		}
	}
	return true
}

// next performs maximal munch from the current position.
func (l *Lexer) next(mode int) *Token {
	state := l.f.Start
	start := l.state
	var tok *Token
	for {
		v, eof := l.read()
		if eof {
			break
		}
		state = l.f.Next(state, v)
		if state == l.f.Error {
			break
		}
		if sym := l.f.EndSymbol(state, mode); sym >= 0 {
			tok = &Token{
				TerminalID: sym,
				Lexeme:     l.src[start.srcPtr:l.state.srcPtr],
				Row:        start.row,
				Col:        start.col,
			}
			l.accept()
		}
	}
	if tok != nil {
		l.revert()
		return tok
	}
	if start.srcPtr >= len(l.src) {
		return &Token{
			Row: start.row,
			Col: start.col,
			EOF: true,
		}
	}
	// The invalid token spans the bytes the scanner read before it got stuck.
	end := l.state.srcPtr
	if end <= start.srcPtr {
		end = start.srcPtr + 1
	}
	l.state = start
	for l.state.srcPtr < end {
		l.read()
	}
	return &Token{
		Lexeme:  l.src[start.srcPtr:end],
		Row:     start.row,
		Col:     start.col,
		Invalid: true,
	}
}

func (l *Lexer) read() (byte, bool) {
	if l.state.srcPtr >= len(l.src) {
		return 0, true
	}

	b := l.src[l.state.srcPtr]
	l.state.srcPtr++

	// The driver treats LF as the end of lines and counts columns in code points, not bytes.
	// Only the leading byte of a UTF-8 sequence starts a new column.
	if b < 128 {
		if b == 0x0A {
			l.state.row++
			l.state.col = 0
		} else {
			l.state.col++
		}
	} else if b>>5 == 6 || b>>4 == 14 || b>>3 == 30 {
		l.state.col++
	}

	return b, false
}

// accept saves the current state.
func (l *Lexer) accept() {
	l.lastAcceptedState = l.state
}

// revert reverts the lexer state to the last accepted state.
func (l *Lexer) revert() {
	l.state = l.lastAcceptedState
}
