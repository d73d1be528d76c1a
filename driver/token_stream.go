package driver

import (
	"io"

	"github.com/nihei9/ordo/driver/lexer"
	"github.com/nihei9/ordo/spec/mapper"
)

// TokenStream supplies the parser with tokens. The parser passes the scanner mode of its
// current state.
type TokenStream interface {
	Next(mode int) (*lexer.Token, error)

	// Lookahead reports whether the input after the last token starts with terms.
	Lookahead(terms []int) bool
}

func NewTokenStream(m *mapper.CompiledMapper, src io.Reader) (TokenStream, error) {
	return lexer.NewLexer(m, src)
}
