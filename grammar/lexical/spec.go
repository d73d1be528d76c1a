// Package lexical builds the scanner of a mapper: it expands helper rules, builds and
// minimizes the DFA, partitions terminals into modes and packs the result into a
// mapper.ScannerFactory.
package lexical

import (
	"fmt"
	"strings"

	mlspec "github.com/nihei9/maleeni/spec"
	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/grammar"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("ordo.lexical")
}

type LexicalError struct {
	message string
}

func newLexicalError(message string) *LexicalError {
	return &LexicalError{
		message: message,
	}
}

func (e *LexicalError) Error() string {
	return e.message
}

var (
	lexErrNoTerminal       = newLexicalError("a scanner needs at least one terminal")
	lexErrDuplicateRule    = newLexicalError("duplicate scanner rule")
	lexErrSpelling         = newLexicalError("scanner rule names differ only in spelling")
	lexErrUnknownRule      = newLexicalError("a scanner rule refers to an unknown rule")
	lexErrRecursiveHelper  = newLexicalError("a scanner rule refers to itself")
	lexErrWhiteNotTerminal = newLexicalError("a white symbol must be a terminal rule")
	lexErrEmptyWord        = newLexicalError("the scanner accepts the empty word")
	lexErrAmbiguous        = newLexicalError("terminals recognize the same word")
	lexErrTooBig           = newLexicalError("the scanner table exceeds 16-bit offsets")
	lexErrNoPattern        = newLexicalError("the expression has no pattern equivalent")
)

// Rule is a scanner rule. Terminal rules use the ID of their terminal; helper rules use IDs
// that are not grammar symbols. Keyword marks an anonymous literal of the parser section.
type Rule struct {
	Symbol  int
	Name    string
	Alias   string
	Expr    grammar.Expr
	Helper  bool
	Keyword bool
	Row     int
	Col     int
}

// LexSpec is the scanner section of a description.
type LexSpec struct {
	Rules []*Rule
	White []int
}

func (s *LexSpec) rule(sym int) (*Rule, bool) {
	for _, r := range s.Rules {
		if r.Symbol == sym {
			return r, true
		}
	}
	return nil, false
}

// Validate checks that names are unique and spelled consistently and that white symbols
// are terminals.
func (s *LexSpec) Validate() error {
	var errs verr.SpecErrors
	terminals := 0
	names := map[string]struct{}{}
	syms := map[int]struct{}{}
	var ids []string
	for _, r := range s.Rules {
		if !r.Helper {
			terminals++
		}
		if _, ok := names[r.Name]; ok {
			errs = append(errs, &verr.SpecError{
				Code:   verr.CodeDuplicateSymbol,
				Cause:  lexErrDuplicateRule,
				Detail: r.Name,
				Row:    r.Row,
				Col:    r.Col,
			})
			continue
		}
		if _, ok := syms[r.Symbol]; ok {
			return fmt.Errorf("symbol %v is assigned to more than one scanner rule", r.Symbol)
		}
		names[r.Name] = struct{}{}
		syms[r.Symbol] = struct{}{}
		if r.Alias == "" {
			ids = append(ids, r.Name)
		}
	}
	if terminals == 0 {
		errs = append(errs, &verr.SpecError{
			Code:  verr.CodeUndefinedSymbol,
			Cause: lexErrNoTerminal,
		})
	}
	for _, dup := range mlspec.FindSpellingInconsistencies(ids) {
		errs = append(errs, &verr.SpecError{
			Code:   verr.CodeSpelling,
			Cause:  lexErrSpelling,
			Detail: strings.Join(dup, ", "),
		})
	}
	for _, sym := range s.White {
		if r, ok := s.rule(sym); !ok || r.Helper {
			errs = append(errs, &verr.SpecError{
				Code:   verr.CodeUndefinedSymbol,
				Cause:  lexErrWhiteNotTerminal,
				Detail: fmt.Sprintf("symbol %v", sym),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
