/*
Package grammar holds the grammar model of a mapper.

Translate lowers the EBNF rules of the parser section into a plain context-free Grammar
over a SymbolTable, and First computes its FIRST-k sets.
*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ordo.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("ordo.grammar")
}
