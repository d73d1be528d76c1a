/*
Package driver runs a compiled mapper: Lexer scans the input in the mode the parser asks
for, Parser drives the LR(k) table and Evaluator computes the attributes on an Arena.
*/
package driver

import (
	"io"

	"github.com/nihei9/ordo/semantics"
	"github.com/nihei9/ordo/spec/mapper"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ordo.driver'.
func tracer() tracing.Trace {
	return tracing.Select("ordo.driver")
}

// Run parses src with m and returns the main attribute of the start symbol. Functions are
// taken from lib, or from semantics.Standard() when lib is nil.
func Run(m *mapper.CompiledMapper, lib *semantics.Library, src io.Reader) (interface{}, error) {
	if lib == nil {
		lib = semantics.Standard()
	}
	ev, err := NewEvaluator(m, lib)
	if err != nil {
		return nil, err
	}
	toks, err := NewTokenStream(m, src)
	if err != nil {
		return nil, err
	}
	p := NewParser(m, toks, ev)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return ev.Result(), nil
}
