/*
Package lr builds canonical LR(k) automata and their action tables.

States are identified by their content: two item sets with identical cores and
identical lookahead sets are the same state, no LALR-style merging takes place.
Build expands states with a pool of workers; CreateTable emits the packed action
table and turns reduce-reduce clashes that more lookahead can decide into
conflict resolvers.
*/
package lr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ordo.lr'.
func tracer() tracing.Trace {
	return tracing.Select("ordo.lr")
}
