/*
Package semantics turns the mapping section of a description into an ordered attribute
grammar and schedules its evaluation.

Every mapped symbol gets a main attribute computed by a library function. Arguments of
that function are carried to the mapped symbol by transport attributes: synthesized
ones collect values from below through unmapped nonterminals, inherited ones bring the
value of a sibling of an ancestor down the tree. Attributes that can be computed while
the parser reduces are construction attributes; the others are computed by visits of
the finished tree. Each nonterminal's visit attributes are partitioned into alternating
inherited and synthesized groups, one pair per visit, and every production gets one visit
sequence per visit of its left-hand side.
*/
package semantics

import "github.com/npillmayer/schuko/tracing"

func tracer() tracing.Trace {
	return tracing.Select("ordo.semantics")
}
