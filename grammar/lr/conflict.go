package lr

import (
	"fmt"
	"sort"
	"strings"

	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/grammar/prefix"
	"github.com/nihei9/ordo/spec/mapper"
)

type ConflictError struct {
	message string
}

func newConflictError(message string) *ConflictError {
	return &ConflictError{
		message: message,
	}
}

func (e *ConflictError) Error() string {
	return e.message
}

var (
	errShiftReduce  = newConflictError("shift/reduce conflict")
	errReduceReduce = newConflictError("reduce/reduce conflict")
)

// resolverSet registers each distinct resolver once.
type resolverSet struct {
	resolvers []*mapper.ConflictResolver
	key2Index map[string]int
	origins   []resolverOrigin
}

type resolverOrigin struct {
	state  int
	symbol int
}

func newResolverSet() *resolverSet {
	return &resolverSet{
		key2Index: map[string]int{},
	}
}

func (rs *resolverSet) register(r *mapper.ConflictResolver, state, sym int) int {
	var b strings.Builder
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "%v>%v;", l.Terminals, l.Action)
	}
	key := b.String()
	if i, ok := rs.key2Index[key]; ok {
		return i
	}
	i := len(rs.resolvers)
	rs.resolvers = append(rs.resolvers, r)
	rs.key2Index[key] = i
	rs.origins = append(rs.origins, resolverOrigin{
		state:  state,
		symbol: sym,
	})
	return i
}

type resolverLine struct {
	terminals []int
	prod      int
}

// resolveReduceReduce tries to separate reduce items that share the leading lookahead
// terminal sym by the rest of their lookaheads. Each item contributes one line per tail of
// its lookahead, so every line starts with sym. Lines are k terminals long unless the
// lookahead was truncated at EOF, and that truncation is the only way one line can be a
// proper prefix of another. Two lines of different productions that are equal, or where one
// is a prefix of the other, cannot be told apart, which is a genuine conflict.
func (t *Table) resolveReduceReduce(s *State, sym int, items []*Item) (*mapper.ConflictResolver, *verr.SpecError) {
	var lines []*resolverLine
	for _, it := range items {
		it.Lookahead.Follows(sym).Each(func(tail prefix.Prefix) {
			lines = append(lines, &resolverLine{
				terminals: append([]int{sym}, tail.Symbols()...),
				prod:      it.Production,
			})
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i].terminals, lines[j].terminals
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return lines[i].prod < lines[j].prod
	})

	for i, l1 := range lines {
		for _, l2 := range lines[i+1:] {
			if l1.prod == l2.prod {
				continue
			}
			if isPrefixOf(l1.terminals, l2.terminals) || isPrefixOf(l2.terminals, l1.terminals) {
				return nil, &verr.SpecError{
					Code:   verr.CodeConflictRR,
					Cause:  errReduceReduce,
					Detail: t.conflictDetail(s, sym, fmt.Sprintf("reduce %v and reduce %v on %v", t.prodString(l1.prod), t.prodString(l2.prod), t.symbolsString(l1.terminals))),
				}
			}
		}
	}

	r := &mapper.ConflictResolver{}
	for _, l := range lines {
		r.Lines = append(r.Lines, &mapper.ResolverLine{
			Terminals: l.terminals,
			Action:    mapper.EncodeAction(mapper.ActionReduce, l.prod),
		})
	}
	return r, nil
}

func isPrefixOf(a, b []int) bool {
	if len(a) > len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (t *Table) conflictDetail(s *State, sym int, what string) string {
	return fmt.Sprintf("state %v, lookahead %v: %v", s.ID, t.pda.Grammar.SymbolName(sym), what)
}

func (t *Table) prodString(p int) string {
	return fmt.Sprintf("#%v (%v)", p, t.pda.Grammar.ProductionString(p))
}

func (t *Table) symbolsString(syms []int) string {
	names := make([]string, len(syms))
	for i, sym := range syms {
		names[i] = t.pda.Grammar.SymbolName(sym)
	}
	return strings.Join(names, " ")
}
