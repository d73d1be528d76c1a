package lr

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/nihei9/ordo/grammar"
	"github.com/nihei9/ordo/grammar/prefix"
)

// Core is a production with a dot position.
type Core struct {
	Production int
	Dot        int
}

func (c Core) less(d Core) bool {
	if c.Production != d.Production {
		return c.Production < d.Production
	}
	return c.Dot < d.Dot
}

// Item is a core with its lookahead set. Lookahead sets of kernel items are shared with
// the items they were advanced from and must not be modified.
type Item struct {
	Core
	Lookahead *prefix.PrefixSet
}

// Remaining returns the number of symbols after the dot; 0 marks a reduce item.
func (it *Item) Remaining(g *grammar.Grammar) int {
	return len(g.RHS(it.Production)) - it.Dot
}

// Next returns the symbol after the dot, or -1 for a reduce item.
func (it *Item) Next(g *grammar.Grammar) int {
	rhs := g.RHS(it.Production)
	if it.Dot >= len(rhs) {
		return -1
	}
	return rhs[it.Dot]
}

func (it *Item) String(g *grammar.Grammar) string {
	var b strings.Builder
	prod := g.Production(it.Production)
	fmt.Fprintf(&b, "%v ::=", g.SymbolName(prod[0]))
	for i, sym := range prod[1:] {
		if i == it.Dot {
			b.WriteString(" .")
		}
		fmt.Fprintf(&b, " %v", g.SymbolName(sym))
	}
	if it.Dot == len(prod)-1 {
		b.WriteString(" .")
	}
	b.WriteString(", {")
	for i, p := range it.Lookahead.Slice() {
		if i > 0 {
			b.WriteString(" ")
		}
		for j, sym := range p.Symbols() {
			if j > 0 {
				b.WriteString(".")
			}
			b.WriteString(g.SymbolName(sym))
		}
	}
	b.WriteString("}")
	return b.String()
}

func sortItems(items []*Item) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].Core.less(items[j].Core)
	})
}

// kernelKey encodes sorted items with their sorted lookaheads. Equal keys mean equal states.
func kernelKey(items []*Item) string {
	buf := make([]byte, 0, len(items)*32)
	for _, it := range items {
		buf = binary.AppendUvarint(buf, uint64(it.Production))
		buf = binary.AppendUvarint(buf, uint64(it.Dot))
		las := it.Lookahead.Slice()
		buf = binary.AppendUvarint(buf, uint64(len(las)))
		for _, p := range las {
			buf = binary.AppendUvarint(buf, uint64(p))
		}
	}
	return string(buf)
}

// closure expands kernel into its closure. Items whose cores coincide are merged by
// lookahead union; merged items are expanded again until nothing changes. The result is
// sorted by core.
func closure(g *grammar.Grammar, first *grammar.FirstSet, kernel []*Item) []*Item {
	k := first.K()
	items := make([]*Item, 0, len(kernel)*2)
	core2Item := map[Core]*Item{}
	owned := map[*Item]bool{}
	var work []*Item
	for _, it := range kernel {
		items = append(items, it)
		core2Item[it.Core] = it
		work = append(work, it)
	}

	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]

		next := it.Next(g)
		if next < 0 || g.IsTerminal(next) {
			continue
		}
		rest := g.RHS(it.Production)[it.Dot+1:]
		la := prefix.Concat(first.OfSequence(rest), it.Lookahead, k)
		for _, p := range g.Alternatives(next) {
			core := Core{Production: p, Dot: 0}
			if existing, ok := core2Item[core]; ok {
				if !owned[existing] {
					// Kernel sets are shared with predecessor states; copy before merging.
					cp := prefix.NewPrefixSet()
					cp.AddAll(existing.Lookahead)
					existing.Lookahead = cp
					owned[existing] = true
				}
				if existing.Lookahead.AddAll(la) {
					work = append(work, existing)
				}
				continue
			}
			lookahead := prefix.NewPrefixSet()
			lookahead.AddAll(la)
			newItem := &Item{
				Core:      core,
				Lookahead: lookahead,
			}
			owned[newItem] = true
			items = append(items, newItem)
			core2Item[core] = newItem
			work = append(work, newItem)
		}
	}

	sortItems(items)
	return items
}

// gotoKernels groups the items of a closure by the symbol after the dot and advances them.
// The returned symbols are in ascending order.
func gotoKernels(g *grammar.Grammar, items []*Item) ([]int, [][]*Item) {
	sym2Kernel := map[int][]*Item{}
	for _, it := range items {
		next := it.Next(g)
		if next < 0 {
			continue
		}
		sym2Kernel[next] = append(sym2Kernel[next], &Item{
			Core: Core{
				Production: it.Production,
				Dot:        it.Dot + 1,
			},
			Lookahead: it.Lookahead,
		})
	}
	syms := make([]int, 0, len(sym2Kernel))
	for sym := range sym2Kernel {
		syms = append(syms, sym)
	}
	sort.Ints(syms)
	kernels := make([][]*Item, len(syms))
	for i, sym := range syms {
		kernel := sym2Kernel[sym]
		sortItems(kernel)
		kernels[i] = kernel
	}
	return syms, kernels
}
