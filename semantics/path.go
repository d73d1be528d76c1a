package semantics

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	verr "github.com/nihei9/ordo/error"
)

// downPusher carries the main attributes of a source set up to the mappings that take them as
// an argument. Unmapped nonterminals that derive a source get a synthesized transport
// attribute; mapped symbols outside the source set are borders the values never cross.
type downPusher struct {
	t       *translator
	sources map[int]bool
	name    string
	host    reflect.Type
	carries map[int]bool
	counts  map[int]Count
	attrs   map[int]*Attribute
}

func newDownPusher(t *translator, sources []int) *downPusher {
	p := &downPusher{
		t:       t,
		sources: map[int]bool{},
		carries: map[int]bool{},
		counts:  map[int]Count{},
		attrs:   map[int]*Attribute{},
	}
	var names []string
	var hosts []reflect.Type
	for _, src := range sources {
		p.sources[src] = true
		names = append(names, t.g.SymbolName(src))
		hosts = append(hosts, t.main[src].Type.Host)
	}
	p.name = strings.Join(names, "|")
	p.host = commonHost(hosts)
	p.findCarriers()
	p.countCarriers()
	return p
}

func (p *downPusher) findCarriers() {
	g := p.t.g
	for changed := true; changed; {
		changed = false
		for sym := g.TerminalCount(); sym < g.SymbolCount(); sym++ {
			if p.t.mappings[sym] != nil || p.carries[sym] {
				continue
			}
		ALTS:
			for _, prod := range g.Alternatives(sym) {
				for _, s := range g.RHS(prod) {
					if p.sources[s] || p.carries[s] {
						p.carries[sym] = true
						changed = true
						break ALTS
					}
				}
			}
		}
	}
}

// countCarriers bounds the number of values below every carrier. Minimums start at many and
// fall, maximums start at zero and rise, so the iteration ends.
func (p *downPusher) countCarriers() {
	g := p.t.g
	for sym := range p.carries {
		p.counts[sym] = countUnknown
	}
	for changed := true; changed; {
		changed = false
		for sym := g.TerminalCount(); sym < g.SymbolCount(); sym++ {
			if !p.carries[sym] {
				continue
			}
			c := p.symbolCount(sym)
			if c != p.counts[sym] {
				p.counts[sym] = c
				changed = true
			}
		}
	}
}

// symbolCount joins the counts of the alternatives of sym.
func (p *downPusher) symbolCount(sym int) Count {
	c := countUnknown
	for _, prod := range p.t.g.Alternatives(sym) {
		c = c.Join(p.productionCount(prod))
	}
	return c
}

func (p *downPusher) productionCount(prod int) Count {
	c := countNone
	for _, s := range p.t.g.RHS(prod) {
		switch {
		case p.sources[s]:
			c = c.Concat(countOne)
		case p.carries[s]:
			c = c.Concat(p.counts[s])
		}
	}
	return c
}

// transport returns the transport attribute of sym, creating it and its equations on first use.
func (p *downPusher) transport(sym int) *Attribute {
	if attr, ok := p.attrs[sym]; ok {
		return attr
	}
	attr := p.t.at.AddAttribute(sym, "<"+p.name+">", AttrTransport, Type{
		Host: p.host,
		Card: p.counts[sym].Cardinality(),
	})
	p.attrs[sym] = attr
	for _, prod := range p.t.g.Alternatives(sym) {
		p.t.later = append(p.t.later, pendingBuffer{
			prod:   prod,
			result: attr,
			pusher: p,
		})
	}
	return attr
}

// contributions are the occurrences in prod that deliver values of the source set.
func (p *downPusher) contributions(prod int) ([]Occurrence, []Cardinality) {
	var occs []Occurrence
	var cards []Cardinality
	for i, s := range p.t.g.RHS(prod) {
		switch {
		case p.sources[s]:
			occs = append(occs, Occurrence{Offset: i, Attr: p.t.main[s]})
			cards = append(cards, Value)
		case p.carries[s]:
			attr := p.transport(s)
			occs = append(occs, Occurrence{Offset: i, Attr: attr})
			cards = append(cards, attr.Type.Card)
		}
	}
	return occs, cards
}

// argument creates the attribute collecting an argument of the mapping of sym.
func (p *downPusher) argument(sym int, index int, arg *MappingArg) (*Attribute, error) {
	c := p.symbolCount(sym)
	if c.Cardinality() == Empty {
		return nil, &verr.SpecError{
			Code:   verr.CodeDeadEndPath,
			Cause:  semErrNoDownPath,
			Detail: fmt.Sprintf("%v of %v", p.name, p.t.g.SymbolName(sym)),
			Row:    arg.Row,
			Col:    arg.Col,
		}
	}
	attr := p.t.at.AddAttribute(sym, fmt.Sprintf("arg%v", index+1), AttrArgument, Type{
		Host: p.host,
		Card: c.Cardinality(),
	})
	for _, prod := range p.t.g.Alternatives(sym) {
		p.t.later = append(p.t.later, pendingBuffer{
			prod:   prod,
			result: attr,
			pusher: p,
		})
	}
	return attr, nil
}

// pendingBuffer is a merging equation whose inputs are collected once every transport
// attribute exists.
type pendingBuffer struct {
	prod   int
	result *Attribute
	pusher *downPusher
}

func (b pendingBuffer) build() (*AttributionBuffer, error) {
	occs, cards := b.pusher.contributions(b.prod)
	merger, err := SelectMerger(cards, b.result.Type.Card)
	if err != nil {
		return nil, err
	}
	return &AttributionBuffer{
		Result: Occurrence{Offset: -1, Attr: b.result},
		Args:   occs,
		Merger: merger,
	}, nil
}

// upPusher carries the main attribute of a source symbol down to the mappings that take it as
// an upward argument. The value comes from the nearest sibling of an ancestor; symbols in
// between get an inherited transport attribute.
type upPusher struct {
	t      *translator
	source int
	attrs  map[int]*Attribute
	queue  []int
}

func newUpPusher(t *translator, source int) *upPusher {
	return &upPusher{
		t:      t,
		source: source,
		attrs:  map[int]*Attribute{},
	}
}

func (p *upPusher) inherited(sym int) *Attribute {
	if attr, ok := p.attrs[sym]; ok {
		return attr
	}
	attr := p.t.at.AddAttribute(sym, "^"+p.t.g.SymbolName(p.source), AttrInherited, Type{
		Host: p.t.main[p.source].Type.Host,
		Card: Value,
	})
	p.attrs[sym] = attr
	p.queue = append(p.queue, sym)
	return attr
}

// push defines the inherited attributes of every symbol reached so far at each of its users.
func (p *upPusher) push(arg *MappingArg) error {
	g := p.t.g
	for len(p.queue) > 0 {
		sym := p.queue[0]
		p.queue = p.queue[1:]
		if sym == g.Start() {
			return &verr.SpecError{
				Code:   verr.CodeDeadEndPath,
				Cause:  semErrNoUpPath,
				Detail: fmt.Sprintf("%v above %v", g.SymbolName(p.source), g.SymbolName(sym)),
				Row:    arg.Row,
				Col:    arg.Col,
			}
		}
		attr := p.attrs[sym]
		for _, u := range g.Users(sym) {
			var src Occurrence
			if j := nearest(g.RHS(u.Production), u.Offset, p.source); j >= 0 {
				src = Occurrence{Offset: j, Attr: p.t.main[p.source]}
			} else {
				src = Occurrence{Offset: -1, Attr: p.inherited(g.LHS(u.Production))}
			}
			p.t.at.AddBuffer(u.Production, &AttributionBuffer{
				Result: Occurrence{Offset: u.Offset, Attr: attr},
				Args:   []Occurrence{src},
				Merger: MergeCopy,
			})
		}
	}
	return nil
}

// nearest returns the offset of the occurrence of sym in rhs closest to offset i, other than
// i itself. Ties go to the left. It returns -1 when there is none.
func nearest(rhs []int, i int, sym int) int {
	var offsets []int
	for j, s := range rhs {
		if s == sym && j != i {
			offsets = append(offsets, j)
		}
	}
	if len(offsets) == 0 {
		return -1
	}
	dist := func(j int) int {
		if j < i {
			return i - j
		}
		return j - i
	}
	sort.SliceStable(offsets, func(a, b int) bool {
		return dist(offsets[a]) < dist(offsets[b])
	})
	return offsets[0]
}
