package semantics

import (
	"fmt"
	"sort"
	"strings"

	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/grammar"
	"github.com/nihei9/ordo/spec/mapper"
)

// Mapping binds a symbol to the function computing its main attribute.
type Mapping struct {
	Symbol   int
	Function string
	Args     []*MappingArg
	Row      int
	Col      int
}

// MappingArg is one argument of a mapping. A downward argument collects the main attributes
// of its sources found below the mapped symbol. An upward argument takes the main attribute
// of its single source from the nearest ancestor that has it as a sibling.
type MappingArg struct {
	Sources []int
	Up      bool
	Row     int
	Col     int
}

type translator struct {
	g        *grammar.Grammar
	lib      *Library
	at       *Attribution
	mappings []*Mapping
	funcs    []*Function
	main     []*Attribute
	down     map[string]*downPusher
	up       map[int]*upPusher
	later    []pendingBuffer
}

// Translate turns mappings into an attribute grammar over g and schedules it.
func Translate(g *grammar.Grammar, mappings []*Mapping, lib *Library) (*mapper.Oag, error) {
	at, err := Define(g, mappings, lib)
	if err != nil {
		return nil, err
	}
	return Schedule(at)
}

// Define derives the attributes and equations that mappings need. Every mapped symbol gets a
// main attribute; arguments get transport attributes along the paths from their sources.
func Define(g *grammar.Grammar, mappings []*Mapping, lib *Library) (*Attribution, error) {
	t := &translator{
		g:        g,
		lib:      lib,
		at:       NewAttribution(g),
		mappings: make([]*Mapping, g.SymbolCount()),
		funcs:    make([]*Function, g.SymbolCount()),
		main:     make([]*Attribute, g.SymbolCount()),
		down:     map[string]*downPusher{},
		up:       map[int]*upPusher{},
	}
	if err := t.resolve(mappings); err != nil {
		return nil, err
	}

	var errs verr.SpecErrors
	args := make([][]Occurrence, g.SymbolCount())
	for sym, m := range t.mappings {
		if m == nil || g.IsTerminal(sym) {
			continue
		}
		for i, arg := range m.Args {
			occ, err := t.argument(sym, i, arg)
			if err != nil {
				errs = append(errs, toSpecError(err, m))
				continue
			}
			args[sym] = append(args[sym], occ)
		}
	}
	for i := 0; i < len(t.later); i++ {
		b, err := t.later[i].build()
		if err != nil {
			return nil, &verr.SpecError{
				Code:   verr.CodeInternal,
				Cause:  err,
				Detail: g.ProductionString(t.later[i].prod),
			}
		}
		t.at.AddBuffer(t.later[i].prod, b)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	for sym, m := range t.mappings {
		if m == nil {
			continue
		}
		if g.IsTerminal(sym) {
			t.at.Terminals[sym] = &AttributionBuffer{
				Result:   Occurrence{Offset: -1, Attr: t.main[sym]},
				Function: t.funcs[sym],
			}
			continue
		}
		types := make([]Type, len(args[sym]))
		for i, occ := range args[sym] {
			types[i] = occ.Attr.Type
		}
		if err := t.funcs[sym].Check(types); err != nil {
			errs = append(errs, &verr.SpecError{
				Code:   verr.CodeNotAssignable,
				Cause:  semErrNotAssignable,
				Detail: err.Error(),
				Row:    m.Row,
				Col:    m.Col,
			})
			continue
		}
		for _, prod := range g.Alternatives(sym) {
			t.at.AddBuffer(prod, &AttributionBuffer{
				Result:   Occurrence{Offset: -1, Attr: t.main[sym]},
				Args:     args[sym],
				Function: t.funcs[sym],
			})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	tracer().Debugf("attribution: %v mappings, %v pending merges", len(mappings), len(t.later))

	return t.at, nil
}

// resolve checks the mappings and creates the main attributes.
func (t *translator) resolve(mappings []*Mapping) error {
	g := t.g
	var errs verr.SpecErrors
	for _, m := range mappings {
		if m.Symbol < 0 || m.Symbol >= g.SymbolCount() || m.Symbol == g.EOF() {
			errs = append(errs, &verr.SpecError{
				Code:   verr.CodeUnknownSymbol,
				Cause:  semErrUnknownSymbol,
				Detail: fmt.Sprintf("%v", m.Symbol),
				Row:    m.Row,
				Col:    m.Col,
			})
			continue
		}
		if t.mappings[m.Symbol] != nil {
			errs = append(errs, &verr.SpecError{
				Code:   verr.CodeDuplicateSymbol,
				Cause:  semErrDuplicateMapping,
				Detail: g.SymbolName(m.Symbol),
				Row:    m.Row,
				Col:    m.Col,
			})
			continue
		}
		f, ok := t.lib.Lookup(m.Function)
		if !ok {
			errs = append(errs, &verr.SpecError{
				Code:   verr.CodeUnknownFunction,
				Cause:  semErrUnknownFunction,
				Detail: m.Function,
				Row:    m.Row,
				Col:    m.Col,
			})
			continue
		}
		if g.IsTerminal(m.Symbol) {
			if len(m.Args) > 0 {
				errs = append(errs, &verr.SpecError{
					Code:   verr.CodeNotAssignable,
					Cause:  semErrTerminalArgs,
					Detail: g.SymbolName(m.Symbol),
					Row:    m.Row,
					Col:    m.Col,
				})
				continue
			}
			if err := f.Check([]Type{{Host: stringType, Card: Value}}); err != nil {
				errs = append(errs, &verr.SpecError{
					Code:   verr.CodeNotAssignable,
					Cause:  semErrNotAssignable,
					Detail: err.Error(),
					Row:    m.Row,
					Col:    m.Col,
				})
				continue
			}
		}
		t.mappings[m.Symbol] = m
		t.funcs[m.Symbol] = f
	}
	if len(errs) > 0 {
		return errs
	}

	for sym, m := range t.mappings {
		if m == nil {
			continue
		}
		t.main[sym] = t.at.AddAttribute(sym, "value", AttrMain, Type{
			Host: t.funcs[sym].Result(),
			Card: Value,
		})
	}

	for _, m := range mappings {
		for _, arg := range m.Args {
			if arg.Up && len(arg.Sources) != 1 {
				errs = append(errs, &verr.SpecError{
					Code:  verr.CodeNotAssignable,
					Cause: semErrUpSources,
					Row:   arg.Row,
					Col:   arg.Col,
				})
			}
			for _, src := range arg.Sources {
				if src < 0 || src >= g.SymbolCount() || t.mappings[src] == nil {
					errs = append(errs, &verr.SpecError{
						Code:   verr.CodeUnknownSymbol,
						Cause:  semErrUnmappedSource,
						Detail: g.SymbolName(src),
						Row:    arg.Row,
						Col:    arg.Col,
					})
				}
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// argument returns the left-hand side occurrence an argument of the mapping of sym reads.
func (t *translator) argument(sym int, index int, arg *MappingArg) (Occurrence, error) {
	if arg.Up {
		src := arg.Sources[0]
		p, ok := t.up[src]
		if !ok {
			p = newUpPusher(t, src)
			t.up[src] = p
		}
		attr := p.inherited(sym)
		if err := p.push(arg); err != nil {
			return Occurrence{}, err
		}
		return Occurrence{Offset: -1, Attr: attr}, nil
	}

	sources := append([]int{}, arg.Sources...)
	sort.Ints(sources)
	sources = uniqueInts(sources)
	key := intsKey(sources)
	p, ok := t.down[key]
	if !ok {
		p = newDownPusher(t, sources)
		t.down[key] = p
	}
	attr, err := p.argument(sym, index, arg)
	if err != nil {
		return Occurrence{}, err
	}
	return Occurrence{Offset: -1, Attr: attr}, nil
}

func toSpecError(err error, m *Mapping) *verr.SpecError {
	if specErr, ok := err.(*verr.SpecError); ok {
		return specErr
	}
	return &verr.SpecError{
		Code:  verr.CodeInternal,
		Cause: err,
		Row:   m.Row,
		Col:   m.Col,
	}
}

func uniqueInts(s []int) []int {
	var u []int
	for i, n := range s {
		if i > 0 && n == s[i-1] {
			continue
		}
		u = append(u, n)
	}
	return u
}

func intsKey(s []int) string {
	var b strings.Builder
	for _, n := range s {
		fmt.Fprintf(&b, "%v,", n)
	}
	return b.String()
}
