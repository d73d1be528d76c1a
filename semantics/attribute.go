package semantics

import (
	"fmt"
	"reflect"

	"github.com/nihei9/ordo/grammar"
)

// Type is the type of an attribute: a Go type and a cardinality.
type Type struct {
	Host reflect.Type
	Card Cardinality
}

func (t Type) String() string {
	return fmt.Sprintf("%v of %v", t.Card, t.Host)
}

// commonHost is the type all hosts share, or interface{} when they differ.
func commonHost(hosts []reflect.Type) reflect.Type {
	if len(hosts) == 0 {
		return interfaceType
	}
	for _, h := range hosts[1:] {
		if h != hosts[0] {
			return interfaceType
		}
	}
	return hosts[0]
}

type AttrKind int

const (
	// AttrMain is the value a mapping computes for its symbol.
	AttrMain AttrKind = iota
	// AttrArgument collects the values of one argument of a mapping.
	AttrArgument
	// AttrTransport relays values of source symbols up through unmapped nonterminals.
	AttrTransport
	// AttrInherited relays the value of a sibling down to a descendant.
	AttrInherited
)

func (k AttrKind) String() string {
	switch k {
	case AttrMain:
		return "main"
	case AttrArgument:
		return "argument"
	case AttrTransport:
		return "transport"
	case AttrInherited:
		return "inherited"
	}
	return fmt.Sprintf("<attribute kind %d>", int(k))
}

// Attribute is one attribute of a symbol. Attributes are compared by identity.
type Attribute struct {
	Owner int
	Name  string
	Kind  AttrKind
	Type  Type
	// Visit is set when the attribute cannot be computed while the tree is built.
	Visit bool
	index int
}

func (a *Attribute) Inherited() bool {
	return a.Kind == AttrInherited
}

// Index is the position of the attribute among the attributes of its owner.
func (a *Attribute) Index() int {
	return a.index
}

// Occurrence is an attribute of the symbol at Offset of a production; -1 is the left-hand side.
type Occurrence struct {
	Offset int
	Attr   *Attribute
}

func (o Occurrence) String() string {
	if o.Offset < 0 {
		return fmt.Sprintf("$$.%v", o.Attr.Name)
	}
	return fmt.Sprintf("$%v.%v", o.Offset+1, o.Attr.Name)
}

// AttributionBuffer is one equation of a production: Result is computed from Args by
// Function, or by Merger when Function is nil.
type AttributionBuffer struct {
	Result   Occurrence
	Args     []Occurrence
	Function *Function
	Merger   string
}

func (b *AttributionBuffer) String() string {
	name := b.Merger
	if b.Function != nil {
		name = b.Function.Name
	}
	return fmt.Sprintf("%v = %v%v", b.Result, name, b.Args)
}

// Attribution is an attribute grammar over a grammar: the attributes of every symbol and
// the equations of every production. Terminals[sym] computes the main attribute of a
// mapped terminal from its lexeme.
type Attribution struct {
	Grammar    *grammar.Grammar
	Attributes [][]*Attribute
	Buffers    [][]*AttributionBuffer
	Terminals  []*AttributionBuffer
}

func NewAttribution(g *grammar.Grammar) *Attribution {
	return &Attribution{
		Grammar:    g,
		Attributes: make([][]*Attribute, g.SymbolCount()),
		Buffers:    make([][]*AttributionBuffer, g.ProductionCount()),
		Terminals:  make([]*AttributionBuffer, g.TerminalCount()),
	}
}

// AddAttribute appends a new attribute to the attributes of owner.
func (a *Attribution) AddAttribute(owner int, name string, kind AttrKind, typ Type) *Attribute {
	attr := &Attribute{
		Owner: owner,
		Name:  name,
		Kind:  kind,
		Type:  typ,
		index: len(a.Attributes[owner]),
	}
	a.Attributes[owner] = append(a.Attributes[owner], attr)
	return attr
}

func (a *Attribution) AddBuffer(prod int, b *AttributionBuffer) {
	a.Buffers[prod] = append(a.Buffers[prod], b)
}

// attrName names attributes in messages, e.g. expr.value.
func (a *Attribution) attrName(attr *Attribute) string {
	return fmt.Sprintf("%v.%v", a.Grammar.SymbolName(attr.Owner), attr.Name)
}
