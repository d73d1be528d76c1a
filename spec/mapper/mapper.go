// Package mapper defines the compiled mapper: the self-contained set of tables that the
// driver executes without access to the original description.
package mapper

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/nihei9/ordo/compressor"
)

// CompiledMapper bundles the parser table, the conflict resolvers, the scanner and the
// attribute schedule.
type CompiledMapper struct {
	Name          string              `json:"name"`
	Fingerprint   string              `json:"fingerprint"`
	K             int                 `json:"k"`
	Symbols       []string            `json:"symbols"`
	TerminalCount int                 `json:"terminal_count"`
	Aliases       []string            `json:"aliases"`
	Parser        *ParserTable        `json:"parser"`
	Resolvers     []*ConflictResolver `json:"resolvers"`
	Scanner       *ScannerFactory     `json:"scanner"`
	Oag           *Oag                `json:"oag"`
}

// TerminalText returns the alias of a terminal when it has one, or else its name.
func (m *CompiledMapper) TerminalText(sym int) string {
	if sym < len(m.Aliases) && m.Aliases[sym] != "" {
		return fmt.Sprintf("%q", m.Aliases[sym])
	}
	return m.Symbols[sym]
}

// ComputeFingerprint hashes everything but the fingerprint itself.
func (m *CompiledMapper) ComputeFingerprint() (string, error) {
	c := *m
	c.Fingerprint = ""
	h, err := structhash.Hash(c, 1)
	if err != nil {
		return "", fmt.Errorf("cannot compute the fingerprint: %w", err)
	}
	return h, nil
}

// ActionKind is the kind of a parser action. An action is packed as operand<<3 | kind.
type ActionKind int

const (
	ActionError ActionKind = iota
	ActionShift
	ActionReduce
	ActionSpecial
)

func (k ActionKind) String() string {
	switch k {
	case ActionError:
		return "error"
	case ActionShift:
		return "shift"
	case ActionReduce:
		return "reduce"
	case ActionSpecial:
		return "special"
	}
	return fmt.Sprintf("<action kind %d>", int(k))
}

const actionKindBits = 3

func EncodeAction(kind ActionKind, operand int) int {
	return operand<<actionKindBits | int(kind)
}

func DecodeAction(a int) (ActionKind, int) {
	return ActionKind(a & (1<<actionKindBits - 1)), a >> actionKindBits
}

// ParserTable is the LR(k) action table. Rows are parser states, columns are symbols;
// a shift on a nonterminal is a goto.
type ParserTable struct {
	StateCount    int                     `json:"state_count"`
	SymbolCount   int                     `json:"symbol_count"`
	TerminalCount int                     `json:"terminal_count"`
	StartState    int                     `json:"start_state"`
	StartSymbol   int                     `json:"start_symbol"`
	EOFSymbol     int                     `json:"eof_symbol"`
	LHS           []int                   `json:"lhs"`
	RHSLengths    []int                   `json:"rhs_lengths"`
	Modes         []int                   `json:"modes"`
	Actions       *compressor.ActionTable `json:"actions"`
}

func (t *ParserTable) Action(state, sym int) (ActionKind, int) {
	a, err := t.Actions.Lookup(state, sym)
	if err != nil {
		return ActionError, 0
	}
	return DecodeAction(a)
}

// ResolverLine selects Action when the upcoming terminals start with Terminals.
type ResolverLine struct {
	Terminals []int `json:"terminals"`
	Action    int   `json:"action"`
}

// ConflictResolver decides a reduce-reduce clash at parse time by looking further ahead.
// Lines are tried in order; when none matches, the action is an error.
type ConflictResolver struct {
	Lines []*ResolverLine `json:"lines"`
}

// NoEndSymbol marks a scanner state that accepts nothing in a mode.
const NoEndSymbol = 0

// ScannerFactory is a packed DFA over bytes. The entry of a state starts at its offset:
// ModeCount end-symbol slots (terminal+1, or NoEndSymbol) followed by (last byte, destination)
// pairs sorted by last byte and covering 0..255. Destinations are offsets of states.
type ScannerFactory struct {
	Table     []uint16 `json:"table"`
	Start     int      `json:"start"`
	Error     int      `json:"error"`
	ModeCount int      `json:"mode_count"`
	White     []int    `json:"white"`
}

// EndSymbol returns the terminal state accepts in mode, or -1.
func (f *ScannerFactory) EndSymbol(state, mode int) int {
	return int(f.Table[state+mode]) - 1
}

// Next returns the destination of state on b.
func (f *ScannerFactory) Next(state int, b byte) int {
	i := state + f.ModeCount
	for {
		if int(f.Table[i]) >= int(b) {
			return int(f.Table[i+1])
		}
		i += 2
	}
}

// Destinations returns the destinations of state in ascending byte order. Adjacent pairs
// may share a destination.
func (f *ScannerFactory) Destinations(state int) []int {
	var dests []int
	for i := state + f.ModeCount; ; i += 2 {
		dests = append(dests, int(f.Table[i+1]))
		if f.Table[i] == 0xff {
			return dests
		}
	}
}

// Cardinality strings used in the attribute schedule.
const (
	CardValue    = "value"
	CardOption   = "option"
	CardSequence = "sequence"
)

// Attribute describes one attribute slot of a symbol. Pass is the visit of the symbol that
// computes a synthesized attribute or receives an inherited one; it is -1 for attributes
// computed while the tree is built.
type Attribute struct {
	Name      string `json:"name"`
	Inherited bool   `json:"inherited"`
	Card      string `json:"card"`
	Type      string `json:"type"`
	Pass      int    `json:"pass"`
}

// Occurrence addresses an attribute of a production's symbol; Offset -1 is the left-hand side.
type Occurrence struct {
	Offset int `json:"offset"`
	Attr   int `json:"attr"`
}

// Equation computes Result from Args, either by calling a library function (Function >= 0)
// or by a built-in merger. ArgCards and ResultCard are the cardinalities of the occurrences.
type Equation struct {
	Result     Occurrence   `json:"result"`
	Args       []Occurrence `json:"args"`
	ArgCards   []string     `json:"arg_cards"`
	ResultCard string       `json:"result_card"`
	Function   int          `json:"function"`
	Merger     string       `json:"merger,omitempty"`
}

type VisitKind int

const (
	VisitEval VisitKind = iota
	VisitChild
)

// Visit is one step of a visit sequence: evaluate an equation or run visit Pass of the child
// at Offset.
type Visit struct {
	Kind     VisitKind `json:"kind"`
	Equation int       `json:"equation,omitempty"`
	Offset   int       `json:"offset,omitempty"`
	Pass     int       `json:"pass,omitempty"`
}

// Schedule is the evaluation plan of one production. Construction runs on reduce; Visits[n]
// runs when the node is visited for the n-th time.
type Schedule struct {
	Equations    []*Equation `json:"equations"`
	Construction []int       `json:"construction"`
	Visits       [][]*Visit  `json:"visits"`
}

// Oag is the attribute schedule of a mapper.
type Oag struct {
	Functions    []string       `json:"functions"`
	Attributes   [][]*Attribute `json:"attributes"`
	Main         []int          `json:"main"`
	Construction [][]int        `json:"construction"`
	VisitCounts  []int          `json:"visit_counts"`
	Terminals    []*Equation    `json:"terminals"`
	Productions  []*Schedule    `json:"productions"`
}

// NeedsVisit reports whether the nodes of sym are visited after the tree is built.
func (o *Oag) NeedsVisit(sym int) bool {
	return o.VisitCounts[sym] > 0
}
