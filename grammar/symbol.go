package grammar

import (
	"fmt"
)

const (
	// SymbolNameEOF is the name of the end-of-input terminal. It always has ID 0.
	SymbolNameEOF = "$eof"

	SymbolEOF = 0
)

// SymbolTable maps names to dense symbol IDs. Terminals occupy the low range
// [0, TerminalCount) and nonterminals the range above it, so every terminal must
// be registered before the first nonterminal.
type SymbolTable struct {
	names         []string
	ids           map[string]int
	terminalCount int
	sealed        bool
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		names:         []string{SymbolNameEOF},
		ids:           map[string]int{SymbolNameEOF: SymbolEOF},
		terminalCount: 1,
	}
}

// RegisterTerminal returns the ID of name, registering it as a terminal when it is new.
func (t *SymbolTable) RegisterTerminal(name string) (int, error) {
	if id, ok := t.ids[name]; ok {
		if !t.IsTerminal(id) {
			return 0, fmt.Errorf("%v is already registered as a nonterminal", name)
		}
		return id, nil
	}
	if t.sealed {
		return 0, fmt.Errorf("a terminal cannot be registered after nonterminals: %v", name)
	}
	id := len(t.names)
	t.names = append(t.names, name)
	t.ids[name] = id
	t.terminalCount++
	return id, nil
}

// RegisterNonTerminal returns the ID of name, registering it as a nonterminal when it is new.
func (t *SymbolTable) RegisterNonTerminal(name string) (int, error) {
	if id, ok := t.ids[name]; ok {
		if t.IsTerminal(id) {
			return 0, fmt.Errorf("%v is already registered as a terminal", name)
		}
		return id, nil
	}
	t.sealed = true
	id := len(t.names)
	t.names = append(t.names, name)
	t.ids[name] = id
	return id, nil
}

func (t *SymbolTable) Lookup(name string) (int, bool) {
	id, ok := t.ids[name]
	return id, ok
}

func (t *SymbolTable) Name(id int) string {
	if id < 0 || id >= len(t.names) {
		return fmt.Sprintf("<%v>", id)
	}
	return t.names[id]
}

func (t *SymbolTable) Names() []string {
	return append([]string{}, t.names...)
}

func (t *SymbolTable) Size() int {
	return len(t.names)
}

func (t *SymbolTable) TerminalCount() int {
	return t.terminalCount
}

func (t *SymbolTable) IsTerminal(id int) bool {
	return id >= 0 && id < t.terminalCount
}
